package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/linksan/internal/api/middleware"
	"github.com/GriffinCanCode/linksan/internal/domain/sanitizer"
	"github.com/GriffinCanCode/linksan/internal/infrastructure/config"
	"github.com/GriffinCanCode/linksan/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/linksan/internal/infrastructure/refresh"
	"github.com/GriffinCanCode/linksan/internal/infrastructure/tracing"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	sanitizer *sanitizer.Sanitizer
	refresher *refresh.Service
	metrics   *HandlerMetrics
	snapshot  func() monitoring.MetricsSnapshot
	logger    *zap.Logger
	limits    config.LimitsConfig
}

// NewHandlers creates a new handler set
func NewHandlers(
	s *sanitizer.Sanitizer,
	refresher *refresh.Service,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
	limits config.LimitsConfig,
) *Handlers {
	return &Handlers{
		sanitizer: s,
		refresher: refresher,
		metrics:   NewHandlerMetrics(metrics),
		snapshot:  metrics.Snapshot,
		logger:    logger,
		limits:    limits,
	}
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "linksan",
		"version": Version,
	})
}

// Health reports the active rules, reload state and request counters
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"rules":  h.sanitizer.Rules().Stats(),
		"reload": gin.H{
			"enabled":       h.refresher.Enabled(),
			"breaker":       h.refresher.BreakerState().String(),
			"failed_checks": h.refresher.FailedChecks(),
		},
		"stats": h.snapshot(),
	})
}

// logFields correlates a log line with the request's trace and request ID
func logFields(c *gin.Context) []zap.Field {
	return append(tracing.Fields(c.Request.Context()),
		zap.String("request_id", middleware.GetRequestID(c)))
}
