package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/linksan/internal/api/http"
	"github.com/GriffinCanCode/linksan/internal/api/middleware"
	"github.com/GriffinCanCode/linksan/internal/domain/rules"
	"github.com/GriffinCanCode/linksan/internal/domain/sanitizer"
	"github.com/GriffinCanCode/linksan/internal/infrastructure/config"
	"github.com/GriffinCanCode/linksan/internal/infrastructure/logging"
	"github.com/GriffinCanCode/linksan/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/linksan/internal/infrastructure/refresh"
	"github.com/GriffinCanCode/linksan/internal/infrastructure/tracing"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	holder     *rules.Holder
	refresher  *refresh.Service
	tracer     *tracing.Tracer
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Info("Initializing LinkSan server",
		zap.String("addr", cfg.Addr()),
		zap.String("rules_path", cfg.Rules.Path),
		zap.Duration("rules_refresh", cfg.Rules.Refresh),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	tracer := tracing.New("linksan", logger.Component("tracing").Logger)

	// Load rules, falling back to the embedded set
	holder := rules.NewHolder(loadRules(cfg.Rules, logger))
	stats := holder.Get().Stats()
	metrics.SetRules(stats.TrackingParameters, stats.Domains)
	logger.Info("Rules loaded",
		zap.String("source", stats.Source),
		zap.String("revision", stats.Revision),
		zap.Int("tracking_parameters", stats.TrackingParameters),
		zap.Int("domains", stats.Domains),
	)

	reloader := rules.NewReloader(holder, cfg.Rules.Path, cfg.Rules.Pattern)
	refresher := refresh.New(reloader, metrics, logger.Component("refresh").Logger, refresh.DefaultOptions(cfg.Rules.Refresh))
	refresher.Seed()

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := api.NewHandlers(sanitizer.New(holder), refresher, metrics, logger.Component("api").Logger, cfg.Limits)

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Sanitizing
	router.POST("/sanitize", handlers.Sanitize)
	router.POST("/sanitize/batch", handlers.SanitizeBatch)

	// Rules
	router.GET("/rules", handlers.Rules)
	router.GET("/rules/domains/:domain", handlers.DomainRule)
	router.POST("/rules/reload", handlers.ReloadRules)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		holder:    holder,
		refresher: refresher,
		tracer:    tracer,
		logger:    logger,
		config:    cfg,
		metrics:   metrics,
	}, nil
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Rules returns the active rule set
func (s *Server) Rules() *rules.RuleSet {
	return s.holder.Get()
}

// Run serves HTTP and polls for rule changes until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go s.refresher.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

// Close releases background resources
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()

	return nil
}

// loadRules reads the configured rule location. Any failure is logged and
// the embedded rules are served instead.
func loadRules(cfg config.RulesConfig, logger *logging.Logger) *rules.RuleSet {
	if cfg.Path == "" {
		return rules.Default()
	}

	set, err := rules.LoadPath(cfg.Path, cfg.Pattern)
	if err != nil {
		logger.Error("Failed to load rules, using embedded defaults",
			zap.String("path", cfg.Path),
			zap.Error(err),
		)
		return rules.Default()
	}
	return set
}
