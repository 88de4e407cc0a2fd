package http

import (
	"github.com/GriffinCanCode/linksan/internal/domain/sanitizer"
	"github.com/GriffinCanCode/linksan/internal/infrastructure/monitoring"
)

// HandlerMetrics records sanitize outcomes from the handlers
type HandlerMetrics struct {
	metrics *monitoring.Metrics
}

// NewHandlerMetrics creates a metrics wrapper
func NewHandlerMetrics(metrics *monitoring.Metrics) *HandlerMetrics {
	return &HandlerMetrics{metrics: metrics}
}

// TrackResults records each result and returns the total removed count
func (hm *HandlerMetrics) TrackResults(results ...sanitizer.Result) int {
	total := 0
	for _, res := range results {
		hm.metrics.RecordSanitize(res.Applicable, res.Unwrapped, res.Removed)
		total += res.Removed
	}
	return total
}
