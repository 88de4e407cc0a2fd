package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// value finds a counter or gauge sample by name and label values
func value(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if !labelsMatch(metric.GetLabel(), labels) {
				continue
			}
			if c := metric.GetCounter(); c != nil {
				return c.GetValue()
			}
			if g := metric.GetGauge(); g != nil {
				return g.GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(pairs []*dto.LabelPair, want map[string]string) bool {
	found := 0
	for _, p := range pairs {
		if v, ok := want[p.GetName()]; ok {
			if v != p.GetValue() {
				return false
			}
			found++
		}
	}
	return found == len(want)
}

func TestNewMetricsIsolated(t *testing.T) {
	// A second instance must not panic on duplicate registration
	a := NewMetrics()
	b := NewMetrics()

	a.RecordReload("success")
	assert.Equal(t, 1.0, value(t, a, "linksan_rule_reloads_total", map[string]string{"status": "success"}))
	assert.Equal(t, 0.0, value(t, b, "linksan_rule_reloads_total", map[string]string{"status": "success"}))
}

func TestRecordSanitize(t *testing.T) {
	m := NewMetrics()

	m.RecordSanitize(true, false, 2)
	m.RecordSanitize(true, true, 1)
	m.RecordSanitize(true, false, 0)
	m.RecordSanitize(false, false, 0)

	assert.Equal(t, 2.0, value(t, m, "linksan_sanitize_total", map[string]string{"outcome": OutcomeCleaned}))
	assert.Equal(t, 1.0, value(t, m, "linksan_sanitize_total", map[string]string{"outcome": OutcomeClean}))
	assert.Equal(t, 1.0, value(t, m, "linksan_sanitize_total", map[string]string{"outcome": OutcomeNotApplicable}))
	assert.Equal(t, 3.0, value(t, m, "linksan_removed_parameters_total", nil))
	assert.Equal(t, 1.0, value(t, m, "linksan_redirects_unwrapped_total", nil))

	snap := m.Snapshot()
	assert.Equal(t, int64(4), snap.Sanitized)
	assert.Equal(t, int64(3), snap.TrackersRemoved)
}

func TestSetRules(t *testing.T) {
	m := NewMetrics()
	m.SetRules(42, 7)

	assert.Equal(t, 42.0, value(t, m, "linksan_rules_tracking_parameters", nil))
	assert.Equal(t, 7.0, value(t, m, "linksan_rules_domains", nil))
}

func TestRecordHTTPRequest(t *testing.T) {
	m := NewMetrics()

	m.RecordHTTPRequest("POST", "/sanitize", "200", 10*time.Millisecond, 50, 120)
	m.RecordHTTPRequest("POST", "/sanitize", "400", 30*time.Millisecond, 2, 40)

	assert.Equal(t, 1.0, value(t, m, "linksan_http_requests_total", map[string]string{"status": "200"}))
	assert.Equal(t, 1.0, value(t, m, "linksan_http_requests_total", map[string]string{"status": "400"}))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.TotalErrors)
	assert.InDelta(t, 20.0, snap.AvgLatencyMs, 0.001)
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/items/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	for _, path := range []string{"/items/1", "/items/2", "/nowhere"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	}

	assert.Equal(t, 2.0, value(t, m, "linksan_http_requests_total", map[string]string{"path": "/items/:id"}))
	assert.Equal(t, 1.0, value(t, m, "linksan_http_requests_total", map[string]string{"path": "unmatched", "status": "404"}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "linksan_uptime_seconds"))
	assert.True(t, strings.Contains(w.Body.String(), "go_goroutines"))
}
