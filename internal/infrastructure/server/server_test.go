package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/linksan/internal/api/middleware"
	"github.com/GriffinCanCode/linksan/internal/domain/rules"
	"github.com/GriffinCanCode/linksan/internal/infrastructure/config"
	"github.com/GriffinCanCode/linksan/internal/infrastructure/tracing"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Logging.Level = "error"
	cfg.RateLimit.Enabled = false
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	srv, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func TestNewServerUsesEmbeddedRules(t *testing.T) {
	srv := newTestServer(t, testConfig())

	assert.Equal(t, rules.Default().Revision(), srv.Rules().Revision())
}

func TestNewServerLoadsRulesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tracking_parameters: [zz]\ndomain_specific_rules: {}\n"), 0o644))

	cfg := testConfig()
	cfg.Rules.Path = path
	srv := newTestServer(t, cfg)

	assert.True(t, srv.Rules().IsTracking("zz"))
	assert.Equal(t, path, srv.Rules().Source())
}

func TestNewServerFallsBackOnBadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tracking_parameters": []}`), 0o644))

	cfg := testConfig()
	cfg.Rules.Path = path
	srv := newTestServer(t, cfg)

	assert.Equal(t, rules.Default().Revision(), srv.Rules().Revision())
}

func TestNewServerRejectsBadLogLevel(t *testing.T) {
	cfg := testConfig()
	cfg.Logging.Level = "loud"

	_, err := NewServer(cfg)
	assert.Error(t, err)
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t, testConfig())

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodPost, "/sanitize", `{"text": "https://example.com/?utm_source=x"}`, http.StatusOK},
		{http.MethodPost, "/sanitize/batch", `{"texts": ["a"]}`, http.StatusOK},
		{http.MethodGet, "/rules", "", http.StatusOK},
		{http.MethodGet, "/rules/domains/unknown.example", "", http.StatusNotFound},
		{http.MethodPost, "/rules/reload", "", http.StatusConflict},
		{http.MethodGet, "/missing", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			srv.Handler().ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get(tracing.TraceHeader))
			assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/sanitize", strings.NewReader(`{"text": "https://example.com/?utm_source=x"}`))
	srv.Handler().ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "linksan_rules_tracking_parameters")
	assert.Contains(t, body, `linksan_sanitize_total{outcome="cleaned"} 1`)
	assert.Contains(t, body, `linksan_http_requests_total`)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	cfg := testConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = port
	srv := newTestServer(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + cfg.Addr() + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
