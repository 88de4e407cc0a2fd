package refresh

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/linksan/internal/domain/rules"
	"github.com/GriffinCanCode/linksan/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/linksan/internal/infrastructure/resilience"
)

func writeRules(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func newService(t *testing.T, interval time.Duration) (*Service, *rules.Holder, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.json")
	writeRules(t, path, `{"tracking_parameters": ["a"], "domain_specific_rules": {}}`)

	holder := rules.NewHolder(rules.Default())
	reloader := rules.NewReloader(holder, path, "")
	return New(reloader, monitoring.NewMetrics(), zap.NewNop(), DefaultOptions(interval)), holder, path
}

func TestReload(t *testing.T) {
	s, holder, _ := newService(t, 0)
	assert.True(t, s.Enabled())

	set, err := s.Reload(context.Background())
	require.NoError(t, err)
	assert.Same(t, set, holder.Get())
	assert.True(t, holder.Get().IsTracking("a"))
}

func TestReloadDisabled(t *testing.T) {
	holder := rules.NewHolder(nil)
	s := New(rules.NewReloader(holder, "", ""), monitoring.NewMetrics(), zap.NewNop(), DefaultOptions(0))

	assert.False(t, s.Enabled())
	_, err := s.Reload(context.Background())
	assert.ErrorIs(t, err, rules.ErrNoRulesPath)
	_, err = s.Check(context.Background())
	assert.ErrorIs(t, err, rules.ErrNoRulesPath)
}

func TestCheckReloadsOnlyOnChange(t *testing.T) {
	s, holder, path := newService(t, 0)
	ctx := context.Background()

	reloaded, err := s.Check(ctx)
	require.NoError(t, err)
	assert.True(t, reloaded)
	first := holder.Get()

	reloaded, err = s.Check(ctx)
	require.NoError(t, err)
	assert.False(t, reloaded)
	assert.Same(t, first, holder.Get())

	// Different size, so the fingerprint changes regardless of mtime resolution
	writeRules(t, path, `{"tracking_parameters": ["a", "bb"], "domain_specific_rules": {}}`)
	reloaded, err = s.Check(ctx)
	require.NoError(t, err)
	assert.True(t, reloaded)
	assert.True(t, holder.Get().IsTracking("bb"))
}

func TestSeedSkipsFirstReload(t *testing.T) {
	s, holder, _ := newService(t, 0)
	before := holder.Get()

	s.Seed()
	reloaded, err := s.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, reloaded)
	assert.Same(t, before, holder.Get())
}

func TestCheckMalformedTripsBreaker(t *testing.T) {
	s, holder, path := newService(t, 0)
	ctx := context.Background()
	before := holder.Get()

	writeRules(t, path, `{"tracking_parameters": "nope", "domain_specific_rules": {}}`)

	for i := 0; i < 2; i++ {
		_, err := s.Check(ctx)
		assert.ErrorIs(t, err, rules.ErrMalformedRuleData)
		assert.Equal(t, uint32(i+1), s.FailedChecks())
	}
	_, err := s.Check(ctx)
	assert.ErrorIs(t, err, rules.ErrMalformedRuleData)
	assert.Same(t, before, holder.Get())
	assert.Equal(t, resilience.StateOpen, s.BreakerState())
	// Tripping starts a new generation
	assert.Zero(t, s.FailedChecks())

	_, err = s.Check(ctx)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)

	// Manual reloads are not blocked by the breaker
	writeRules(t, path, `{"tracking_parameters": ["fixed"], "domain_specific_rules": {}}`)
	_, err = s.Reload(ctx)
	require.NoError(t, err)
	assert.True(t, holder.Get().IsTracking("fixed"))
}

func TestRun(t *testing.T) {
	s, holder, path := newService(t, 10*time.Millisecond)
	s.Seed()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	writeRules(t, path, `{"tracking_parameters": ["polled"], "domain_specific_rules": {}}`)
	assert.Eventually(t, func() bool {
		return holder.Get().IsTracking("polled")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRunDisabled(t *testing.T) {
	s, _, _ := newService(t, 0)

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return immediately when polling is disabled")
	}
}
