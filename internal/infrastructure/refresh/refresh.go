package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/linksan/internal/domain/rules"
	"github.com/GriffinCanCode/linksan/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/linksan/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/linksan/internal/infrastructure/tracing"
)

// Reload statuses recorded in metrics
const (
	StatusSuccess   = "success"
	StatusMalformed = "malformed"
	StatusError     = "error"
)

// Options configures background polling
type Options struct {
	// Interval between change checks; zero disables polling
	Interval time.Duration
	Breaker  resilience.Settings
}

// DefaultOptions trips after three failed checks in a row and retries a
// minute later.
func DefaultOptions(interval time.Duration) Options {
	return Options{
		Interval: interval,
		Breaker: resilience.Settings{
			MaxRequests: 1,
			Interval:    10 * time.Minute,
			Timeout:     time.Minute,
			ReadyToTrip: func(counts resilience.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		},
	}
}

// Service reloads rule data on demand and, when polling is enabled,
// whenever the rule files change.
type Service struct {
	reloader *rules.Reloader
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	breaker  *resilience.Breaker
	interval time.Duration

	mu          sync.Mutex
	fingerprint string
}

// New creates a refresh service around reloader
func New(reloader *rules.Reloader, metrics *monitoring.Metrics, logger *zap.Logger, opts Options) *Service {
	s := &Service{
		reloader: reloader,
		metrics:  metrics,
		logger:   logger,
		interval: opts.Interval,
	}

	settings := opts.Breaker
	userHook := settings.OnStateChange
	settings.OnStateChange = func(name string, from, to resilience.State) {
		logger.Warn("Rule refresh breaker changed state",
			zap.String("breaker", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
		if userHook != nil {
			userHook(name, from, to)
		}
	}
	s.breaker = resilience.New("rules-refresh", settings)

	return s
}

// Enabled reports whether a rule location is configured
func (s *Service) Enabled() bool {
	return s.reloader.Path() != ""
}

// BreakerState exposes the polling breaker state for health checks
func (s *Service) BreakerState() resilience.State {
	return s.breaker.State()
}

// FailedChecks is the number of failed checks in a row since polling last
// succeeded or the breaker changed state
func (s *Service) FailedChecks() uint32 {
	return s.breaker.Counts().ConsecutiveFailures
}

// Reload loads and publishes the rule data immediately. Operator requested
// reloads bypass the breaker.
func (s *Service) Reload(ctx context.Context) (*rules.RuleSet, error) {
	if !s.Enabled() {
		return nil, rules.ErrNoRulesPath
	}
	fingerprint, _ := rules.Fingerprint(s.reloader.Path(), s.reloader.Pattern())
	return s.reload(ctx, fingerprint, "manual")
}

// Check reloads when the rule files changed since the last successful load.
// It reports whether a new rule set was published.
func (s *Service) Check(ctx context.Context) (bool, error) {
	if !s.Enabled() {
		return false, rules.ErrNoRulesPath
	}

	reloaded := false
	err := s.breaker.Execute(func() error {
		fingerprint, err := rules.Fingerprint(s.reloader.Path(), s.reloader.Pattern())
		if err != nil {
			s.metrics.RecordReload(StatusError)
			return err
		}

		s.mu.Lock()
		unchanged := fingerprint == s.fingerprint
		s.mu.Unlock()
		if unchanged {
			return nil
		}

		if _, err := s.reload(ctx, fingerprint, "poll"); err != nil {
			return err
		}
		reloaded = true
		return nil
	})
	return reloaded, err
}

// Run polls until ctx is cancelled. It returns immediately when polling is
// disabled.
func (s *Service) Run(ctx context.Context) {
	if s.interval <= 0 || !s.Enabled() {
		return
	}

	s.logger.Info("Rule refresh started",
		zap.String("path", s.reloader.Path()),
		zap.Duration("interval", s.interval),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Rule refresh stopped")
			return
		case <-ticker.C:
			if _, err := s.Check(ctx); err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
				s.logger.Warn("Rule refresh failed", zap.Error(err))
			}
		}
	}
}

// Seed records the fingerprint of the rules loaded at startup so the first
// poll does not reload them again.
func (s *Service) Seed() {
	if !s.Enabled() {
		return
	}
	fingerprint, err := rules.Fingerprint(s.reloader.Path(), s.reloader.Pattern())
	if err != nil {
		return
	}
	s.mu.Lock()
	s.fingerprint = fingerprint
	s.mu.Unlock()
}

func (s *Service) reload(ctx context.Context, fingerprint, trigger string) (*rules.RuleSet, error) {
	fields := append(tracing.Fields(ctx),
		zap.String("path", s.reloader.Path()),
		zap.String("trigger", trigger),
	)

	set, err := s.reloader.Reload()
	if err != nil {
		status := StatusError
		if errors.Is(err, rules.ErrMalformedRuleData) {
			status = StatusMalformed
		}
		s.metrics.RecordReload(status)
		s.logger.Error("Rule reload failed, keeping current rules", append(fields, zap.Error(err))...)
		return nil, err
	}

	s.mu.Lock()
	s.fingerprint = fingerprint
	s.mu.Unlock()

	stats := set.Stats()
	s.metrics.RecordReload(StatusSuccess)
	s.metrics.SetRules(stats.TrackingParameters, stats.Domains)
	s.logger.Info("Rules reloaded", append(fields,
		zap.String("revision", stats.Revision),
		zap.Int("tracking_parameters", stats.TrackingParameters),
		zap.Int("domains", stats.Domains),
	)...)
	return set, nil
}
