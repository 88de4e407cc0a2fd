/*
Package resilience provides the circuit breaker that guards rule polling.

# Overview

While rule files are being rewritten every check can fail. After a run of
failed checks the breaker suspends polling, then lets a single trial check
through once the timeout has passed. A good trial resumes normal polling.

# Usage

	breaker := resilience.New("rules-refresh", resilience.Settings{
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("breaker state changed", zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	err := breaker.Execute(func() error {
		return refresh()
	})

# States

- Closed: Checks run on every poll
- Open: Checks are skipped with ErrCircuitOpen
- Half-Open: Trial checks decide whether polling resumes

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
