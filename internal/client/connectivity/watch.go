package connectivity

import (
	"context"
	"time"
)

// DefaultWatchInterval is how often StartWatch re-resolves the endpoint.
const DefaultWatchInterval = time.Minute

// StartWatch periodically re-runs endpoint resolution until ctx is done.
// onDegraded, when set, receives the error of every failed round. The
// returned channel is closed when the loop exits.
func StartWatch(ctx context.Context, m *Manager, interval time.Duration, onDegraded func(error)) <-chan struct{} {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := m.Reconnect(ctx); err != nil {
					if ctx.Err() != nil {
						return
					}
					m.log.Warn("endpoint watch: degraded")
					if onDegraded != nil {
						onDegraded(err)
					}
				}
			}
		}
	}()
	return done
}
