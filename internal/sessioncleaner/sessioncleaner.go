// Package sessioncleaner runs a background sweep over the session
// table. Expired sessions are already invisible through lazy deletion
// on lookup; the cleaner only keeps the physical table from growing
// without bound.
package sessioncleaner

import (
	"context"
	"time"

	"github.com/patric-chuzhbe/voicetodo/internal/logger"
)

type sessionsPruner interface {
	PruneExpiredSessions(ctx context.Context) (int, error)
}

type SessionCleaner struct {
	db           sessionsPruner
	interval     time.Duration
	errorChannel chan error
}

func New(db sessionsPruner, interval time.Duration) *SessionCleaner {
	return &SessionCleaner{
		db:           db,
		interval:     interval,
		errorChannel: make(chan error, 1),
	}
}

// Run starts the sweep loop in a goroutine. It stops when the context
// is canceled.
func (c *SessionCleaner) Run(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		defer close(c.errorChannel)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pruned, err := c.db.PruneExpiredSessions(ctx)
				if err != nil {
					select {
					case c.errorChannel <- err:
					default:
					}
					continue
				}
				if pruned > 0 {
					logger.Log.Infof("pruned %d expired sessions", pruned)
				}
			}
		}
	}()
}

// ListenErrors forwards sweep errors to the callback until Run stops.
func (c *SessionCleaner) ListenErrors(callback func(error)) {
	go func() {
		for err := range c.errorChannel {
			callback(err)
		}
	}()
}
