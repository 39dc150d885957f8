// Package poll runs the administrator's periodic list refresh.
package poll

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"restaurant-terminal/internal/api"
	"restaurant-terminal/internal/session"
)

type Poller struct {
	interval time.Duration
	refresh  func(context.Context) error
	log      *zap.Logger
}

func New(interval time.Duration, refresh func(context.Context) error, log *zap.Logger) *Poller {
	return &Poller{interval: interval, refresh: refresh, log: log}
}

// Run refreshes on every tick until the context is cancelled or the
// session dies. Ticks are serialized: the refresh runs on the loop
// goroutine, and ticker delivery coalesces while it is in flight, so a
// slow refresh skips ticks instead of stacking concurrent ones.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Debug("poller stopped", zap.Error(ctx.Err()))
			return
		case <-ticker.C:
			if err := p.refresh(ctx); err != nil {
				if errors.Is(err, api.ErrSessionExpired) || errors.Is(err, session.ErrNotAuthenticated) {
					p.log.Info("poller stopping, session ended")
					return
				}
				if ctx.Err() != nil {
					return
				}
				// Transient failures keep the loop alive; the next tick
				// retries the whole refresh.
				p.log.Warn("poll refresh failed", zap.Error(err))
			}
		}
	}
}
