// README: Self-scheduling refresh loop; the next fetch is scheduled only after the previous one returns.
package gateway

import (
	"context"
	"log/slog"
	"time"
)

type Poller[T any] struct {
	fetch    func(ctx context.Context) (T, error)
	onUpdate func(T)
	interval time.Duration
	log      *slog.Logger
}

func NewPoller[T any](interval time.Duration, fetch func(ctx context.Context) (T, error), onUpdate func(T), log *slog.Logger) *Poller[T] {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Poller[T]{fetch: fetch, onUpdate: onUpdate, interval: interval, log: log}
}

// Run fetches once immediately, then again interval after each fetch completes,
// until ctx is cancelled. Failed fetches are logged and retried on the next round.
func (p *Poller[T]) Run(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			v, err := p.fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				p.log.Warn("poll failed", "err", err)
			} else {
				p.onUpdate(v)
			}
			timer.Reset(p.interval)
		}
	}
}
