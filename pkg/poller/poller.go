// Package poller refreshes the store with periodic crawl snapshots.
package poller

import (
	"context"
	"time"

	"crawl-mgmt-go/pkg/actions"

	"go.uber.org/zap"
)

// Lister fetches a full snapshot. *actions.Service implements it.
type Lister interface {
	ListCrawls(ctx context.Context) actions.Result
}

// Poller calls ListCrawls on a fixed interval.
type Poller struct {
	lister   Lister
	interval time.Duration
	logger   *zap.Logger
	// OnTick runs after every poll, e.g. to refresh metrics.
	OnTick func(actions.Result)
}

// New creates a poller. A non-positive interval defaults to five seconds.
func New(lister Lister, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{lister: lister, interval: interval, logger: logger}
}

// Run polls immediately and then every interval until ctx is cancelled.
// A poll whose previous request is still outstanding is suppressed by the
// dispatcher, so a slow backend never stacks requests.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	res := p.lister.ListCrawls(ctx)
	switch {
	case res.Err != nil:
		p.logger.Warn("poll failed", zap.Error(res.Err))
	case res.Suppressed():
		p.logger.Debug("poll skipped: previous list still in flight")
	}
	if p.OnTick != nil {
		p.OnTick(res)
	}
}
