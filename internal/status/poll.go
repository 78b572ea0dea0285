package status

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/raggleton/htcondenser/internal/ctxlog"
)

// Poller re-reads a status feed file on a fixed interval and swaps each
// parse into the store wholesale. A read that races with the scheduler
// rewriting the file just yields a stale-but-consistent snapshot; the next
// tick catches up.
type Poller struct {
	path     string
	interval time.Duration
	clock    clock.Clock
	store    *Store
	onUpdate func(Snapshot)
}

// NewPoller builds a poller for the feed at path. A nil clk uses the wall
// clock; tests inject a mock clock to drive ticks deterministically.
func NewPoller(path string, interval time.Duration, clk clock.Clock, store *Store) *Poller {
	if clk == nil {
		clk = clock.New()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{path: path, interval: interval, clock: clk, store: store}
}

// OnUpdate registers a callback invoked after every successful poll, with
// the snapshot just installed. Set it before calling Run.
func (p *Poller) OnUpdate(fn func(Snapshot)) {
	p.onUpdate = fn
}

// Run polls until the context is cancelled or every node reports Done. Read
// or parse trouble on one tick is logged and retried on the next; it never
// stops the loop.
func (p *Poller) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	ticker := p.clock.Ticker(p.interval)
	defer ticker.Stop()

	p.pollOnce(ctx)
	for {
		if p.store.Snapshot().AllDone() {
			logger.Info("All nodes done, stopping status polling.")
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// pollOnce parses the feed and replaces the store snapshot. An unreadable
// feed leaves the previous snapshot in place.
func (p *Poller) pollOnce(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	snap, err := ParseFeedFile(p.path)
	if err != nil {
		logger.Warn("Could not read status feed, keeping previous snapshot.", "path", p.path, "error", err)
		return
	}
	p.store.Replace(snap)
	logger.Debug("Status feed polled.", "path", p.path, "nodes", snap.Len())
	if p.onUpdate != nil {
		p.onUpdate(snap)
	}
}
