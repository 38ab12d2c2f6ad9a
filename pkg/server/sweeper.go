package server

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/decred/slog"
)

// Sweeper periodically progresses every occupied table so timeouts, summary
// expiry, and scheduled hand starts fire even when no player is acting.
type Sweeper struct {
	srv      *Server
	log      slog.Logger
	interval time.Duration
	running  atomic.Bool
}

// NewSweeper creates a sweeper for the server.
func NewSweeper(srv *Server, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Second
	}
	return &Sweeper{
		srv:      srv,
		log:      srv.logBackend.Logger("SWEEP"),
		interval: interval,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
func (sw *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sw.sweep()
		}
	}
}

// sweep progresses every occupied table once. A CAS guard skips the tick if
// the previous sweep is still running, so slow sweeps never stack up.
func (sw *Sweeper) sweep() {
	if !sw.running.CompareAndSwap(false, true) {
		return
	}
	defer sw.running.Store(false)

	ids, err := sw.srv.db.ListOccupiedTableIDs()
	if err != nil {
		sw.log.Errorf("Failed to list tables: %v", err)
		return
	}
	for _, id := range ids {
		if err := sw.srv.SweepTable(id); err != nil {
			sw.log.Errorf("Sweep failed for table %s: %v", id, err)
		}
	}
}
