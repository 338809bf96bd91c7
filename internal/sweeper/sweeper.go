// Package sweeper runs the periodic expiry sweep that recycles numbers,
// closes stale orders, and expires abandoned payments.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/vexnode/numshop/internal/storage"
)

// Sweeper periodically recycles time-expired rows
type Sweeper struct {
	storage *storage.Storage
	log     *slog.Logger
}

// New creates a new Sweeper
func New(store *storage.Storage, log *slog.Logger) *Sweeper {
	return &Sweeper{
		storage: store,
		log:     log,
	}
}

// Start runs the sweep loop until the context is cancelled
func (sw *Sweeper) Start(ctx context.Context, interval time.Duration) {
	sw.log.Info("sweeper started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sw.runOnce()
		}
	}
}

func (sw *Sweeper) runOnce() {
	res, err := sw.storage.SweepExpired(time.Now())
	if err != nil {
		sw.log.Error("expiry sweep", "error", err)
		return
	}

	if res.Numbers > 0 || res.Orders > 0 || res.Payments > 0 {
		sw.log.Info("expiry sweep",
			"numbers_recycled", res.Numbers,
			"orders_expired", res.Orders,
			"payments_expired", res.Payments,
		)
	}
}
