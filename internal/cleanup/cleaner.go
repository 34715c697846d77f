package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/terra-clan/intern-engine/internal/chat"
)

// Cleaner periodically prunes mentor chat sessions that have been idle
// past the retention window
type Cleaner struct {
	history   *chat.History
	interval  time.Duration
	retention time.Duration
}

// NewCleaner creates a cleanup worker
func NewCleaner(history *chat.History, interval, retention time.Duration) *Cleaner {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}

	return &Cleaner{
		history:   history,
		interval:  interval,
		retention: retention,
	}
}

// Start begins the cleanup worker in a goroutine
func (c *Cleaner) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Cleaner) run(ctx context.Context) {
	slog.Info("cleanup worker started",
		"interval", c.interval,
		"retention", c.retention,
	)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Run immediately on start
	c.cleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *Cleaner) cleanup(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-c.retention)

	pruned, err := c.history.PruneStale(ctx, cutoff)
	if err != nil {
		slog.Error("failed to prune stale chat sessions", "error", err)
		return
	}

	if pruned > 0 {
		slog.Info("pruned stale chat sessions",
			"count", pruned,
			"cutoff", cutoff,
		)
	}
}
