// Package errlog holds the retention worker for the error log store. MySQL
// has no TTL index, so expiry is a periodic purge instead.
package errlog

import (
	"context"
	"log/slog"
	"time"
)

// Purger deletes error log entries older than a cutoff.
type Purger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Janitor periodically deletes error logs past the retention window.
type Janitor struct {
	store     Purger
	retention time.Duration
	interval  time.Duration
}

// NewJanitor creates a Janitor purging entries older than retention on the
// given interval.
func NewJanitor(store Purger, retention, interval time.Duration) *Janitor {
	return &Janitor{store: store, retention: retention, interval: interval}
}

// Run purges once immediately, then on every tick until ctx is canceled.
func (j *Janitor) Run(ctx context.Context) {
	j.purge(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.purge(ctx)
		}
	}
}

func (j *Janitor) purge(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-j.retention)
	purged, err := j.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		slog.Error("error log purge failed", "error", err)
		return
	}
	if purged > 0 {
		slog.Info("purged expired error logs", "count", purged, "cutoff", cutoff)
	}
}
