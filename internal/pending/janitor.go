package pending

import (
	"context"
	"log/slog"
	"time"
)

// Purger removes expired pending logins from backends that do not expire entries themselves.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// RunJanitor purges expired entries every interval until ctx is done.
func RunJanitor(ctx context.Context, purger Purger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := purger.PurgeExpired(ctx)
			if err != nil {
				if ctx.Err() == nil {
					slog.Error("failed to purge expired pending logins", "error", err)
				}
				continue
			}
			if n > 0 {
				slog.Debug("purged expired pending logins", "count", n)
			}
		}
	}
}
