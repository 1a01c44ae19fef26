package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartExpiredSessionCleaner sweeps expired sessions with interval
func StartExpiredSessionCleaner(
	ctx context.Context,
	store *Store,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := store.sweep(); removed > 0 {
					log.Info("cleaned expired sessions", zap.Int("removed", removed))
				}
			}
		}
	}()
}
