package cleanup

import (
	"context"
	"time"

	"github.com/AlibekovAA/notes/internal/common/logger"
	"github.com/AlibekovAA/notes/internal/observability/metrics"
)

type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// StartRevokedTokenCleanup blocks, purging expired revocations every interval
// until ctx is done.
func StartRevokedTokenCleanup(ctx context.Context, repo ExpiredDeleter, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			RunOnce(ctx, repo, log)
		}
	}
}

func RunOnce(ctx context.Context, repo ExpiredDeleter, log *logger.Logger) int64 {
	deleted, err := repo.DeleteExpired(ctx)
	if err != nil {
		log.WithFields(ctx, logger.Fields{"action": "revoked_token_cleanup_failed"}).Errorf("revoked token cleanup failed: %v", err)
		return 0
	}
	if deleted > 0 {
		metrics.RevokedTokensCleanupDeleted.Add(float64(deleted))
		log.Infof("revoked token cleanup: deleted %d expired tokens", deleted)
	}
	return deleted
}
