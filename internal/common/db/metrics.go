package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/notes/internal/common/constants"
	"github.com/AlibekovAA/notes/internal/observability/metrics"
)

// StartPoolMetrics samples pgx pool stats until ctx is done.
func StartPoolMetrics(ctx context.Context, pool *pgxpool.Pool, interval time.Duration) {
	startSampler(ctx, interval, func() {
		stats := pool.Stat()
		metrics.SetPoolConnections(
			float64(stats.AcquiredConns()),
			float64(stats.IdleConns()),
			float64(stats.MaxConns()),
			float64(stats.TotalConns()),
		)
	})
}

// StartSQLMetrics samples database/sql stats for the SQLite driver.
func StartSQLMetrics(ctx context.Context, sqlDB *sql.DB, interval time.Duration) {
	startSampler(ctx, interval, func() {
		stats := sqlDB.Stats()
		metrics.SetPoolConnections(
			float64(stats.InUse),
			float64(stats.Idle),
			float64(stats.MaxOpenConnections),
			float64(stats.OpenConnections),
		)
	})
}

func startSampler(ctx context.Context, interval time.Duration, sample func()) {
	if interval <= 0 {
		interval = constants.DBPoolMetricsInterval
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sample()
			}
		}
	}()
}
