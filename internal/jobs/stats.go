package jobs

import (
	"context"
	"database/sql"

	"github.com/iliyamo/letters/internal/logging"
	"github.com/iliyamo/letters/internal/repository"
)

type StatsSource interface {
	Content(ctx context.Context) (repository.ContentStats, error)
	Pool() sql.DBStats
}

// ReportStats returns a task that logs row counts of the content tables and
// the state of the connection pool.
func ReportStats(src StatsSource) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		s, err := src.Content(ctx)
		if err != nil {
			return err
		}
		pool := src.Pool()
		logging.ExtractLogger(ctx).Info().
			Int64("users", s.Users).
			Int64("categories", s.Categories).
			Int64("tags", s.Tags).
			Int64("articles", s.Articles).
			Int64("series", s.Series).
			Int("open_conns", pool.OpenConnections).
			Int("in_use", pool.InUse).
			Int64("wait_count", pool.WaitCount).
			Dur("wait", pool.WaitDuration).
			Msg("content stats")
		return nil
	}
}
