package repository

import (
	"context"
	"database/sql"
)

// ContentStats counts the rows of the main content tables.
type ContentStats struct {
	Users      int64
	Categories int64
	Tags       int64
	Articles   int64
	Series     int64
}

type StatsRepo struct{ db *sql.DB }

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

func (r *StatsRepo) Content(ctx context.Context) (ContentStats, error) {
	var s ContentStats
	err := r.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM user),
		       (SELECT COUNT(*) FROM category),
		       (SELECT COUNT(*) FROM tag),
		       (SELECT COUNT(*) FROM article),
		       (SELECT COUNT(*) FROM series)`).
		Scan(&s.Users, &s.Categories, &s.Tags, &s.Articles, &s.Series)
	if err != nil {
		return ContentStats{}, classify(err, "stats", "count")
	}
	return s, nil
}

// Ping reports whether the database answers.
func (r *StatsRepo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return classify(err, "database", "ping")
	}
	return nil
}

// Pool exposes the connection pool counters of the underlying handle.
func (r *StatsRepo) Pool() sql.DBStats {
	return r.db.Stats()
}
