package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/letters/internal/apperr"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// withTx runs fn inside a transaction. The transaction is rolled back when fn
// returns an error or the context is canceled, and committed otherwise.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Storage(err, "begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = apperr.Storage(cerr, "commit transaction")
		}
	}()
	return fn(tx)
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// exists reports whether query returns at least one row.
func exists(ctx context.Context, q queryer, query, resource string, args ...any) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, classify(err, resource, "check")
	}
	return true, nil
}

// nameTakenByOther returns AlreadyExists when query (selecting an id by
// name) finds a row other than self.
func nameTakenByOther(ctx context.Context, q queryer, query, resource, name string, self uint64) error {
	var id uint64
	err := q.QueryRowContext(ctx, query, name).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return classify(err, resource, "check")
	case id != self:
		return apperr.AlreadyExists(resource)
	}
	return nil
}
