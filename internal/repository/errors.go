// Package repository holds the SQL data access layer. Every exported method
// returns either nil or an *apperr.Error: NotFound when an id lookup is
// empty, AlreadyExists on a unique-key violation, Storage for anything the
// driver reports.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/iliyamo/letters/internal/apperr"
)

// MySQL server error numbers handled explicitly.
const (
	errDuplicateEntry  = 1062
	errRowIsReferenced = 1451
)

func mysqlErrorNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicate(err error) bool {
	return mysqlErrorNumber(err) == errDuplicateEntry
}

func isReferenced(err error) bool {
	return mysqlErrorNumber(err) == errRowIsReferenced
}

// classify turns a driver error into an apperr. Errors that already carry a
// kind pass through untouched.
func classify(err error, resource, op string) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(resource)
	}
	if isDuplicate(err) {
		return apperr.AlreadyExists(resource)
	}
	if isReferenced(err) {
		return apperr.InvalidInput("%s is still referenced", resource)
	}
	return apperr.Storage(err, "%s %s", op, resource)
}
