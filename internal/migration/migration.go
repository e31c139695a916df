// Package migration applies the schema. Migrations are plain lists of DDL
// statements identified by an increasing integer version; the highest
// applied version is recorded in letters_migration.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/iliyamo/letters/internal/logging"
)

type Migration struct {
	Version     int
	Name        string
	Description string
	Up          []string
}

type Status struct {
	Migration
	Applied bool
}

const createVersionTable = `
CREATE TABLE IF NOT EXISTS letters_migration (
    version    INT NOT NULL,
    name       VARCHAR(128) NOT NULL,
    applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (version)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

func sorted(migrations []Migration) []Migration {
	out := append([]Migration(nil), migrations...)
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}

// LatestVersion is the version of the newest known migration.
func LatestVersion() int {
	all := sorted(All)
	if len(all) == 0 {
		return 0
	}
	return all[len(all)-1].Version
}

// CurrentVersion returns the highest applied version, or 0 on a fresh
// database.
func CurrentVersion(ctx context.Context, db *sql.DB) (int, error) {
	if _, err := db.ExecContext(ctx, createVersionTable); err != nil {
		return 0, fmt.Errorf("create migration table: %w", err)
	}
	var v sql.NullInt64
	if err := db.QueryRowContext(ctx, "SELECT MAX(version) FROM letters_migration").Scan(&v); err != nil {
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	return int(v.Int64), nil
}

// Migrate applies every migration newer than the current version up to and
// including target. A target of 0 means the latest version. MySQL commits DDL
// implicitly, so each statement is executed on its own and the version row is
// written after the last statement of a migration succeeds.
func Migrate(ctx context.Context, db *sql.DB, target int) error {
	return migrate(ctx, db, All, target)
}

func migrate(ctx context.Context, db *sql.DB, migrations []Migration, target int) error {
	current, err := CurrentVersion(ctx, db)
	if err != nil {
		return err
	}
	all := sorted(migrations)
	if target <= 0 && len(all) > 0 {
		target = all[len(all)-1].Version
	}

	applied := 0
	for _, m := range all {
		if m.Version <= current || m.Version > target {
			continue
		}
		logging.Info().Int("version", m.Version).Str("name", m.Name).Msg("Applying migration")
		for i, stmt := range m.Up {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration %d (%s) statement %d: %w", m.Version, m.Name, i+1, err)
			}
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO letters_migration (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		applied++
	}

	if applied == 0 {
		logging.Info().Int("version", current).Msg("Database is up to date")
	} else {
		logging.Info().Int("applied", applied).Int("version", target).Msg("Migrations complete")
	}
	return nil
}

// List reports every known migration and whether it has been applied.
func List(ctx context.Context, db *sql.DB) ([]Status, error) {
	current, err := CurrentVersion(ctx, db)
	if err != nil {
		return nil, err
	}
	var out []Status
	for _, m := range sorted(All) {
		out = append(out, Status{Migration: m, Applied: m.Version <= current})
	}
	return out, nil
}
