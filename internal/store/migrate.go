package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ApplyMigrations brings the intake schema up to date. Every *.up.sql file
// in migrationsDir runs once, in lexical order, inside its own transaction;
// applied versions are recorded in hearth_schema_migrations so restarts of
// the API are cheap no-ops.
func ApplyMigrations(ctx context.Context, db *sql.DB, migrationsDir string) error {
	if err := ensureVersionTable(ctx, db); err != nil {
		return err
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	steps, err := pendingSteps(migrationsDir, applied)
	if err != nil {
		return err
	}

	for _, step := range steps {
		contents, err := os.ReadFile(step.path)
		if err != nil {
			return fmt.Errorf("read schema step %s: %w", step.version, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema step %s: %w", step.version, err)
		}

		if _, err := tx.ExecContext(ctx, string(contents)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply schema step %s: %w", step.version, err)
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO hearth_schema_migrations(version) VALUES($1)`, step.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record schema step %s: %w", step.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit schema step %s: %w", step.version, err)
		}
	}

	return nil
}

type migrationStep struct {
	version string
	path    string
}

// pendingSteps lists the up migrations not yet recorded, sorted by version.
// Versions are the file name without the .up.sql suffix ("0001_init").
func pendingSteps(migrationsDir string, applied map[string]bool) ([]migrationStep, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir: %w", err)
	}

	var steps []migrationStep
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		version := strings.TrimSuffix(name, ".up.sql")
		if applied[version] {
			continue
		}
		steps = append(steps, migrationStep{version: version, path: filepath.Join(migrationsDir, name)})
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].version < steps[j].version })
	return steps, nil
}

func ensureVersionTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS hearth_schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure hearth_schema_migrations: %w", err)
	}
	return nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM hearth_schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied schema steps: %w", err)
	}
	defer rows.Close()

	applied := map[string]bool{}
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan applied schema step: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applied schema steps: %w", err)
	}
	return applied, nil
}
