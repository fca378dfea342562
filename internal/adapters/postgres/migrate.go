package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/DanielPopoola/labresult-gateway/db"
)

// Migrate applies every embedded *.up.sql file that has not been recorded
// in schema_migrations, in lexical order.
func Migrate(ctx context.Context, database *DB) ([]string, error) {
	return migrateFS(ctx, database, db.Migrations)
}

func migrateFS(ctx context.Context, database *DB, fsys fs.FS) ([]string, error) {
	_, err := database.Pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	files, err := fs.Glob(fsys, "migrations/*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	var applied []string
	for _, file := range files {
		version := strings.TrimSuffix(strings.TrimPrefix(file, "migrations/"), ".up.sql")

		var exists bool
		err := database.Pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
		).Scan(&exists)
		if err != nil {
			return applied, fmt.Errorf("check migration %s: %w", version, err)
		}
		if exists {
			continue
		}

		body, err := fs.ReadFile(fsys, file)
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", file, err)
		}

		err = database.WithTx(ctx, func(q Executor) error {
			if _, err := q.Exec(ctx, string(body)); err != nil {
				return fmt.Errorf("execute migration %s: %w", version, err)
			}
			_, err := q.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version)
			return err
		})
		if err != nil {
			return applied, err
		}

		database.logger.Info("applied migration", "version", version)
		applied = append(applied, version)
	}

	return applied, nil
}
