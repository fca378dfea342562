package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Executor defines the common interface for pgxpool.Pool and pgx.Tx.
// This allows repositories to work seamlessly with both standalone connections and transactions.
type Executor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type DB struct {
	Pool   *pgxpool.Pool
	logger *slog.Logger
}

const pingTimeout = 5 * time.Second

// Connect opens the pool and fails fast when the server cannot be reached
// within pingTimeout.
func Connect(ctx context.Context, cfg *config.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	pgxCfg, err := cfg.PgxConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres config: %w", err)
	}

	log := logger.With("host", cfg.Host, "port", cfg.Port, "database", cfg.Name)

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	log.Info("connected to database", "max_conns", pgxCfg.MaxConns, "min_conns", pgxCfg.MinConns)

	return &DB{Pool: pool, logger: log}, nil
}

func (db *DB) Close() {
	stat := db.Pool.Stat()
	db.logger.Info("closing database pool", "acquired", stat.AcquiredConns(), "total", stat.TotalConns())
	db.Pool.Close()
}

// WithTx executes fn within a database transaction. The transaction is
// rolled back when fn returns an error.
func (db *DB) WithTx(ctx context.Context, fn func(q Executor) error) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique index violation.
func IsUniqueViolation(err error) bool {
	return violatedConstraint(err) != ""
}

// violatedConstraint returns the index name of a unique violation, or "".
func violatedConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName
	}
	return ""
}
