package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/officeledger/internal/dbx"
	"github.com/dmitrijs2005/officeledger/internal/storage/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresRepository keeps documents in a shared PostgreSQL database.
type PostgresRepository struct {
	db     dbx.DBTX
	closer func() error
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, closer: func() error { return nil }}
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepository, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := RunMigrations(ctx, db, "postgres", migrations.PostgresDir); err != nil {
		_ = db.Close()
		return nil, err
	}
	r := NewPostgresRepository(db)
	r.closer = db.Close
	return r, nil
}

func (r *PostgresRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM documents WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document[%s]: %w", key, err)
	}
	return value, nil
}

func (r *PostgresRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set document[%s]: %w", key, err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete document[%s]: %w", key, err)
	}
	return nil
}

func (r *PostgresRepository) Keys(ctx context.Context) ([]string, error) {
	return queryKeys(ctx, r.db, `SELECT key FROM documents ORDER BY key`)
}

func (r *PostgresRepository) Close() error {
	return r.closer()
}
