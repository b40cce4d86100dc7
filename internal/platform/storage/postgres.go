package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool used by PostgresStore.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS record_collections (
  name       TEXT PRIMARY KEY,
  body       JSONB NOT NULL,
  revision   BIGINT NOT NULL DEFAULT 1,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps each collection as one JSONB row.
type PostgresStore struct {
	DB Querier
}

func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{DB: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.DB.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create record_collections: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, c Collection) (Snapshot, error) {
	var raw []byte
	err := s.DB.QueryRow(ctx, `SELECT body FROM record_collections WHERE name = $1`, string(c)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{Collection: c, State: Empty}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load %s: %w", c, err)
	}
	return snapshotFrom(c, raw)
}

func (s *PostgresStore) Save(ctx context.Context, c Collection, doc any) error {
	data, err := encode(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c, err)
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO record_collections (name, body)
    VALUES ($1, $2)
    ON CONFLICT (name) DO UPDATE
    SET body = EXCLUDED.body,
        revision = record_collections.revision + 1,
        updated_at = now()
  `, string(c), data)
	if err != nil {
		return fmt.Errorf("save %s: %w", c, err)
	}
	return nil
}
