// Package pgstore implements storage.Store on a PostgreSQL kv_records table.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/database"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Queryable is satisfied by both *pgxpool.Pool and pgx.Tx
type Queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a storage.Store backed by PostgreSQL
type Store struct {
	q Queryable
}

// New creates a store over the shared connection pool
func New(db *database.DB) *Store {
	return &Store{q: db.Pool}
}

// NewWithQueryable creates a store over an arbitrary pool or transaction
func NewWithQueryable(q Queryable) *Store {
	return &Store{q: q}
}

func (s *Store) Get(ctx context.Context, key string) (storage.Record, error) {
	query := `
		SELECT key, version, value, updated_at
		FROM kv_records
		WHERE key = $1
	`

	var rec storage.Record
	err := s.q.QueryRow(ctx, query, key).Scan(&rec.Key, &rec.Version, &rec.Value, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Record{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Record{}, fmt.Errorf("failed to get record %s: %w", key, err)
	}
	return rec, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) (storage.Record, error) {
	query := `
		INSERT INTO kv_records (key, version, value)
		VALUES ($1, 1, $2)
		ON CONFLICT (key) DO UPDATE
		SET version = kv_records.version + 1,
		    value = EXCLUDED.value,
		    updated_at = NOW()
		RETURNING version, updated_at
	`

	rec := storage.Record{Key: key, Value: value}
	if err := s.q.QueryRow(ctx, query, key, value).Scan(&rec.Version, &rec.UpdatedAt); err != nil {
		return storage.Record{}, fmt.Errorf("failed to put record %s: %w", key, err)
	}
	return rec, nil
}

func (s *Store) CompareAndSwap(ctx context.Context, key string, expectedVersion int64, value []byte) (storage.Record, error) {
	var row pgx.Row
	if expectedVersion == 0 {
		row = s.q.QueryRow(ctx, `
			INSERT INTO kv_records (key, version, value)
			VALUES ($1, 1, $2)
			ON CONFLICT (key) DO NOTHING
			RETURNING version, updated_at
		`, key, value)
	} else {
		row = s.q.QueryRow(ctx, `
			UPDATE kv_records
			SET version = version + 1, value = $3, updated_at = NOW()
			WHERE key = $1 AND version = $2
			RETURNING version, updated_at
		`, key, expectedVersion, value)
	}

	rec := storage.Record{Key: key, Value: value}
	err := row.Scan(&rec.Version, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Record{}, storage.ErrVersionConflict
	}
	if err != nil {
		return storage.Record{}, fmt.Errorf("failed to compare-and-swap record %s: %w", key, err)
	}
	return rec, nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]storage.Record, error) {
	query := `
		SELECT key, version, value, updated_at
		FROM kv_records
		WHERE key LIKE $1 ESCAPE '\'
		ORDER BY key
	`

	rows, err := s.q.Query(ctx, query, likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list records with prefix %s: %w", prefix, err)
	}
	defer rows.Close()

	records := make([]storage.Record, 0)
	for rows.Next() {
		var rec storage.Record
		if err := rows.Scan(&rec.Key, &rec.Version, &rec.Value, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return records, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}
