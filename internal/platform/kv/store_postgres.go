// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements [Store] on a single kv_entries table.
//
// # Schema
//
// kv_entries(k text primary key, v jsonb not null, updated_at timestamptz).
// The schema is owned by the migrations under data/migrations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed [Store].
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Get returns the value at key, or ErrKeyNotFound.
func (store *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := store.pool.QueryRow(ctx,
		`SELECT v FROM kv_entries WHERE k = $1`, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("kv: postgres get %q: %w", key, err)
	}
	return value, nil
}

// Set upserts the value at key.
func (store *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := store.pool.Exec(ctx,
		`INSERT INTO kv_entries (k, v, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("kv: postgres set %q: %w", key, err)
	}
	return nil
}

// SetIfAbsent inserts the value only when the key is new.
//
// ON CONFLICT DO NOTHING makes the duplicate check atomic at the database,
// so two concurrent writers cannot both succeed.
func (store *PostgresStore) SetIfAbsent(ctx context.Context, key string, value []byte) (bool, error) {
	tag, err := store.pool.Exec(ctx,
		`INSERT INTO kv_entries (k, v, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (k) DO NOTHING`,
		key, value,
	)
	if err != nil {
		return false, fmt.Errorf("kv: postgres setnx %q: %w", key, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes the key.
func (store *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := store.pool.Exec(ctx, `DELETE FROM kv_entries WHERE k = $1`, key); err != nil {
		return fmt.Errorf("kv: postgres delete %q: %w", key, err)
	}
	return nil
}

// GetByPrefix returns every value whose key starts with prefix.
func (store *PostgresStore) GetByPrefix(ctx context.Context, prefix string) ([][]byte, error) {
	rows, err := store.pool.Query(ctx,
		`SELECT v FROM kv_entries WHERE k LIKE $1`, escapeLike(prefix)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("kv: postgres prefix scan %q: %w", prefix, err)
	}
	defer rows.Close()

	var results [][]byte
	for rows.Next() {
		var value []byte
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("kv: postgres prefix scan %q: %w", prefix, err)
		}
		results = append(results, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kv: postgres prefix scan %q: %w", prefix, err)
	}
	return results, nil
}

// escapeLike neutralizes LIKE metacharacters so prefixes match literally.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
