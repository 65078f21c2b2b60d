package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgKeyValueStore guarda los pares en la tabla session_kv, separados por
// namespace para que varios perfiles compartan la misma base.
type PgKeyValueStore struct {
	pool      *pgxpool.Pool
	namespace string
}

func NewPgKeyValueStore(pool *pgxpool.Pool, namespace string) *PgKeyValueStore {
	if namespace == "" {
		namespace = "default"
	}
	return &PgKeyValueStore{pool: pool, namespace: namespace}
}

// EnsureSchema crea la tabla si no existe.
func (r *PgKeyValueStore) EnsureSchema(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS session_kv (
			namespace  TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (namespace, key)
		)
	`
	_, err := r.pool.Exec(ctx, query)
	return err
}

func (r *PgKeyValueStore) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	const query = `
		SELECT key, value
		FROM session_kv
		WHERE namespace = $1 AND key = ANY($2)
	`
	rows, err := r.pool.Query(ctx, query, r.namespace, keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (r *PgKeyValueStore) SetAll(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	const query = `
		INSERT INTO session_kv (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	now := time.Now().UTC()
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for k, v := range values {
			if _, err := tx.Exec(ctx, query, r.namespace, k, v, now); err != nil {
				return fmt.Errorf("upsert %q: %w", k, err)
			}
		}
		return nil
	})
}

func (r *PgKeyValueStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	const query = `
		DELETE FROM session_kv
		WHERE namespace = $1 AND key = ANY($2)
	`
	_, err := r.pool.Exec(ctx, query, r.namespace, keys)
	return err
}
