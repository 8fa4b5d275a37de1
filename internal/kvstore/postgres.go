package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS kv_entries (
	k TEXT PRIMARY KEY,
	v BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// PgxConn is the slice of *pgxpool.Pool the Postgres store uses.
type PgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres keeps every key in the kv_entries table.
type Postgres struct {
	conn PgxConn
}

func NewPostgres(conn PgxConn) *Postgres {
	if conn == nil {
		panic("kvstore: nil postgres connection")
	}
	return &Postgres{conn: conn}
}

func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.conn.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("kvstore: postgres migrate: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.conn.QueryRow(ctx, `SELECT v FROM kv_entries WHERE k = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kvstore: postgres get %s: %w", key, err)
	}
	if v == nil {
		v = []byte{}
	}
	return v, nil
}

func (s *Postgres) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO kv_entries (k, v) VALUES ($1, $2)
		ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v, updated_at = now()`, key, value)
	if err != nil {
		return fmt.Errorf("kvstore: postgres set %s: %w", key, err)
	}
	return nil
}

func (s *Postgres) CompareAndSwap(ctx context.Context, key string, prev, next []byte) (bool, error) {
	var (
		tag pgconn.CommandTag
		err error
	)
	if prev == nil {
		tag, err = s.conn.Exec(ctx,
			`INSERT INTO kv_entries (k, v) VALUES ($1, $2) ON CONFLICT (k) DO NOTHING`, key, next)
	} else {
		tag, err = s.conn.Exec(ctx,
			`UPDATE kv_entries SET v = $1, updated_at = now() WHERE k = $2 AND v = $3`, next, key, prev)
	}
	if err != nil {
		return false, fmt.Errorf("kvstore: postgres cas %s: %w", key, err)
	}
	return tag.RowsAffected() == 1, nil
}
