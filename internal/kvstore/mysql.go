package kvstore

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS kv_entries (
    k          VARCHAR(255) NOT NULL PRIMARY KEY,
    v          LONGBLOB     NOT NULL,
    updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// MySQL keeps every key in the kv_entries table.
type MySQL struct {
	db *sql.DB
}

func NewMySQL(db *sql.DB) *MySQL {
	if db == nil {
		panic("kvstore: nil *sql.DB")
	}
	return &MySQL{db: db}
}

// Migrate creates kv_entries if it does not exist.
func (s *MySQL) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, mysqlSchema); err != nil {
		return fmt.Errorf("kvstore: mysql migrate: %w", err)
	}
	return nil
}

func (s *MySQL) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, `SELECT v FROM kv_entries WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kvstore: mysql get %s: %w", key, err)
	}
	if v == nil {
		v = []byte{}
	}
	return v, nil
}

func (s *MySQL) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)`, key, value)
	if err != nil {
		return fmt.Errorf("kvstore: mysql set %s: %w", key, err)
	}
	return nil
}

// CompareAndSwap relies on the affected-row count of a conditional write.
// MySQL reports zero affected rows for an UPDATE that leaves the value
// unchanged, so a no-op swap is answered with a read instead.
func (s *MySQL) CompareAndSwap(ctx context.Context, key string, prev, next []byte) (bool, error) {
	if prev == nil {
		res, err := s.db.ExecContext(ctx, `INSERT IGNORE INTO kv_entries (k, v) VALUES (?, ?)`, key, next)
		if err != nil {
			return false, fmt.Errorf("kvstore: mysql cas %s: %w", key, err)
		}
		return affectedOne(res)
	}
	if bytes.Equal(prev, next) {
		cur, err := s.Get(ctx, key)
		if errors.Is(err, ErrKeyNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return bytes.Equal(cur, prev), nil
	}
	res, err := s.db.ExecContext(ctx, `UPDATE kv_entries SET v = ? WHERE k = ? AND v = ?`, next, key, prev)
	if err != nil {
		return false, fmt.Errorf("kvstore: mysql cas %s: %w", key, err)
	}
	return affectedOne(res)
}

func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("kvstore: rows affected: %w", err)
	}
	return n == 1, nil
}
