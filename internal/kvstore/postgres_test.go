package kvstore

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakePgx interprets the handful of statements the Postgres store issues.
type fakePgx struct {
	mu   sync.Mutex
	rows map[string][]byte
}

type fakeRow struct {
	v   []byte
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*[]byte) = r.v
	return nil
}

func (f *fakePgx) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{v: append([]byte{}, v...)}
}

func (f *fakePgx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sql = strings.TrimSpace(sql)
	switch {
	case strings.HasPrefix(sql, "CREATE TABLE"):
		return pgconn.NewCommandTag("CREATE TABLE"), nil
	case strings.Contains(sql, "DO NOTHING"):
		k := args[0].(string)
		if _, ok := f.rows[k]; ok {
			return pgconn.NewCommandTag("INSERT 0 0"), nil
		}
		f.rows[k] = args[1].([]byte)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case strings.HasPrefix(sql, "INSERT"):
		f.rows[args[0].(string)] = args[1].([]byte)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case strings.HasPrefix(sql, "UPDATE"):
		k := args[1].(string)
		if cur, ok := f.rows[k]; ok && string(cur) == string(args[2].([]byte)) {
			f.rows[k] = args[0].([]byte)
			return pgconn.NewCommandTag("UPDATE 1"), nil
		}
		return pgconn.NewCommandTag("UPDATE 0"), nil
	}
	panic("unexpected statement: " + sql)
}

func TestPostgresContract(t *testing.T) {
	s := NewPostgres(&fakePgx{rows: map[string][]byte{}})
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	exerciseSwapper(t, s)
}
