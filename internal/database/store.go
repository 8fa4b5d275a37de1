package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/picklepass/internal/config"
	"github.com/iliyamo/picklepass/internal/kvstore"
	"github.com/iliyamo/picklepass/internal/logger"
)

// OpenStore builds the key-value store selected by KV_BACKEND.  The SQL
// backends create their table before returning.  closeFn releases whatever
// connection the backend holds; rdb is reused for the redis backend.
func OpenStore(ctx context.Context, cfg config.Config, rdb *redis.Client) (store kvstore.Store, closeFn func(), err error) {
	noop := func() {}
	switch cfg.KVBackend {
	case "", "memory":
		logger.Warn("Database:OpenStore:Memory", "note", "bookings are lost on restart")
		return kvstore.NewMemory(), noop, nil

	case "redis":
		if rdb == nil {
			return nil, nil, errors.New("kv backend redis: redis is unreachable")
		}
		return kvstore.NewRedis(rdb), noop, nil

	case "mysql":
		db, err := OpenMySQL(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("kv backend mysql: %w", err)
		}
		s := kvstore.NewMySQL(db)
		if err := s.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return s, func() { _ = db.Close() }, nil

	case "postgres":
		pool, err := OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("kv backend postgres: %w", err)
		}
		s := kvstore.NewPostgres(pool)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return s, pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown kv backend %q", cfg.KVBackend)
}
