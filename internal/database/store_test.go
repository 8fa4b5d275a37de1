package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/picklepass/internal/config"
	"github.com/iliyamo/picklepass/internal/kvstore"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	s, closeFn, err := OpenStore(ctx, config.Config{KVBackend: "memory"}, nil)
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	closeFn()
	if _, ok := s.(*kvstore.Memory); !ok {
		t.Fatalf("memory backend gave %T", s)
	}

	if _, _, err := OpenStore(ctx, config.Config{KVBackend: "redis"}, nil); err == nil {
		t.Fatal("redis backend without a client should fail")
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	s, _, err = OpenStore(ctx, config.Config{KVBackend: "redis"}, rdb)
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	if _, ok := s.(kvstore.Swapper); !ok {
		t.Fatal("redis store does not support compare-and-swap")
	}

	if _, _, err := OpenStore(ctx, config.Config{KVBackend: "etcd"}, nil); err == nil {
		t.Fatal("unknown backend should fail")
	}
}
