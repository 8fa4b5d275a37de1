package repository

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "sync"

    "github.com/iliyamo/picklepass/internal/kvstore"
    "github.com/iliyamo/picklepass/internal/logger"
)

// maxSwapAttempts bounds the optimistic retry loop on stores that support
// compare-and-swap.
const maxSwapAttempts = 5

// readList loads the JSON array stored at key.  A missing key and a value
// that is not a JSON array of T both yield an empty list; raw is returned so
// callers can use it as the compare-and-swap precondition.  Only store I/O
// failures are reported as errors.
func readList[T any](ctx context.Context, store kvstore.Store, key string) (items []T, raw []byte, err error) {
    raw, err = store.Get(ctx, key)
    if errors.Is(err, kvstore.ErrKeyNotFound) {
        return []T{}, nil, nil
    }
    if err != nil {
        return nil, nil, fmt.Errorf("read %s: %w", key, err)
    }
    if err := json.Unmarshal(raw, &items); err != nil {
        logger.Warn("Repository:readList:Malformed", "key", key, "error", err)
        return []T{}, raw, nil
    }
    if items == nil {
        items = []T{}
    }
    return items, raw, nil
}

// mutateList applies fn to the list at key and persists the result as one
// whole-value write.  When store is a kvstore.Swapper the write is a
// compare-and-swap against the value fn saw, retried up to maxSwapAttempts
// times; otherwise it is a plain Set.  If fn returns an error nothing is
// written and the error is passed through unchanged.
func mutateList[T any](ctx context.Context, store kvstore.Store, key string, fn func([]T) ([]T, error)) ([]T, error) {
    sw, canSwap := store.(kvstore.Swapper)
    attempts := 1
    if canSwap {
        attempts = maxSwapAttempts
    }
    for i := 0; i < attempts; i++ {
        cur, raw, err := readList[T](ctx, store, key)
        if err != nil {
            return nil, err
        }
        next, err := fn(cur)
        if err != nil {
            return nil, err
        }
        body, err := json.Marshal(next)
        if err != nil {
            return nil, fmt.Errorf("encode %s: %w", key, err)
        }
        if !canSwap {
            if err := store.Set(ctx, key, body); err != nil {
                return nil, fmt.Errorf("write %s: %w", key, err)
            }
            return next, nil
        }
        ok, err := sw.CompareAndSwap(ctx, key, raw, body)
        if err != nil {
            return nil, fmt.Errorf("write %s: %w", key, err)
        }
        if ok {
            return next, nil
        }
        logger.Debug("Repository:mutateList:Conflict", "key", key, "attempt", i+1)
    }
    return nil, ErrLedgerContention
}

// keyedMutex hands out one mutex per key so writers to the same profile
// serialize in-process while different profiles proceed in parallel.
type keyedMutex struct {
    locks sync.Map // string -> *sync.Mutex
}

func (k *keyedMutex) lock(key string) (unlock func()) {
    v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
    m := v.(*sync.Mutex)
    m.Lock()
    return m.Unlock
}
