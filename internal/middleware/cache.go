package middleware

import (
    "bytes"
    "context"
    "encoding/hex"
    "encoding/json"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "golang.org/x/crypto/blake2b"

    "github.com/iliyamo/picklepass/internal/config"
    "github.com/iliyamo/picklepass/internal/logger"
)

// uncachedHeaders never go into a cache entry.  Set-Cookie carries the
// profile of whoever caused the miss and must not reach anyone else.
var uncachedHeaders = []string{"Set-Cookie", "Content-Length", "X-Cache"}

// cachedResponse is the value stored under a cache key.
type cachedResponse struct {
    Status int         `json:"s"`
    Header http.Header `json:"h"`
    Body   []byte      `json:"b"`
}

// bodyRecorder tees the response body into buf up to limit bytes.
// overflow is set once the body outgrows limit; such responses are
// served but not cached.
type bodyRecorder struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    limit    int
    overflow bool
}

func (w *bodyRecorder) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
    if !w.overflow {
        if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
            w.overflow = true
            w.buf.Reset()
        } else {
            w.buf.Write(b)
        }
    }
    return w.ResponseWriter.Write(b)
}

// cacheKey derives the Redis key of a request.  The request path is used
// rather than the route pattern so two facilities never share an entry;
// query parameters are sorted by Encode, so their order does not matter.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
    r := c.Request()
    var parts []string
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        parts = []string{"route", r.URL.Path}
    case "method_route":
        parts = []string{"method", r.Method, "route", r.URL.Path}
    case "method_route_query":
        parts = []string{"method", r.Method, "route", r.URL.Path, "q", r.URL.Query().Encode()}
    default: // route_query
        parts = []string{"route", r.URL.Path, "q", r.URL.Query().Encode()}
    }
    sum := blake2b.Sum256([]byte(strings.Join(parts, ":")))
    return cfg.Prefix + ":" + hex.EncodeToString(sum[:16])
}

func replay(c echo.Context, entry cachedResponse) error {
    h := c.Response().Header()
    for k, vals := range entry.Header {
        for _, v := range vals {
            h.Add(k, v)
        }
    }
    h.Set("X-Cache", "HIT")
    c.Response().WriteHeader(entry.Status)
    _, err := c.Response().Write(entry.Body)
    return err
}

func snapshotHeader(src http.Header) http.Header {
    out := src.Clone()
    for _, k := range uncachedHeaders {
        out.Del(k)
    }
    return out
}

// NewRedisCache caches 200 responses of the configured methods in Redis for
// cfg.TTL.  Headers are replayed on a hit, except cookies.  Only mount it on
// routes whose output does not depend on the caller's profile.  With caching
// disabled or no Redis client it passes every request through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            ctx := c.Request().Context()
            key := cacheKey(cfg, c)

            if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
                var entry cachedResponse
                if jerr := json.Unmarshal(raw, &entry); jerr == nil && entry.Status != 0 {
                    return replay(c, entry)
                }
                logger.Debug("Middleware:Cache:CorruptEntry", "key", key)
            } else if !errors.Is(err, redis.Nil) {
                logger.Debug("Middleware:Cache:ReadError", "key", key, "error", err)
            }

            rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = rec
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if rec.status != http.StatusOK || rec.overflow {
                return nil
            }

            payload, err := json.Marshal(cachedResponse{
                Status: rec.status,
                Header: snapshotHeader(c.Response().Header()),
                Body:   rec.buf.Bytes(),
            })
            if err != nil {
                return nil
            }
            // The request context may already be done once the client has
            // its response.
            if err := rdb.SetEx(context.WithoutCancel(ctx), key, payload, ttl).Err(); err != nil {
                logger.Debug("Middleware:Cache:StoreError", "key", key, "error", err)
            }
            return nil
        }
    }
}
