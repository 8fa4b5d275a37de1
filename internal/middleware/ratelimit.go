package middleware

import (
    "context"
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/picklepass/internal/config"
    "github.com/iliyamo/picklepass/internal/logger"
)

// takeToken refills the bucket at KEYS[1] for the intervals elapsed since
// the last refill, then takes one token if any is left.  It returns
// {allowed, tokens_left, retry_after_ms}.
var takeToken = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])
if tokens == nil or last_refill == nil then
    tokens = capacity
    last_refill = now_ms
end

if interval_ms > 0 and refill_tokens > 0 then
    local intervals = math.floor(math.max(0, now_ms - last_refill) / interval_ms)
    if intervals > 0 then
        tokens = math.min(capacity, tokens + intervals * refill_tokens)
        last_refill = last_refill + intervals * interval_ms
    end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
    allowed = 1
    tokens = tokens - 1
else
    retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)
return {allowed, tokens, retry_after_ms}
`)

// bucketDecision is the outcome of one takeToken call.
type bucketDecision struct {
    Allowed    bool
    Remaining  int64
    RetryAfter time.Duration
}

type tokenBucket struct {
    cfg config.RateLimitConfig
    rdb *redis.Client
    now func() time.Time
}

func (b *tokenBucket) take(ctx context.Context, key string) (bucketDecision, error) {
    res, err := takeToken.Run(ctx, b.rdb, []string{key},
        b.now().UnixMilli(),
        b.cfg.Capacity,
        b.cfg.RefillTokens,
        b.cfg.RefillInterval.Milliseconds(),
        int64(b.cfg.TTL/time.Second),
    ).Int64Slice()
    if err != nil {
        return bucketDecision{}, err
    }
    if len(res) != 3 {
        return bucketDecision{}, fmt.Errorf("rate limit script returned %d values", len(res))
    }
    return bucketDecision{
        Allowed:    res[0] == 1,
        Remaining:  res[1],
        RetryAfter: time.Duration(res[2]) * time.Millisecond,
    }, nil
}

// NewTokenBucket limits requests with a Redis-side token bucket per key
// (see rateKey).  A Redis failure lets the request through.  With limiting
// disabled or no Redis client it passes every request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    bucket := &tokenBucket{cfg: cfg, rdb: rdb, now: time.Now}

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := rateKey(cfg, c)
            d, err := bucket.take(c.Request().Context(), key)
            if err != nil {
                logger.Warn("Middleware:RateLimit:RedisError", "key", key, "error", err)
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if d.Allowed {
                return next(c)
            }

            secs := int((d.RetryAfter + time.Second - 1) / time.Second)
            h.Set("Retry-After", strconv.Itoa(secs))
            logger.Info("Middleware:RateLimit:Blocked", "key", key, "retry_after", d.RetryAfter.String())
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "error":       "too_many_requests",
                "message":     "rate limit exceeded",
                "retry_after": secs,
            })
        }
    }
}

// rateKey builds the bucket key from the parts named by cfg.KeyStrategy,
// an underscore-separated list drawn from ip, profile and route.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
    strategy := strings.ToLower(cfg.KeyStrategy)
    if strategy == "" {
        strategy = "ip_profile_route"
    }
    parts := []string{cfg.Prefix}
    for _, p := range strings.Split(strategy, "_") {
        switch p {
        case "ip":
            ip := c.RealIP()
            if ip == "" {
                ip = "unknown"
            }
            parts = append(parts, "ip", ip)
        case "profile":
            parts = append(parts, "profile", ProfileID(c))
        case "route":
            parts = append(parts, "route", c.Request().Method+" "+c.Path())
        }
    }
    return strings.Join(parts, ":")
}
