package middleware

import (
    "net/http"
    "net/http/httptest"
    "strconv"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/picklepass/internal/config"
)

func newRedis(t *testing.T) *redis.Client {
    t.Helper()
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = rdb.Close() })
    return rdb
}

func serve(e *echo.Echo, method, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
    req := httptest.NewRequest(method, target, nil)
    for _, ck := range cookies {
        req.AddCookie(ck)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func profileCookie(rec *httptest.ResponseRecorder) *http.Cookie {
    for _, ck := range rec.Result().Cookies() {
        if ck.Name == ProfileCookie {
            return ck
        }
    }
    return nil
}

func TestProfileIssuesAndReusesCookie(t *testing.T) {
    e := echo.New()
    e.Use(Profile([]byte("hash-key-for-tests"), nil))
    e.GET("/whoami", func(c echo.Context) error { return c.String(http.StatusOK, ProfileID(c)) })

    first := serve(e, http.MethodGet, "/whoami")
    ck := profileCookie(first)
    if ck == nil {
        t.Fatal("no profile cookie issued")
    }
    id := first.Body.String()
    if id == "" || id == "anon" {
        t.Fatalf("profile id = %q", id)
    }

    second := serve(e, http.MethodGet, "/whoami", ck)
    if second.Body.String() != id {
        t.Fatalf("profile changed: %q -> %q", id, second.Body.String())
    }
    if profileCookie(second) != nil {
        t.Fatal("cookie re-issued for a valid profile")
    }

    forged := &http.Cookie{Name: ProfileCookie, Value: ck.Value + "x"}
    third := serve(e, http.MethodGet, "/whoami", forged)
    if third.Body.String() == id || profileCookie(third) == nil {
        t.Fatal("tampered cookie was accepted")
    }
}

func TestProfileWithEncryption(t *testing.T) {
    e := echo.New()
    e.Use(Profile([]byte("hash-key-for-tests"), []byte("0123456789abcdef")))
    e.GET("/whoami", func(c echo.Context) error { return c.String(http.StatusOK, ProfileID(c)) })
    first := serve(e, http.MethodGet, "/whoami")
    second := serve(e, http.MethodGet, "/whoami", profileCookie(first))
    if first.Body.String() != second.Body.String() {
        t.Fatal("encrypted profile cookie did not round-trip")
    }
}

func TestProfileIDWithoutMiddleware(t *testing.T) {
    c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
    if got := ProfileID(c); got != "anon" {
        t.Fatalf("ProfileID = %q", got)
    }
}

func TestRedisCacheHitsPerPath(t *testing.T) {
    calls := 0
    e := echo.New()
    cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache", MaxBodyBytes: 1 << 20}
    e.Use(NewRedisCache(cfg, newRedis(t)))
    e.GET("/v1/facilities/:slug/schedule", func(c echo.Context) error {
        calls++
        return c.JSON(http.StatusOK, echo.Map{"slug": c.Param("slug"), "n": calls})
    })

    a1 := serve(e, http.MethodGet, "/v1/facilities/a/schedule?days=7&start=2024-01-01")
    a2 := serve(e, http.MethodGet, "/v1/facilities/a/schedule?start=2024-01-01&days=7")
    b1 := serve(e, http.MethodGet, "/v1/facilities/b/schedule?days=7&start=2024-01-01")

    if a1.Header().Get("X-Cache") != "MISS" || a2.Header().Get("X-Cache") != "HIT" {
        t.Fatalf("X-Cache = %q, %q", a1.Header().Get("X-Cache"), a2.Header().Get("X-Cache"))
    }
    if a1.Body.String() != a2.Body.String() {
        t.Fatalf("cached body differs:\n%s\n%s", a1.Body, a2.Body)
    }
    if b1.Header().Get("X-Cache") != "MISS" || calls != 2 {
        t.Fatalf("second facility served from cache (calls=%d)", calls)
    }
}

func TestRedisCacheDisabledWithoutClient(t *testing.T) {
    e := echo.New()
    e.Use(NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil))
    e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
    rec := serve(e, http.MethodGet, "/x")
    if rec.Header().Get("X-Cache") != "" || rec.Body.String() != "ok" {
        t.Fatal("cache active without a redis client")
    }
}

func TestTokenBucketBlocksAfterCapacity(t *testing.T) {
    e := echo.New()
    cfg := config.RateLimitConfig{
        Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour,
        TTL: 5 * time.Hour, KeyStrategy: "route", Prefix: "rl",
    }
    e.POST("/book", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, NewTokenBucket(cfg, newRedis(t)))

    for i := 0; i < 2; i++ {
        rec := serve(e, http.MethodPost, "/book")
        if rec.Code != http.StatusNoContent {
            t.Fatalf("request %d: status %d", i, rec.Code)
        }
        if got := rec.Header().Get("X-RateLimit-Remaining"); got != strconv.Itoa(1-i) {
            t.Fatalf("request %d: remaining = %s", i, got)
        }
    }
    rec := serve(e, http.MethodPost, "/book")
    if rec.Code != http.StatusTooManyRequests {
        t.Fatalf("third request status = %d, want 429", rec.Code)
    }
    if rec.Header().Get("Retry-After") == "" {
        t.Fatal("missing Retry-After")
    }
}

func TestRedisCacheNeverReplaysCookies(t *testing.T) {
    e := echo.New()
    cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache", MaxBodyBytes: 1 << 20}
    e.Use(Profile([]byte("hash-key-for-tests"), nil))
    e.GET("/schedule", func(c echo.Context) error { return c.String(http.StatusOK, "days") }, NewRedisCache(cfg, newRedis(t)))

    first := serve(e, http.MethodGet, "/schedule")
    second := serve(e, http.MethodGet, "/schedule")
    if second.Header().Get("X-Cache") != "HIT" {
        t.Fatalf("second request X-Cache = %q", second.Header().Get("X-Cache"))
    }
    a, b := profileCookie(first), profileCookie(second)
    if a == nil || b == nil {
        t.Fatal("profile cookie missing")
    }
    if a.Value == b.Value {
        t.Fatal("cache hit replayed another visitor's profile cookie")
    }
    if got := len(second.Result().Header.Values("Set-Cookie")); got != 1 {
        t.Fatalf("hit carries %d Set-Cookie headers, want 1", got)
    }
}

func TestRedisCacheSkipsOversizedBodies(t *testing.T) {
    calls := 0
    e := echo.New()
    cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache", MaxBodyBytes: 4}
    e.GET("/big", func(c echo.Context) error {
        calls++
        return c.String(http.StatusOK, "more than four bytes")
    }, NewRedisCache(cfg, newRedis(t)))

    serve(e, http.MethodGet, "/big")
    rec := serve(e, http.MethodGet, "/big")
    if calls != 2 || rec.Body.String() != "more than four bytes" {
        t.Fatalf("oversized body was cached (calls=%d, body=%q)", calls, rec.Body.String())
    }
}

func TestRateKeyStrategies(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/booking-attempts/confirm", nil)
    req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/v1/booking-attempts/confirm")
    c.Set(profileKey, "abc")

    cases := map[string]string{
        "":              "rl:ip:10.0.0.1:profile:abc:route:POST /v1/booking-attempts/confirm",
        "profile":       "rl:profile:abc",
        "ip_route":      "rl:ip:10.0.0.1:route:POST /v1/booking-attempts/confirm",
        "profile_route": "rl:profile:abc:route:POST /v1/booking-attempts/confirm",
    }
    for strategy, want := range cases {
        if got := rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}, c); got != want {
            t.Errorf("strategy %q: key = %q, want %q", strategy, got, want)
        }
    }
}
