package config

import (
    "fmt"
    "strings"
    "time"

    "github.com/kelseyhightower/envconfig"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching will be disabled.
// Methods lists the HTTP methods to cache (e.g. GET, HEAD).  TTL defines the
// lifetime of cache entries.  KeyStrategy determines which parts of the request
// contribute to the cache key.  Prefix and MaxBodyBytes allow control over
// namespacing and the maximum size of responses to cache.
type CacheConfig struct {
    Enabled      bool          `envconfig:"ENABLED" default:"true"`
    MethodList   []string      `envconfig:"METHODS" default:"GET"`
    TTL          time.Duration `envconfig:"TTL" default:"30s"`
    KeyStrategy  string        `envconfig:"KEY_STRATEGY" default:"route_query"`
    Prefix       string        `envconfig:"PREFIX" default:"cache"`
    MaxBodyBytes int           `envconfig:"MAX_BODY_BYTES" default:"1048576"`

    Methods map[string]bool `ignored:"true"`
}

// LoadCacheConfig reads the CACHE_* variables.  All methods are upper-cased.
func LoadCacheConfig() (CacheConfig, error) {
    var c CacheConfig
    if err := envconfig.Process("cache", &c); err != nil {
        return CacheConfig{}, fmt.Errorf("config: %w", err)
    }
    c.Methods = parseMethods(c.MethodList)
    return c, nil
}

func parseMethods(list []string) map[string]bool {
    m := map[string]bool{}
    for _, p := range list {
        p = strings.TrimSpace(strings.ToUpper(p))
        if p != "" {
            m[p] = true
        }
    }
    return m
}
