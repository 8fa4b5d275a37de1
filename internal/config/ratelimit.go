package config

import (
    "fmt"
    "time"

    "github.com/kelseyhightower/envconfig"
)

type RateLimitConfig struct {
    Enabled        bool          `envconfig:"ENABLED" default:"true"`
    Capacity       int           `envconfig:"CAPACITY" default:"20"`
    RefillTokens   int           `envconfig:"REFILL_TOKENS" default:"1"`
    RefillInterval time.Duration `envconfig:"REFILL_INTERVAL" default:"3s"`
    TTL            time.Duration `envconfig:"TTL" default:"10m"`
    KeyStrategy    string        `envconfig:"KEY_STRATEGY" default:"ip_profile_route"`
    Prefix         string        `envconfig:"PREFIX" default:"rl"`
    Debug          bool          `envconfig:"DEBUG" default:"false"`
}

// LoadRateLimitConfig reads the RATE_LIMIT_* variables and clamps them to
// values the token bucket script can work with.
func LoadRateLimitConfig() (RateLimitConfig, error) {
    var def RateLimitConfig
    if err := envconfig.Process("rate_limit", &def); err != nil {
        return RateLimitConfig{}, fmt.Errorf("config: %w", err)
    }
    return def.normalize(), nil
}

func (def RateLimitConfig) normalize() RateLimitConfig {
    if def.Capacity < 1 { def.Capacity = 1 }
    if def.RefillTokens < 1 { def.RefillTokens = 1 }
    if def.RefillInterval <= 0 { def.RefillInterval = time.Second }
    minTTL := 5 * def.RefillInterval
    if def.TTL < minTTL { def.TTL = minTTL }
    return def
}
