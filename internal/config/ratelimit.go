package config

import "time"

// RateLimitConfig controls the fixed-window request limiter. MaxRequests is
// the number of admitted requests per window per client key; Window is the
// length of one counting window.
type RateLimitConfig struct {
    Enabled     bool
    MaxRequests int
    Window      time.Duration
    Prefix      string
    Debug       bool
}

// LoadRateLimitConfig reads limiter settings from the environment with
// sensible defaults. Values that would break the algorithm (zero or negative
// window, zero quota) are clamped.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:     envBool("RATE_LIMIT_ENABLED", true),
        MaxRequests: envInt("RATE_LIMIT_MAX_REQUESTS", 1000),
        Window:      envDur("RATE_LIMIT_WINDOW", 60*time.Second),
        Prefix:      envStr("RATE_LIMIT_PREFIX", "rate_limit"),
        Debug:       envBool("RATE_LIMIT_DEBUG", false),
    }
    if cfg.MaxRequests < 1 { cfg.MaxRequests = 1 }
    if cfg.Window < time.Second { cfg.Window = time.Second }
    return cfg
}
