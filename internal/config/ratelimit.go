package config

import "time"

// RateLimitConfig parameterizes the Redis token bucket guarding the
// wheel draw route.  A spin is a once-a-month action, so the bucket is
// deliberately small: it absorbs double-clicks and impatient retries
// while anything faster earns a 429.  With Enabled false or no Redis
// client the middleware passes requests through untouched.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int           // bucket size; bursts beyond this are rejected
    RefillTokens   int           // tokens returned per interval
    RefillInterval time.Duration // how often tokens come back
    TTL            time.Duration // idle bucket expiry in Redis
    KeyStrategy    string        // which request parts form the bucket key
    Prefix         string        // Redis key namespace
}

// LoadRateLimitConfig reads the RATE_LIMIT_* environment variables.
// Defaults are tuned for the draw route: ten spins of burst per
// customer, one token back per second.  The route is authenticated, so
// buckets key on user+route rather than on the caller's address.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        getenv("RATE_LIMIT_ENABLED", "true") == "true",
        Capacity:       atoi(getenv("RATE_LIMIT_CAPACITY", "10")),
        RefillTokens:   atoi(getenv("RATE_LIMIT_REFILL_TOKENS", "1")),
        RefillInterval: parseDur(getenv("RATE_LIMIT_REFILL_INTERVAL", "1s")),
        TTL:            parseDur(getenv("RATE_LIMIT_TTL", "10m")),
        KeyStrategy:    getenv("RATE_LIMIT_KEY_STRATEGY", "user_route"),
        Prefix:         getenv("RATE_LIMIT_PREFIX", "rl"),
    }
    if cfg.Capacity < 1 {
        cfg.Capacity = 1
    }
    if cfg.RefillTokens < 1 {
        cfg.RefillTokens = 1
    }
    if cfg.RefillInterval <= 0 {
        cfg.RefillInterval = time.Second
    }
    // An idle bucket must outlive a few refill cycles or a half-full
    // bucket would reset to full between two slow requests.
    if min := 5 * cfg.RefillInterval; cfg.TTL < min {
        cfg.TTL = min
    }
    return cfg
}
