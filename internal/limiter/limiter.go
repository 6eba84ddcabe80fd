// Package limiter bounds request volume per client with a fixed-window
// counter in Redis. The counter store is shared, so every gateway replica
// counts against the same per-client quota.
package limiter

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/freelance-gateway/internal/config"
)

// incrScript atomically bumps the window counter and arms its expiry on the
// first increment. Running it server-side closes the race where two
// concurrent requests both read a stale count and over-admit.
var incrScript = redis.NewScript(`
    local count = redis.call('INCR', KEYS[1])
    if count == 1 then
        redis.call('EXPIRE', KEYS[1], ARGV[1])
    end
    return count
`)

// Decision is the outcome of one admission check. Remaining and RetryAfter
// feed the X-RateLimit-* and Retry-After response headers.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// FixedWindow admits at most MaxRequests per Window per client key. The key
// is scoped to a window index (floor(now/window)), so a new window starts
// with a fresh counter regardless of the previous window's count.
type FixedWindow struct {
	rdb *redis.Client
	cfg config.RateLimitConfig
	log *zap.Logger
	now func() time.Time
}

func NewFixedWindow(rdb *redis.Client, cfg config.RateLimitConfig, log *zap.Logger) *FixedWindow {
	return &FixedWindow{
		rdb: rdb,
		cfg: cfg,
		log: log.With(zap.String("component", "rate_limiter")),
		now: time.Now,
	}
}

// Admit checks and consumes one request for clientKey. Store-level failures
// fail open: an unreachable counter backend must not turn into a full outage
// of the gateway. Every fail-open admission is logged.
func (l *FixedWindow) Admit(ctx context.Context, clientKey string) Decision {
	if l.rdb == nil {
		return Decision{Allowed: true, Remaining: l.cfg.MaxRequests}
	}

	now := l.now()
	windowSecs := int64(l.cfg.Window / time.Second)
	windowIdx := now.Unix() / windowSecs
	key := l.cfg.Prefix + ":" + clientKey + ":" + strconv.FormatInt(windowIdx, 10)

	count, err := incrScript.Run(ctx, l.rdb, []string{key}, windowSecs).Int64()
	if err != nil {
		l.log.Warn("counter store failed, admitting request",
			zap.String("client_key", clientKey), zap.Error(err))
		return Decision{Allowed: true, Remaining: l.cfg.MaxRequests}
	}

	remaining := int64(l.cfg.MaxRequests) - count
	if remaining < 0 {
		remaining = 0
	}
	if count > int64(l.cfg.MaxRequests) {
		windowEnd := time.Unix((windowIdx+1)*windowSecs, 0)
		return Decision{Remaining: int(remaining), RetryAfter: windowEnd.Sub(now)}
	}
	return Decision{Allowed: true, Remaining: int(remaining)}
}

// MaxRequests exposes the configured quota for response headers.
func (l *FixedWindow) MaxRequests() int { return l.cfg.MaxRequests }
