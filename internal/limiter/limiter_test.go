package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/freelance-gateway/internal/config"
)

func newTestLimiter(t *testing.T, maxRequests int, window time.Duration) (*FixedWindow, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := config.RateLimitConfig{
		Enabled:     true,
		MaxRequests: maxRequests,
		Window:      window,
		Prefix:      "ratelimit",
	}
	l := NewFixedWindow(rdb, cfg, zap.NewNop())
	// Pin the clock to a window boundary so the test window never rolls
	// over mid-test.
	base := time.Unix(1_760_000_040, 0)
	l.now = func() time.Time { return base }
	return l, mr
}

func TestAdmitWithinQuota(t *testing.T) {
	l, _ := newTestLimiter(t, 5, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d := l.Admit(ctx, "user:u1")
		require.True(t, d.Allowed, "request %d should be admitted", i+1)
		assert.Equal(t, 5-(i+1), d.Remaining)
	}

	d := l.Admit(ctx, "user:u1")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, d.RetryAfter, time.Minute)
}

func TestKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	require.True(t, l.Admit(ctx, "user:u1").Allowed)
	assert.False(t, l.Admit(ctx, "user:u1").Allowed)

	// A different client still has its full quota.
	assert.True(t, l.Admit(ctx, "ip:10.0.0.9").Allowed)
}

func TestNewWindowResetsCounter(t *testing.T) {
	l, _ := newTestLimiter(t, 2, time.Minute)
	ctx := context.Background()

	require.True(t, l.Admit(ctx, "user:u1").Allowed)
	require.True(t, l.Admit(ctx, "user:u1").Allowed)
	require.False(t, l.Admit(ctx, "user:u1").Allowed)

	// Jump past the window boundary; the key carries the window index so
	// the new window starts from zero.
	next := l.now().Add(time.Minute)
	l.now = func() time.Time { return next }
	d := l.Admit(ctx, "user:u1")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
}

func TestFailOpenWhenStoreDown(t *testing.T) {
	l, mr := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	require.True(t, l.Admit(ctx, "user:u1").Allowed)
	mr.Close()

	// Counter store unreachable: the limiter must admit, not reject.
	d := l.Admit(ctx, "user:u1")
	assert.True(t, d.Allowed)
}

func TestNilClientAdmitsEverything(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, MaxRequests: 1, Window: time.Minute, Prefix: "ratelimit"}
	l := NewFixedWindow(nil, cfg, zap.NewNop())

	for i := 0; i < 10; i++ {
		assert.True(t, l.Admit(context.Background(), "user:u1").Allowed)
	}
}
