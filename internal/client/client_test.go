package client

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/freelance-gateway/internal/breaker"
	"github.com/iliyamo/freelance-gateway/internal/metrics"
)

// stubTransport answers each call with the next queued response.
type stubTransport struct {
	calls atomic.Int64
	err   error
	delay time.Duration
	fill  func(resp any)
}

func (s *stubTransport) Call(ctx context.Context, method string, req, resp any) error {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.err != nil {
		return s.err
	}
	if s.fill != nil {
		s.fill(resp)
	}
	return nil
}

func newTestClient(t *testing.T, st *stubTransport, threshold int) (*ServiceClient, *breaker.Breaker, *metrics.Registry) {
	t.Helper()
	b := breaker.New("backend", threshold, time.Minute)
	reg := metrics.NewRegistry()
	sc := NewServiceClient("backend", st, b, reg, time.Second, "Ping", zap.NewNop())
	return sc, b, reg
}

func TestCallSuccess(t *testing.T) {
	st := &stubTransport{fill: func(resp any) {
		if m, ok := resp.(*map[string]any); ok {
			*m = map[string]any{"ok": true}
		}
	}}
	sc, b, reg := newTestClient(t, st, 3)

	var resp map[string]any
	require.NoError(t, sc.Call(context.Background(), "GetThing", struct{}{}, &resp))
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, breaker.Closed, b.State())

	snap := reg.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, metrics.OutcomeSuccess, snap[0].Outcome)
	assert.Equal(t, int64(1), snap[0].Count)
}

func TestCallFailureOpensBreaker(t *testing.T) {
	st := &stubTransport{err: errors.New("connection refused")}
	sc, b, _ := newTestClient(t, st, 2)

	for i := 0; i < 2; i++ {
		err := sc.Call(context.Background(), "GetThing", struct{}{}, nil)
		var unavailable *UnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, "backend", unavailable.Service)
	}
	assert.Equal(t, breaker.Open, b.State())

	// The open breaker rejects without invoking the transport.
	before := st.calls.Load()
	err := sc.Call(context.Background(), "GetThing", struct{}{}, nil)
	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.ErrorIs(t, unavailable.Cause, breaker.ErrOpen)
	assert.Equal(t, before, st.calls.Load())
}

func TestNotFoundIsHealthy(t *testing.T) {
	st := &stubTransport{err: ErrNotFound}
	sc, b, _ := newTestClient(t, st, 1)

	err := sc.Call(context.Background(), "GetThing", struct{}{}, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	// Not-found must never trip the breaker, even at threshold 1.
	assert.Equal(t, breaker.Closed, b.State())
	assert.Equal(t, 0, b.Failures())
}

func TestAbandonedCallStillReportsOutcome(t *testing.T) {
	st := &stubTransport{err: errors.New("slow failure"), delay: 50 * time.Millisecond}
	sc, b, _ := newTestClient(t, st, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sc.Call(ctx, "GetThing", struct{}{}, nil)
	assert.ErrorIs(t, err, context.Canceled)

	// The transport keeps running on its own deadline; its failure must
	// reach the breaker even though the caller already gave up.
	assert.Eventually(t, func() bool {
		return b.State() == breaker.Open
	}, time.Second, 5*time.Millisecond)
}

func TestHealthCheck(t *testing.T) {
	ok := &stubTransport{}
	sc, _, _ := newTestClient(t, ok, 3)
	assert.True(t, sc.HealthCheck(context.Background()))

	empty := &stubTransport{err: ErrNotFound}
	sc, _, _ = newTestClient(t, empty, 3)
	// A not-found probe answer still means the backend is reachable.
	assert.True(t, sc.HealthCheck(context.Background()))

	down := &stubTransport{err: errors.New("connection refused")}
	sc, _, _ = newTestClient(t, down, 3)
	assert.False(t, sc.HealthCheck(context.Background()))
}
