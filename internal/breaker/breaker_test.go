package breaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(threshold int, recovery time.Duration) (*Breaker, *time.Time) {
	b := New("test-service", threshold, recovery)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	for i := 0; i < 2; i++ {
		require.NoError(t, b.Allow())
		b.ReportFailure()
	}
	assert.Equal(t, Closed, b.State())
	assert.Equal(t, 2, b.Failures())

	require.NoError(t, b.Allow())
	b.ReportFailure()
	assert.Equal(t, Open, b.State())

	// Open circuit rejects without touching the dependency.
	assert.ErrorIs(t, b.Allow(), ErrOpen)
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	b.ReportFailure()
	b.ReportFailure()
	b.ReportSuccess()
	assert.Equal(t, 0, b.Failures())

	// The streak restarts from zero, so two more failures do not open it.
	b.ReportFailure()
	b.ReportFailure()
	assert.Equal(t, Closed, b.State())
}

func TestBreakerRecoveryTrial(t *testing.T) {
	b, now := newTestBreaker(1, time.Minute)

	require.NoError(t, b.Allow())
	b.ReportFailure()
	assert.Equal(t, Open, b.State())
	assert.ErrorIs(t, b.Allow(), ErrOpen)

	// After the recovery timeout the next Allow becomes the trial call.
	*now = now.Add(time.Minute)
	require.NoError(t, b.Allow())
	assert.Equal(t, HalfOpen, b.State())

	// With the trial in flight, concurrent callers are still rejected.
	assert.ErrorIs(t, b.Allow(), ErrOpen)

	b.ReportSuccess()
	assert.Equal(t, Closed, b.State())
	assert.Equal(t, 0, b.Failures())
	require.NoError(t, b.Allow())
}

func TestBreakerFailedTrialReopens(t *testing.T) {
	b, now := newTestBreaker(1, time.Minute)

	require.NoError(t, b.Allow())
	b.ReportFailure()
	*now = now.Add(time.Minute)
	require.NoError(t, b.Allow())
	assert.Equal(t, HalfOpen, b.State())

	// A failed trial reopens the circuit and restarts the recovery clock.
	b.ReportFailure()
	assert.Equal(t, Open, b.State())
	assert.ErrorIs(t, b.Allow(), ErrOpen)

	// 30 seconds in: still open because openedAt was refreshed on the
	// failed trial, not left at the original trip time.
	*now = now.Add(30 * time.Second)
	assert.ErrorIs(t, b.Allow(), ErrOpen)

	*now = now.Add(30 * time.Second)
	require.NoError(t, b.Allow())
	assert.Equal(t, HalfOpen, b.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "half_open", HalfOpen.String())
}
