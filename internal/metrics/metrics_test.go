package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func find(snap []CallMetric, service, method, outcome string) (CallMetric, bool) {
	for _, m := range snap {
		if m.Service == service && m.Method == method && m.Outcome == outcome {
			return m, true
		}
	}
	return CallMetric{}, false
}

func TestObserveCallAggregates(t *testing.T) {
	r := NewRegistry()
	r.ObserveCall("user-service", "GetProfile", OutcomeSuccess, 10*time.Millisecond)
	r.ObserveCall("user-service", "GetProfile", OutcomeSuccess, 30*time.Millisecond)
	r.ObserveCall("user-service", "GetProfile", OutcomeError, 5*time.Millisecond)

	snap := r.Snapshot()
	require.Len(t, snap, 2)

	ok, found := find(snap, "user-service", "GetProfile", OutcomeSuccess)
	require.True(t, found)
	assert.Equal(t, int64(2), ok.Count)
	assert.InDelta(t, 20.0, ok.AvgMillis, 0.01)
	assert.InDelta(t, 30.0, ok.MaxMillis, 0.01)

	bad, found := find(snap, "user-service", "GetProfile", OutcomeError)
	require.True(t, found)
	assert.Equal(t, int64(1), bad.Count)
}

func TestEmptySnapshot(t *testing.T) {
	assert.Empty(t, NewRegistry().Snapshot())
}

func TestConcurrentObserve(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.ObserveCall("task-service", "ListTasks", OutcomeSuccess, time.Millisecond)
			}
		}()
	}
	wg.Wait()

	m, found := find(r.Snapshot(), "task-service", "ListTasks", OutcomeSuccess)
	require.True(t, found)
	assert.Equal(t, int64(800), m.Count)
}
