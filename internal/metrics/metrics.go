// Package metrics keeps in-process counters for outbound service calls.
// Every call through a service client records a count and a latency
// observation tagged by dependency, method and outcome. The registry is
// lock-light: the map is guarded for entry creation only, the hot path is
// atomic adds.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

type entry struct {
	count    atomic.Int64
	durSumNs atomic.Int64
	durMaxNs atomic.Int64
}

func (e *entry) observe(d time.Duration) {
	e.count.Add(1)
	ns := d.Nanoseconds()
	e.durSumNs.Add(ns)
	for {
		cur := e.durMaxNs.Load()
		if ns <= cur || e.durMaxNs.CompareAndSwap(cur, ns) {
			return
		}
	}
}

type key struct {
	service string
	method  string
	outcome string
}

// Registry aggregates call observations for the /metrics snapshot.
type Registry struct {
	mu      sync.RWMutex
	entries map[key]*entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[key]*entry)}
}

// ObserveCall records one outbound call.
func (r *Registry) ObserveCall(service, method, outcome string, d time.Duration) {
	k := key{service: service, method: method, outcome: outcome}
	r.mu.RLock()
	e, ok := r.entries[k]
	r.mu.RUnlock()
	if !ok {
		r.mu.Lock()
		if e, ok = r.entries[k]; !ok {
			e = &entry{}
			r.entries[k] = e
		}
		r.mu.Unlock()
	}
	e.observe(d)
}

// CallMetric is one row of the snapshot.
type CallMetric struct {
	Service   string  `json:"service"`
	Method    string  `json:"method"`
	Outcome   string  `json:"outcome"`
	Count     int64   `json:"count"`
	AvgMillis float64 `json:"avg_ms"`
	MaxMillis float64 `json:"max_ms"`
}

// Snapshot returns the current aggregates. Values are read without stopping
// writers, so a snapshot taken mid-burst may be slightly torn between count
// and sum; that is acceptable for an operational readout.
func (r *Registry) Snapshot() []CallMetric {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CallMetric, 0, len(r.entries))
	for k, e := range r.entries {
		count := e.count.Load()
		m := CallMetric{
			Service:   k.service,
			Method:    k.method,
			Outcome:   k.outcome,
			Count:     count,
			MaxMillis: float64(e.durMaxNs.Load()) / 1e6,
		}
		if count > 0 {
			m.AvgMillis = float64(e.durSumNs.Load()) / float64(count) / 1e6
		}
		out = append(out, m)
	}
	return out
}
