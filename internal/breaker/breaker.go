// Package breaker implements the per-dependency circuit breaker gating
// outbound calls. One Breaker exists per backend service, created at startup
// and shared by every request for the process lifetime.
package breaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Allow when the circuit rejects a call without
// attempting it. Callers surface it as a service-unavailable condition for
// the breaker's dependency.
var ErrOpen = errors.New("circuit open")

// State of the breaker's three-position state machine.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	}
	return "unknown"
}

// Breaker tracks consecutive failures for one dependency. All transitions
// happen under the mutex; the correctness-critical points are concurrent
// Closed->Open transitions and the single-trial rule while HalfOpen.
type Breaker struct {
	name             string
	failureThreshold int
	recoveryTimeout  time.Duration
	now              func() time.Time

	mu            sync.Mutex
	state         State
	failures      int
	openedAt      time.Time
	trialInFlight bool
}

// New builds a breaker for a named dependency. Thresholds come from
// configuration, not constants.
func New(name string, failureThreshold int, recoveryTimeout time.Duration) *Breaker {
	return &Breaker{
		name:             name,
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
		now:              time.Now,
	}
}

// Name returns the dependency this breaker guards.
func (b *Breaker) Name() string { return b.name }

// Allow decides whether a call may proceed. While Open it rejects with
// ErrOpen until the recovery timeout has elapsed, at which point the
// checking call itself becomes the HalfOpen trial. While HalfOpen only one
// trial may be in flight; concurrent callers are rejected until it resolves.
// Every admitted call must be followed by exactly one ReportSuccess or
// ReportFailure, even when the original requester has given up.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return nil
	case Open:
		if b.now().Sub(b.openedAt) >= b.recoveryTimeout {
			b.state = HalfOpen
			b.trialInFlight = true
			return nil
		}
		return ErrOpen
	case HalfOpen:
		if b.trialInFlight {
			return ErrOpen
		}
		b.trialInFlight = true
		return nil
	}
	return ErrOpen
}

// ReportSuccess records a successful call: the circuit closes and the
// failure count resets.
func (b *Breaker) ReportSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = Closed
	b.failures = 0
	b.trialInFlight = false
}

// ReportFailure records a failed call. A failed HalfOpen trial reopens the
// circuit immediately with a fresh openedAt; in Closed the failure count
// climbs toward the threshold.
func (b *Breaker) ReportFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == HalfOpen {
		b.state = Open
		b.openedAt = b.now()
		b.trialInFlight = false
		return
	}
	b.failures++
	if b.failures >= b.failureThreshold {
		b.state = Open
		b.openedAt = b.now()
	}
}

// State returns the current position of the state machine.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Failures returns the current consecutive-failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}
