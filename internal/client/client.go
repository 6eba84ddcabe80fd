// Package client wraps the gateway's outbound dependencies. Every call runs
// through one shared path: breaker gate, transport invocation with a bounded
// timeout, breaker report and a metrics observation. Route handlers only see
// the typed per-service clients.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/freelance-gateway/internal/breaker"
	"github.com/iliyamo/freelance-gateway/internal/metrics"
)

// ErrNotFound is the application-level "reachable but empty" result. It is
// distinct from transport failures on purpose: a dependency answering
// not-found is healthy, and the breaker must not count it as a failure.
var ErrNotFound = errors.New("not found")

// UnavailableError reports a dependency that could not serve a call, either
// because the breaker rejected it without attempting (Cause is
// breaker.ErrOpen) or because the attempted call failed or timed out.
type UnavailableError struct {
	Service string
	Cause   error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("service %s unavailable: %v", e.Service, e.Cause)
}

func (e *UnavailableError) Unwrap() error { return e.Cause }

// Transport performs one named call against a backend. Implementations
// marshal req, send it, and unmarshal the reply into resp.
type Transport interface {
	Call(ctx context.Context, method string, req, resp any) error
}

// ServiceClient is the shared breaker/metrics wrapper around one dependency.
type ServiceClient struct {
	name      string
	transport Transport
	breaker   *breaker.Breaker
	metrics   *metrics.Registry
	timeout   time.Duration
	probe     string // method used by HealthCheck
	log       *zap.Logger
}

func NewServiceClient(name string, t Transport, b *breaker.Breaker, m *metrics.Registry, timeout time.Duration, probe string, log *zap.Logger) *ServiceClient {
	return &ServiceClient{
		name:      name,
		transport: t,
		breaker:   b,
		metrics:   m,
		timeout:   timeout,
		probe:     probe,
		log:       log.With(zap.String("service", name)),
	}
}

// Call runs one outbound call. The breaker decides whether the call may
// proceed; rejected calls fail fast without touching the transport. The
// transport runs detached from the caller's cancellation: if the requester
// gives up, the call is abandoned from their point of view but its outcome,
// when it arrives, still updates the breaker and metrics.
func (c *ServiceClient) Call(ctx context.Context, method string, req, resp any) error {
	if err := c.breaker.Allow(); err != nil {
		c.metrics.ObserveCall(c.name, method, "rejected", 0)
		return &UnavailableError{Service: c.name, Cause: err}
	}

	start := time.Now()
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	done := make(chan error, 1)
	go func() {
		defer cancel()
		err := c.transport.Call(callCtx, method, req, resp)
		elapsed := time.Since(start)
		switch {
		case err == nil:
			c.breaker.ReportSuccess()
			c.metrics.ObserveCall(c.name, method, metrics.OutcomeSuccess, elapsed)
		case errors.Is(err, ErrNotFound):
			// Reachable but empty: healthy from the breaker's point of view.
			c.breaker.ReportSuccess()
			c.metrics.ObserveCall(c.name, method, "not_found", elapsed)
		default:
			c.breaker.ReportFailure()
			c.metrics.ObserveCall(c.name, method, metrics.OutcomeError, elapsed)
			c.log.Error("service call failed",
				zap.String("method", method),
				zap.Duration("elapsed", elapsed),
				zap.Error(err))
		}
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return &UnavailableError{Service: c.name, Cause: err}
	case <-ctx.Done():
		// Abandoned; the goroutine above still reports the outcome.
		return ctx.Err()
	}
}

// HealthCheck performs the lightweight probe call. A not-found answer from
// the probe still means the dependency is reachable and therefore healthy.
func (c *ServiceClient) HealthCheck(ctx context.Context) bool {
	var resp map[string]any
	err := c.Call(ctx, c.probe, struct{}{}, &resp)
	if err == nil || errors.Is(err, ErrNotFound) {
		return true
	}
	c.log.Warn("health check failed", zap.Error(err))
	return false
}

// Name returns the dependency name.
func (c *ServiceClient) Name() string { return c.name }

// BreakerState exposes the breaker position for the health endpoint.
func (c *ServiceClient) BreakerState() breaker.State { return c.breaker.State() }
