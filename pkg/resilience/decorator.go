package resilience

import (
	"context"
	"errors"
)

// ErrCircuitOpen is returned by Decorator.Call when the breaker for the
// target service is currently skipping calls.
var ErrCircuitOpen = errors.New("resilience: circuit open for service")

// Decorator composes Breaker.ShouldSkip, Retrier.Do, and
// Breaker.Record{Success,Failure} around an outbound call. The
// collectors, the fact-checker and the entity enricher go through one
// of these; the extractor and the dedup arbiter call their
// capabilities directly.
type Decorator struct {
	retrier *Retrier
	breaker *Breaker
}

// NewDecorator returns a Decorator wrapping retrier and breaker.
func NewDecorator(retrier *Retrier, breaker *Breaker) *Decorator {
	return &Decorator{retrier: retrier, breaker: breaker}
}

// Call runs fn against service, short-circuiting with ErrCircuitOpen if
// the breaker is currently tripped, retrying per policy otherwise, and
// recording the outcome against the breaker.
func (d *Decorator) Call(ctx context.Context, service string, fn func(ctx context.Context) error) error {
	if d.breaker.ShouldSkip(service) {
		return ErrCircuitOpen
	}

	err := d.retrier.Do(ctx, fn)
	if err == nil {
		d.breaker.RecordSuccess(service)
		return nil
	}
	d.breaker.RecordFailure(service)
	return err
}
