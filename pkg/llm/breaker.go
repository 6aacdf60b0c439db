package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerClient wraps a Client with a circuit breaker so a dead provider
// fails fast instead of burning the job timeout on every attempt. An open
// circuit surfaces as ErrUnavailable, which the planner and validator
// already treat as a transient outage.
type BreakerClient struct {
	inner Client
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerClient wraps inner. The breaker opens after five consecutive
// failures and probes again after 30 seconds.
func NewBreakerClient(inner Client, name string) *BreakerClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A cancelled job is not a provider failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("LLM circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &BreakerClient{inner: inner, cb: cb}
}

// Chat forwards through the breaker.
func (b *BreakerClient) Chat(ctx context.Context, req Request) (*Response, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.inner.Chat(ctx, req)
	})
	if err != nil {
		return nil, mapBreakerError(err)
	}
	return out.(*Response), nil
}

// Stream forwards through the breaker. Only opening the stream counts
// against the circuit; a failure mid-stream reaches the consumer as an Err
// chunk without feeding back into the breaker, since by then the provider
// has already proven reachable.
func (b *BreakerClient) Stream(ctx context.Context, req Request) (<-chan Chunk, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.inner.Stream(ctx, req)
	})
	if err != nil {
		return nil, mapBreakerError(err)
	}
	return out.(<-chan Chunk), nil
}

// State exposes the breaker state for health reporting.
func (b *BreakerClient) State() gobreaker.State {
	return b.cb.State()
}

func mapBreakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: circuit breaker open", ErrUnavailable)
	}
	return err
}
