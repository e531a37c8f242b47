package textgen

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"crmmvp/internal/logging"
)

type breakerGenerator struct {
	next Generator
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker stops calling next after trips consecutive failures and probes
// it again once timeout has passed. An empty prompt never counts as a failure.
func WithBreaker(next Generator, name string, timeout time.Duration, trips uint32) Generator {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "textgen-" + name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= trips
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrEmptyPrompt)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("[textgen][breaker] '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
	return &breakerGenerator{next: next, cb: cb}
}

func (b *breakerGenerator) Generate(ctx context.Context, prompt string) (*Result, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Generate(ctx, prompt)
	})
	if err != nil {
		return nil, err
	}
	return out.(*Result), nil
}
