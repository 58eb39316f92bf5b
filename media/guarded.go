package media

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Guarded throttles calls to another Store and stops calling it for a while
// once it keeps failing.
type Guarded struct {
	next    Store
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

func NewGuarded(next Store, rps float64, log *zap.Logger) *Guarded {
	if rps <= 0 {
		rps = 10
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "media-host",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		// Bad input from a client says nothing about the host's health.
		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Guarded{
		next:    next,
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (g *Guarded) Upload(ctx context.Context, src Source, target Target) (*Result, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.next.Upload(ctx, src, target)
	})
	if err != nil {
		return nil, translateBreakerErr(err)
	}
	return out.(*Result), nil
}

func (g *Guarded) Delete(ctx context.Context, mediaURL, folder string) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := g.breaker.Execute(func() (interface{}, error) {
		return nil, g.next.Delete(ctx, mediaURL, folder)
	})
	return translateBreakerErr(err)
}

func translateBreakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrUnavailable
	}
	return err
}

// IsClientError reports whether err was caused by the uploaded content
// rather than the host.
func IsClientError(err error) bool {
	return isClientError(err)
}

func isClientError(err error) bool {
	return errors.Is(err, ErrUnsupportedType) ||
		errors.Is(err, ErrTooLarge) ||
		errors.Is(err, ErrUnsupportedSource) ||
		errors.Is(err, ErrEmptySource)
}
