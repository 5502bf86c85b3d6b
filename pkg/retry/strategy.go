package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/code-payments/code-vault/pkg/retry/backoff"
)

// Strategy decides whether another attempt is made after a failed one.
// attempts counts the attempts made so far, starting at 1. Strategies may
// block, which is how delays between attempts are introduced.
type Strategy func(attempts uint, err error) bool

// Limit allows at most maxAttempts attempts in total
func Limit(maxAttempts uint) Strategy {
	return func(attempts uint, _ error) bool {
		return attempts < maxAttempts
	}
}

// NonRetriableErrors stops retrying when the error matches any of errs
func NonRetriableErrors(errs ...error) Strategy {
	return func(_ uint, err error) bool {
		for _, target := range errs {
			if errors.Is(err, target) {
				return false
			}
		}
		return true
	}
}

// UntilDone stops retrying once ctx is done
func UntilDone(ctx context.Context) Strategy {
	return func(uint, error) bool {
		return ctx.Err() == nil
	}
}

// Backoff sleeps for the delay given by strategy, bounded by maxBackoff, and
// always allows another attempt.
func Backoff(strategy backoff.Strategy, maxBackoff time.Duration) Strategy {
	return func(attempts uint, _ error) bool {
		sleeperImpl.Sleep(boundedDelay(strategy, attempts, maxBackoff))
		return true
	}
}

// BackoffWithJitter behaves like Backoff, then scales the bounded delay by a
// random factor in [1-jitter, 1+jitter].
func BackoffWithJitter(strategy backoff.Strategy, maxBackoff time.Duration, jitter float64) Strategy {
	return func(attempts uint, _ error) bool {
		delay := boundedDelay(strategy, attempts, maxBackoff)
		factor := 1 + jitter*(2*rand.Float64()-1)
		sleeperImpl.Sleep(time.Duration(float64(delay) * factor))
		return true
	}
}

func boundedDelay(strategy backoff.Strategy, attempts uint, maxBackoff time.Duration) time.Duration {
	delay := strategy(attempts)
	if delay > maxBackoff {
		return maxBackoff
	}
	return delay
}

type sleeper interface {
	Sleep(time.Duration)
}

type timeSleeper struct{}

func (timeSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// Swapped out in tests
var sleeperImpl sleeper = timeSleeper{}
