package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"reeldiary-server/internal/metrics"
	"reeldiary-server/pkg/tmdb"
)

// BreakerSettings tunes the circuit breaker placed in front of the catalog API.
type BreakerSettings struct {
	Name           string
	MinRequests    uint32
	FailureRatio   float64
	Interval       time.Duration
	OpenTimeout    time.Duration
	HalfOpenProbes uint32
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:           "tmdb-api",
		MinRequests:    10,
		FailureRatio:   0.6,
		Interval:       time.Minute,
		OpenTimeout:    30 * time.Second,
		HalfOpenProbes: 3,
	}
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newBreaker(s BreakerSettings, logger zerolog.Logger) *gobreaker.CircuitBreaker[any] {
	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.HalfOpenProbes,
		Interval:    s.Interval,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= s.FailureRatio {
				logger.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", ratio*100).Msg("opening catalog circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		IsSuccessful: countsAsSuccess,
	})
}

// countsAsSuccess reports whether err leaves the breaker's failure count alone.
// Absent records, client-side 4xx answers and caller cancellation say nothing about upstream health.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, tmdb.ErrNotFound) || errors.Is(err, tmdb.ErrMalformed) || errors.Is(err, context.Canceled) {
		return true
	}
	var se *tmdb.StatusError
	if errors.As(err, &se) {
		return !se.Temporary()
	}
	return false
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// as type-asserts a breaker result back to the concrete type the wrapped call returned.
func as[T any](result any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}
