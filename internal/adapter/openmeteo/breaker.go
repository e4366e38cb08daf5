package openmeteo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/weathernow/internal/observability"
	"github.com/sony/gobreaker"
)

// breakerTripAfter is the number of consecutive failures that marks a
// collaborator unhealthy.
const breakerTripAfter = 5

// newBreaker tracks the health of one collaborator for logs and the
// breaker_open gauge. Requests are never refused or retried because of it.
func newBreaker(collaborator string, metrics *observability.Metrics, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        collaborator,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripAfter
		},
		// Superseded requests are cancelled on purpose and say nothing about
		// collaborator health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "collaborator", name, "from", from.String(), "to", to.String())
			open := 0.0
			if to == gobreaker.StateOpen {
				open = 1
			}
			metrics.BreakerOpen.WithLabelValues(name).Set(open)
		},
	})
}
