package services

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "reactgram/internal/services"

// Metrics holds the counters the mutators and the fan-out report to.
type Metrics struct {
	FanOutUpdated   metric.Int64Counter
	FanOutFailed    metric.Int64Counter
	LikeConflicts   metric.Int64Counter
	CommentsCreated metric.Int64Counter
}

// NewMetrics creates the instruments on meter, or on the global meter provider when
// meter is nil. Without an installed SDK the global provider is a no-op.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}

	var errs []error
	counter := func(name, description, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
		if err != nil {
			errs = append(errs, fmt.Errorf("counter %s: %w", name, err))
			return noop.Int64Counter{}
		}
		return c
	}

	m := &Metrics{
		FanOutUpdated: counter("reactgram.fanout.posts.updated",
			"Posts whose author fields were rewritten by a profile fan-out", "{post}"),
		FanOutFailed: counter("reactgram.fanout.posts.failed",
			"Posts a profile fan-out failed to rewrite", "{post}"),
		LikeConflicts: counter("reactgram.likes.conflicts",
			"Like or unlike calls rejected because the membership record disagreed", "{call}"),
		CommentsCreated: counter("reactgram.comments.created",
			"Comments accepted", "{comment}"),
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("create metrics: %w", errors.Join(errs...))
	}
	return m, nil
}

// noopMetrics is used by services constructed without metrics.
func noopMetrics() *Metrics {
	return &Metrics{
		FanOutUpdated:   noop.Int64Counter{},
		FanOutFailed:    noop.Int64Counter{},
		LikeConflicts:   noop.Int64Counter{},
		CommentsCreated: noop.Int64Counter{},
	}
}
