// Package retry runs an operation under a named policy and reports every attempt
// to prometheus and to the span in the context.
package retry

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Backoff interface {
	Next(attempt int) time.Duration
}

// ExpoJitter doubles Base per attempt up to Max and spreads it by ±Jitter.
type ExpoJitter struct {
	Base   time.Duration
	Max    time.Duration
	Jitter float64
}

func (b ExpoJitter) Next(attempt int) time.Duration {
	d := float64(b.Base) * math.Pow(2, float64(max(attempt, 0)))
	if b.Max > 0 {
		d = math.Min(d, float64(b.Max))
	}
	if b.Jitter > 0 {
		d *= 1 + (rand.Float64()*2-1)*b.Jitter
	}
	return time.Duration(d)
}

type Policy struct {
	Name      string
	Attempts  int
	Backoff   Backoff
	Retryable func(error) bool
	OnAttempt func(attempt int, err error)
	OnExhaust func(lastErr error)
}

const (
	resultOK        = "ok"
	resultRetry     = "retry"
	resultExhausted = "exhausted"
	resultCancelled = "cancelled"
)

var (
	mAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retry_attempts_total",
		Help: "Attempts made under a retry policy, by outcome of the attempt",
	}, []string{"name", "result"})
	mDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retry_duration_seconds",
		Help:    "Time spent inside retry.Do, waits included",
		Buckets: prometheus.DefBuckets,
	}, []string{"name"})
)

func (p Policy) withDefaults() Policy {
	if p.Name == "" {
		p.Name = "default"
	}
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	if p.Retryable == nil {
		p.Retryable = func(err error) bool { return err != nil }
	}
	if p.Backoff == nil {
		p.Backoff = ExpoJitter{Base: 100 * time.Millisecond, Max: 5 * time.Second}
	}
	return p
}

// Do calls fn until it succeeds or the policy gives up. A done ctx ends the wait between attempts.
func Do(ctx context.Context, fn func() error, p Policy) error {
	p = p.withDefaults()
	defer func(start time.Time) {
		mDuration.WithLabelValues(p.Name).Observe(time.Since(start).Seconds())
	}(time.Now())

	span := trace.SpanFromContext(ctx)
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			mAttempts.WithLabelValues(p.Name, resultOK).Inc()
			return nil
		}
		if p.OnAttempt != nil {
			p.OnAttempt(attempt, err)
		}
		span.AddEvent("retry.attempt", trace.WithAttributes(
			attribute.String("retry.name", p.Name),
			attribute.Int("retry.attempt", attempt+1),
			attribute.String("retry.error", err.Error()),
		))

		if !p.Retryable(err) || attempt+1 >= p.Attempts {
			mAttempts.WithLabelValues(p.Name, resultExhausted).Inc()
			if p.OnExhaust != nil {
				p.OnExhaust(err)
			}
			return err
		}
		mAttempts.WithLabelValues(p.Name, resultRetry).Inc()

		t := time.NewTimer(p.Backoff.Next(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			mAttempts.WithLabelValues(p.Name, resultCancelled).Inc()
			return ctx.Err()
		case <-t.C:
		}
	}
}
