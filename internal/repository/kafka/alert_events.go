package kafka

import (
	"context"

	"github.com/NordCoder/trenes-alerts/internal/domain/event"
)

type jsonPublisher interface {
	PublishJSON(ctx context.Context, key []byte, v any) error
}

// AlertEventsKafka publishes alert changes keyed by line id, so one line keeps its order.
type AlertEventsKafka struct {
	p jsonPublisher
}

func NewAlertEventsKafka(p jsonPublisher) *AlertEventsKafka { return &AlertEventsKafka{p: p} }

var _ event.Publisher = (*AlertEventsKafka)(nil)

func (e *AlertEventsKafka) PublishAlertChanged(ctx context.Context, ev event.AlertChanged) error {
	return e.p.PublishJSON(ctx, KeyFromInt64(ev.LineID), ev)
}
