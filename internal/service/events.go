package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/partify/internal/logging"
)

const (
	TopicProductEvents = "product_events"
	TopicOrderEvents   = "order_events"
	TopicUserEvents    = "user_events"

	publishTimeout = 5 * time.Second
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// publish sends an event and only logs failures; a missing broker never fails a request.
func publish(ctx context.Context, p EventPublisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	l := logging.FromContext(ctx)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		l.Warn("publish_event_failed", "topic", topic, "type", event["type"], "key", key, "error", err)
	}
}
