package notify

import (
	"context"

	"github.com/kbukum/scribe/logger"
)

// Publisher sends a JSON value to a topic. *kafka.Producer satisfies it.
type Publisher interface {
	SendJSON(ctx context.Context, topic, key string, value interface{}) error
}

// KafkaSink mirrors progress events to a Kafka topic keyed by task id.
type KafkaSink struct {
	pub   Publisher
	topic string
	log   *logger.Logger
}

// NewKafkaSink creates a KafkaSink. An empty topic uses the publisher's default.
func NewKafkaSink(pub Publisher, topic string, log *logger.Logger) *KafkaSink {
	return &KafkaSink{pub: pub, topic: topic, log: log.WithComponent("notify.kafka")}
}

// Notify publishes ev. Failures are logged and dropped.
func (k *KafkaSink) Notify(ctx context.Context, ev Event) {
	if err := k.pub.SendJSON(ctx, k.topic, ev.TaskID, ev); err != nil {
		k.log.WithContext(ctx).Warn("event publish failed", logger.Fields(
			logger.FieldJobID, ev.TaskID,
			logger.FieldEvent, ev.Event,
			logger.FieldError, err.Error(),
		))
	}
}
