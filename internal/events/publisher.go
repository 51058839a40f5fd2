package events

import (
	"context"

	"github.com/frontdesk/service-reservation/internal/pkg/kafka"
)

// KafkaPublisher implements application.EventPublisher on a Kafka producer.
type KafkaPublisher struct {
	producer *kafka.Producer
	source   string
}

// NewKafkaPublisher creates a new KafkaPublisher stamping events with source.
func NewKafkaPublisher(producer *kafka.Producer, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

// Publish wraps data in a CloudEvent and writes it to topic keyed by key.
func (p *KafkaPublisher) Publish(ctx context.Context, topic, eventType, key string, data interface{}) error {
	ce, err := kafka.NewCloudEvent(p.source, eventType, data)
	if err != nil {
		return err
	}
	return p.producer.PublishEventWithKey(ctx, topic, key, ce)
}
