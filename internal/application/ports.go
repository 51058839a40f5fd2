package application

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/frontdesk/service-reservation/internal/application")

// EventPublisher delivers integration events after a commit. Implementations
// must be safe for concurrent use.
type EventPublisher interface {
	Publish(ctx context.Context, topic, eventType, key string, data interface{}) error
}

// RoomCache holds serialized room listings. It is never a source of truth:
// misses fall through to the store and every committed room change calls
// Invalidate, which advances the generation. Readers key entries by the
// generation they observed before reading the store, so a listing read
// before an invalidation can never be served after it.
type RoomCache interface {
	// Generation reports the current generation; ok is false when the cache
	// cannot be used.
	Generation(ctx context.Context) (gen int64, ok bool)
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Invalidate(ctx context.Context)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, string, string, interface{}) error { return nil }

type nopCache struct{}

func (nopCache) Generation(context.Context) (int64, bool)   { return 0, false }
func (nopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (nopCache) Set(context.Context, string, []byte)        {}
func (nopCache) Invalidate(context.Context)                 {}

// publishEvent logs delivery failures; a committed operation never fails
// because of them.
func publishEvent(ctx context.Context, publisher EventPublisher, logger *zap.Logger, topic, eventType, key string, data interface{}) {
	if err := publisher.Publish(ctx, topic, eventType, key, data); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
