package events

import (
	"context"

	"github.com/frontdesk/service-reservation/internal/application"
	"github.com/frontdesk/service-reservation/internal/domain/room"
	"github.com/frontdesk/service-reservation/internal/metrics"
	"github.com/frontdesk/service-reservation/internal/pkg/apperror"
	"github.com/frontdesk/service-reservation/internal/pkg/kafka"
	"github.com/frontdesk/service-reservation/internal/proto/events"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RoomStatusSetter is the maintenance action the consumer drives.
type RoomStatusSetter interface {
	SetRoomStatus(ctx context.Context, id uuid.UUID, status, cause string) (*application.RoomDTO, error)
}

// HousekeepingConsumer listens to housekeeping events and updates room status
// through the guarded maintenance action.
type HousekeepingConsumer struct {
	consumer *kafka.Consumer
	rooms    RoomStatusSetter
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewHousekeepingConsumer creates a new HousekeepingConsumer.
func NewHousekeepingConsumer(
	brokers []string,
	groupID string,
	rooms RoomStatusSetter,
	m *metrics.Metrics,
	logger *zap.Logger,
) *HousekeepingConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicHousekeepingEvents, logger)
	return &HousekeepingConsumer{
		consumer: consumer,
		rooms:    rooms,
		metrics:  m,
		logger:   logger,
	}
}

// Start begins consuming housekeeping events. This blocks until the context is cancelled.
func (c *HousekeepingConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *HousekeepingConsumer) Close() error {
	return c.consumer.Close()
}

var housekeepingTargets = map[string]room.Status{
	events.RoomCleaned:             room.StatusAvailable,
	events.RoomMaintenanceRequired: room.StatusMaintenance,
}

func (c *HousekeepingConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from housekeeping topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	target, ok := housekeepingTargets[cloudEvent.Type]
	if !ok {
		c.logger.Debug("ignoring unhandled housekeeping event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
	return c.applyRoomStatus(ctx, cloudEvent, target)
}

func (c *HousekeepingConsumer) applyRoomStatus(ctx context.Context, cloudEvent kafka.CloudEvent, target room.Status) error {
	var evt events.HousekeepingEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse HousekeepingEvent data",
			zap.String("type", cloudEvent.Type),
			zap.Error(err),
		)
		c.metrics.HousekeepingEvent(cloudEvent.Type, metrics.ResultRejected)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing housekeeping event",
		zap.String("type", cloudEvent.Type),
		zap.String("room_id", evt.RoomID.String()),
	)

	_, err := c.rooms.SetRoomStatus(ctx, evt.RoomID, string(target), cloudEvent.Type)
	if err != nil {
		if apperror.IsRetryable(err) || apperror.KindOf(err) == apperror.KindInternal {
			c.metrics.HousekeepingEvent(cloudEvent.Type, metrics.ResultError)
			return err
		}
		// Refusals are final: the room is held by a guest or does not exist.
		c.logger.Warn("housekeeping event refused",
			zap.String("type", cloudEvent.Type),
			zap.String("room_id", evt.RoomID.String()),
			zap.String("kind", string(apperror.KindOf(err))),
			zap.Error(err),
		)
		c.metrics.HousekeepingEvent(cloudEvent.Type, metrics.ResultRejected)
		return nil
	}

	c.metrics.HousekeepingEvent(cloudEvent.Type, metrics.ResultApplied)
	return nil
}
