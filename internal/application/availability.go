package application

import (
	"context"
	"time"

	"github.com/frontdesk/service-reservation/internal/domain/reservation"
	"github.com/frontdesk/service-reservation/internal/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AvailabilityChecker answers whether a room is free for a stay. The answer
// is advisory; CreateBooking repeats the check under the room lock.
type AvailabilityChecker struct {
	store   reservation.Store
	metrics *metrics.Metrics
}

// NewAvailabilityChecker creates a new AvailabilityChecker.
func NewAvailabilityChecker(store reservation.Store, m *metrics.Metrics) *AvailabilityChecker {
	return &AvailabilityChecker{store: store, metrics: m}
}

// IsRoomAvailable reports whether no pending, confirmed or checked-in
// reservation of the room overlaps [checkIn, checkOut).
func (a *AvailabilityChecker) IsRoomAvailable(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time) (bool, error) {
	defer a.metrics.ObserveSince("availability", time.Now())

	ctx, span := tracer.Start(ctx, "availability.check",
		trace.WithAttributes(
			attribute.String("room.id", roomID.String()),
			attribute.String("stay.check_in", checkIn.Format(reservation.DateLayout)),
			attribute.String("stay.check_out", checkOut.Format(reservation.DateLayout)),
		),
	)
	defer span.End()

	stay, err := reservation.NewStay(checkIn, checkOut)
	if err != nil {
		return false, err
	}
	if _, err := a.store.FindRoom(ctx, roomID); err != nil {
		return false, err
	}

	conflict, err := a.store.HasOverlap(ctx, roomID, stay)
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	span.SetAttributes(attribute.Bool("room.available", !conflict))
	return !conflict, nil
}

// CheckAvailability parses wire dates and answers IsRoomAvailable.
func (a *AvailabilityChecker) CheckAvailability(ctx context.Context, roomID uuid.UUID, checkIn, checkOut string) (*AvailabilityDTO, error) {
	stay, err := reservation.ParseStay(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	available, err := a.IsRoomAvailable(ctx, roomID, stay.CheckIn(), stay.CheckOut())
	if err != nil {
		return nil, err
	}
	return &AvailabilityDTO{
		RoomID:    roomID,
		CheckIn:   stay.CheckIn().Format(reservation.DateLayout),
		CheckOut:  stay.CheckOut().Format(reservation.DateLayout),
		Available: available,
	}, nil
}
