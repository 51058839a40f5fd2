package application

import (
	"context"
	"time"

	"github.com/frontdesk/service-reservation/internal/domain/reservation"
	"github.com/frontdesk/service-reservation/internal/domain/room"
	"github.com/frontdesk/service-reservation/internal/metrics"
	"github.com/frontdesk/service-reservation/internal/pkg/apperror"
	"github.com/frontdesk/service-reservation/internal/proto/events"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// LifecycleEngine is the single writer of reservation status. Every status
// change runs together with its room side effect in one unit of work, under
// the reservation row lock followed by the room row lock.
type LifecycleEngine struct {
	store     reservation.Store
	publisher EventPublisher
	cache     RoomCache
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewLifecycleEngine creates a new LifecycleEngine. publisher and cache may be
// nil.
func NewLifecycleEngine(
	store reservation.Store,
	publisher EventPublisher,
	cache RoomCache,
	m *metrics.Metrics,
	logger *zap.Logger,
) *LifecycleEngine {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if cache == nil {
		cache = nopCache{}
	}
	return &LifecycleEngine{
		store:     store,
		publisher: publisher,
		cache:     cache,
		metrics:   m,
		logger:    logger,
	}
}

// roomChange records what a unit of work did to a room.
type roomChange struct {
	room *room.Room
	from room.Status
	to   room.Status
}

func (c roomChange) changed() bool { return c.room != nil && c.from != c.to }

// applyTransition moves r to target and applies the room side effect. The
// caller holds the locks on r and rm. Both rows are written through tx.
func applyTransition(
	ctx context.Context,
	tx reservation.Tx,
	r *reservation.Reservation,
	rm *room.Room,
	target reservation.Status,
) (roomChange, error) {
	change := roomChange{room: rm, from: rm.Status(), to: rm.Status()}

	if err := r.TransitionTo(target); err != nil {
		return change, err
	}

	next, err := reservation.RoomEffect(target, rm.Status())
	if err != nil {
		return change, err
	}

	switch {
	case target == reservation.StatusCheckedIn:
		holders, err := tx.CountHolders(ctx, rm.ID(), r.ID(), reservation.StatusCheckedIn)
		if err != nil {
			return change, err
		}
		if holders > 0 {
			return change, apperror.Newf(apperror.KindRoomAlreadyOccupied,
				"room %s already has a checked-in guest", rm.Number())
		}
	case target.ReleasesRoom() && next != rm.Status():
		holders, err := tx.CountHolders(ctx, rm.ID(), r.ID(), reservation.StatusConfirmed)
		if err != nil {
			return change, err
		}
		if holders > 0 {
			next = rm.Status()
		}
	}

	if err := tx.UpdateReservationStatus(ctx, r); err != nil {
		return change, err
	}

	if next != rm.Status() {
		rm.ChangeStatus(next)
		if err := tx.UpdateRoomStatus(ctx, rm); err != nil {
			return change, err
		}
	}
	change.to = rm.Status()
	return change, nil
}

// Transition moves a reservation to requested. Requesting the current status
// succeeds without writing anything.
func (e *LifecycleEngine) Transition(ctx context.Context, reservationID uuid.UUID, requested reservation.Status) (*TransitionResult, error) {
	return e.run(ctx, reservationID, &requested, nil)
}

// UpdateReservation is the only edit path for an existing reservation. A
// room_id other than the stored one fails with ROOM_ID_IMMUTABLE; a status
// goes through the lifecycle.
func (e *LifecycleEngine) UpdateReservation(ctx context.Context, reservationID uuid.UUID, req UpdateReservationRequest) (*TransitionResult, error) {
	if req.Status == nil && req.RoomID == nil {
		return nil, apperror.Validation("nothing to update: provide status")
	}

	var requested *reservation.Status
	if req.Status != nil {
		s, err := reservation.ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		requested = &s
	}
	return e.run(ctx, reservationID, requested, req.RoomID)
}

func (e *LifecycleEngine) run(
	ctx context.Context,
	reservationID uuid.UUID,
	requested *reservation.Status,
	roomID *uuid.UUID,
) (*TransitionResult, error) {
	start := time.Now()
	defer e.metrics.ObserveSince("transition", start)

	target := ""
	if requested != nil {
		target = string(*requested)
	}
	ctx, span := tracer.Start(ctx, "lifecycle.transition",
		trace.WithAttributes(
			attribute.String("reservation.id", reservationID.String()),
			attribute.String("reservation.requested_status", target),
		),
	)
	defer span.End()

	if requested != nil && !requested.IsValid() {
		err := apperror.Validation("invalid reservation status: %q", *requested)
		e.metrics.Transition("", "invalid", metrics.ResultRejected)
		return nil, err
	}

	var (
		res     *reservation.Reservation
		from    reservation.Status
		change  roomChange
		applied bool
	)
	err := e.store.WithinTx(ctx, func(ctx context.Context, tx reservation.Tx) error {
		r, err := tx.LockReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		res, from = r, r.Status()

		if roomID != nil {
			if err := r.CheckRoomAssignment(*roomID); err != nil {
				return err
			}
		}
		if requested == nil || *requested == r.Status() {
			return nil
		}

		rm, err := tx.LockRoom(ctx, r.RoomID())
		if err != nil {
			return err
		}
		change, err = applyTransition(ctx, tx, r, rm, *requested)
		if err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		e.recordFailure(span, from, target, err)
		logFn := e.logger.Info
		if apperror.KindOf(err) == apperror.KindInternal {
			logFn = e.logger.Error
		}
		logFn("reservation transition failed",
			zap.String("reservation_id", reservationID.String()),
			zap.String("from", string(from)),
			zap.String("to", target),
			zap.String("kind", string(apperror.KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}

	result := &TransitionResult{
		ReservationID: res.ID(),
		Previous:      string(from),
		Status:        string(res.Status()),
		Changed:       applied,
	}
	if change.room != nil {
		result.RoomStatus = string(change.to)
	}

	if !applied {
		if requested != nil {
			e.metrics.Transition(string(from), target, metrics.ResultNoop)
		}
		span.SetAttributes(attribute.Bool("transition.noop", true))
		return result, nil
	}

	e.metrics.Transition(string(from), target, metrics.ResultApplied)
	span.SetAttributes(attribute.String("room.status", result.RoomStatus))
	e.logger.Info("reservation transitioned",
		zap.String("reservation_id", res.ID().String()),
		zap.String("from", string(from)),
		zap.String("to", string(res.Status())),
		zap.String("room_status", result.RoomStatus),
	)

	e.afterCommit(ctx, res, from, change)
	return result, nil
}

// afterCommit publishes integration events and drops cached room listings.
func (e *LifecycleEngine) afterCommit(ctx context.Context, r *reservation.Reservation, from reservation.Status, change roomChange) {
	now := time.Now().UTC()
	publishEvent(ctx, e.publisher, e.logger, events.TopicReservationEvents, events.ReservationStatusChanged,
		r.ID().String(), events.ReservationStatusChangedEvent{
			ReservationID: r.ID(),
			Code:          r.Code(),
			RoomID:        r.RoomID(),
			From:          string(from),
			To:            string(r.Status()),
			Version:       r.Version(),
			OccurredAt:    now,
		})

	if change.changed() {
		publishRoomChanged(ctx, e.publisher, e.logger, change, "reservation."+string(r.Status()))
		e.cache.Invalidate(ctx)
	}
}

func (e *LifecycleEngine) recordFailure(span trace.Span, from reservation.Status, target string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(apperror.KindOf(err)))
	result := metrics.ResultRejected
	if apperror.KindOf(err) == apperror.KindInternal || apperror.IsRetryable(err) {
		result = metrics.ResultError
	}
	e.metrics.Transition(string(from), target, result)
}

func publishRoomChanged(ctx context.Context, publisher EventPublisher, logger *zap.Logger, change roomChange, cause string) {
	publishEvent(ctx, publisher, logger, events.TopicReservationEvents, events.RoomStatusChanged,
		change.room.ID().String(), events.RoomStatusChangedEvent{
			RoomID:     change.room.ID(),
			RoomNumber: change.room.Number(),
			From:       string(change.from),
			To:         string(change.to),
			Cause:      cause,
			OccurredAt: time.Now().UTC(),
		})
}
