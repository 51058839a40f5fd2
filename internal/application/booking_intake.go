package application

import (
	"context"
	"strings"
	"time"

	"github.com/frontdesk/service-reservation/internal/domain/guest"
	"github.com/frontdesk/service-reservation/internal/domain/reservation"
	"github.com/frontdesk/service-reservation/internal/domain/room"
	"github.com/frontdesk/service-reservation/internal/metrics"
	"github.com/frontdesk/service-reservation/internal/pkg/apperror"
	"github.com/frontdesk/service-reservation/internal/proto/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// BookingIntake creates reservations. Room lock, overlap check, guest write,
// reservation insert and the optional confirmation are one unit of work.
type BookingIntake struct {
	store     reservation.Store
	pricing   reservation.PricingStrategy
	publisher EventPublisher
	cache     RoomCache
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewBookingIntake creates a new BookingIntake. publisher and cache may be nil.
func NewBookingIntake(
	store reservation.Store,
	pricing reservation.PricingStrategy,
	publisher EventPublisher,
	cache RoomCache,
	m *metrics.Metrics,
	logger *zap.Logger,
) *BookingIntake {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if cache == nil {
		cache = nopCache{}
	}
	return &BookingIntake{
		store:     store,
		pricing:   pricing,
		publisher: publisher,
		cache:     cache,
		metrics:   m,
		logger:    logger,
	}
}

// CreateBooking books a room for a stay and returns the new reservation.
func (b *BookingIntake) CreateBooking(ctx context.Context, req CreateBookingRequest) (*ReservationDTO, error) {
	start := time.Now()
	defer b.metrics.ObserveSince("booking", start)

	ctx, span := tracer.Start(ctx, "booking.create",
		trace.WithAttributes(
			attribute.String("room.id", req.RoomID.String()),
			attribute.String("stay.check_in", req.CheckIn),
			attribute.String("stay.check_out", req.CheckOut),
		),
	)
	defer span.End()

	result, err := b.createBooking(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperror.KindOf(err)))
		outcome := metrics.ResultRejected
		if apperror.KindOf(err) == apperror.KindInternal || apperror.IsRetryable(err) {
			outcome = metrics.ResultError
		}
		b.metrics.Booking(outcome)
		b.logger.Info("booking refused",
			zap.String("room_id", req.RoomID.String()),
			zap.String("check_in", req.CheckIn),
			zap.String("check_out", req.CheckOut),
			zap.String("kind", string(apperror.KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}

	b.metrics.Booking(metrics.ResultApplied)
	span.SetAttributes(attribute.String("reservation.id", result.ID.String()))
	return result, nil
}

func (b *BookingIntake) createBooking(ctx context.Context, req CreateBookingRequest) (*ReservationDTO, error) {
	stay, err := reservation.ParseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	initial := reservation.StatusPending
	if s := strings.TrimSpace(req.Status); s != "" {
		initial, err = reservation.ParseStatus(s)
		if err != nil {
			return nil, err
		}
	}
	if initial != reservation.StatusPending && initial != reservation.StatusConfirmed {
		return nil, apperror.Validation("initial status must be pending or confirmed, got %q", initial)
	}

	if req.Guest.ID == nil && strings.TrimSpace(req.Guest.FullName) == "" {
		return nil, apperror.Validation("guest full_name is required for a new guest")
	}

	var (
		res    *reservation.Reservation
		g      *guest.Guest
		rm     *room.Room
		change roomChange
	)
	err = b.store.WithinTx(ctx, func(ctx context.Context, tx reservation.Tx) error {
		var err error
		rm, err = tx.LockRoom(ctx, req.RoomID)
		if err != nil {
			return err
		}
		if rm.Status() == room.StatusOutOfService {
			return apperror.Newf(apperror.KindRoomUnavailable, "room %s is out of service", rm.Number())
		}

		conflict, err := tx.HasOverlap(ctx, rm.ID(), stay)
		if err != nil {
			return err
		}
		if conflict {
			return apperror.Newf(apperror.KindDateRangeConflict,
				"room %s is already booked between %s and %s", rm.Number(),
				stay.CheckIn().Format(reservation.DateLayout), stay.CheckOut().Format(reservation.DateLayout))
		}

		g, err = b.resolveGuest(ctx, tx, req.Guest)
		if err != nil {
			return err
		}

		total, err := b.pricing.Calculate(stay, rm.Type().BaseNightlyRateCents)
		if err != nil {
			return apperror.Validation("pricing error: %v", err)
		}

		res, err = reservation.NewReservation(rm.ID(), g.ID(), stay, total)
		if err != nil {
			return err
		}
		if err := tx.InsertReservation(ctx, res); err != nil {
			return err
		}

		if initial == reservation.StatusConfirmed {
			change, err = applyTransition(ctx, tx, res, rm, reservation.StatusConfirmed)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.logger.Info("reservation created",
		zap.String("reservation_id", res.ID().String()),
		zap.String("code", res.Code()),
		zap.String("room_number", rm.Number()),
		zap.String("status", string(res.Status())),
		zap.Int64("total_amount_cents", res.TotalAmountCents()),
	)

	publishEvent(ctx, b.publisher, b.logger, events.TopicReservationEvents, events.ReservationCreated,
		res.ID().String(), events.ReservationCreatedEvent{
			ReservationID:    res.ID(),
			Code:             res.Code(),
			RoomID:           res.RoomID(),
			GuestID:          res.GuestID(),
			CheckIn:          stay.CheckIn().Format(reservation.DateLayout),
			CheckOut:         stay.CheckOut().Format(reservation.DateLayout),
			Status:           string(res.Status()),
			TotalAmountCents: res.TotalAmountCents(),
			OccurredAt:       time.Now().UTC(),
		})
	if change.changed() {
		publishRoomChanged(ctx, b.publisher, b.logger, change, "booking")
		b.cache.Invalidate(ctx)
	}

	dto := toReservationDTO(res, g, rm.Number())
	return &dto, nil
}

// resolveGuest reuses the guest named by ID, else the first guest with the
// same identification document, else inserts a new guest in tx.
func (b *BookingIntake) resolveGuest(ctx context.Context, tx reservation.Tx, in GuestInput) (*guest.Guest, error) {
	if in.ID != nil {
		return tx.FindGuest(ctx, *in.ID)
	}

	if doc := strings.TrimSpace(in.IDDocument); doc != "" {
		existing, err := tx.FindGuestByDocument(ctx, doc)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	g, err := guest.NewGuest(in.FullName, in.Phone, in.IDDocument)
	if err != nil {
		return nil, err
	}
	if err := tx.InsertGuest(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}
