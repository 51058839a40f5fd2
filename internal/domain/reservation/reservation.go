package reservation

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/frontdesk/service-reservation/internal/pkg/apperror"
	"github.com/google/uuid"
)

const codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Reservation is the aggregate root for a guest's claim on a room for a stay.
type Reservation struct {
	id               uuid.UUID
	code             string
	roomID           uuid.UUID
	guestID          uuid.UUID
	stay             Stay
	status           Status
	totalAmountCents int64

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateCode creates a front-desk reference in the format "RS-XXXXXX".
func generateCode() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate reservation code: %w", err)
		}
		result[i] = codeChars[n.Int64()]
	}
	return "RS-" + string(result), nil
}

// NewReservation creates a pending reservation. Any other initial status is
// reached through the lifecycle so its room side effect is applied.
func NewReservation(roomID, guestID uuid.UUID, stay Stay, totalAmountCents int64) (*Reservation, error) {
	if roomID == uuid.Nil {
		return nil, apperror.Validation("room ID is required")
	}
	if guestID == uuid.Nil {
		return nil, apperror.Validation("guest ID is required")
	}
	if stay.Nights() <= 0 {
		return nil, apperror.Validation("stay must cover at least one night")
	}
	if totalAmountCents < 0 {
		return nil, apperror.Validation("total amount cannot be negative")
	}

	code, err := generateCode()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Reservation{
		id:               uuid.New(),
		code:             code,
		roomID:           roomID,
		guestID:          guestID,
		stay:             stay,
		status:           StatusPending,
		totalAmountCents: totalAmountCents,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// Reconstruct rebuilds a Reservation from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	code string,
	roomID uuid.UUID,
	guestID uuid.UUID,
	stay Stay,
	status Status,
	totalAmountCents int64,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:               id,
		code:             code,
		roomID:           roomID,
		guestID:          guestID,
		stay:             stay,
		status:           status,
		totalAmountCents: totalAmountCents,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// ReconstructStay rebuilds a Stay from stored dates without validation.
func ReconstructStay(checkIn, checkOut time.Time) Stay {
	return Stay{checkIn: toDate(checkIn), checkOut: toDate(checkOut)}
}

// --- Getters ---

func (r *Reservation) ID() uuid.UUID           { return r.id }
func (r *Reservation) Code() string            { return r.code }
func (r *Reservation) RoomID() uuid.UUID       { return r.roomID }
func (r *Reservation) GuestID() uuid.UUID      { return r.guestID }
func (r *Reservation) Stay() Stay              { return r.stay }
func (r *Reservation) Status() Status          { return r.status }
func (r *Reservation) TotalAmountCents() int64 { return r.totalAmountCents }

// Version returns the entity version for optimistic locking.
func (r *Reservation) Version() int64 { return r.version }

func (r *Reservation) CreatedAt() time.Time { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time { return r.updatedAt }

// --- Behavior ---

// TransitionTo moves the reservation along the state graph and bumps its
// version. It does not touch the room; that is the lifecycle engine's job.
func (r *Reservation) TransitionTo(target Status) error {
	if !target.IsValid() {
		return apperror.Validation("invalid reservation status: %q", target)
	}
	if !r.status.CanTransitionTo(target) {
		return apperror.Newf(apperror.KindInvalidTransition,
			"cannot move reservation from %s to %s", r.status, target)
	}
	r.status = target
	r.version++
	r.updatedAt = time.Now().UTC()
	return nil
}

// RegenerateCode replaces the front-desk code of a reservation that has not
// been stored yet. Stores call it when the drawn code is already taken.
func (r *Reservation) RegenerateCode() error {
	code, err := generateCode()
	if err != nil {
		return err
	}
	r.code = code
	return nil
}

// CheckRoomAssignment rejects any attempt to point the reservation at a
// different room.
func (r *Reservation) CheckRoomAssignment(roomID uuid.UUID) error {
	if roomID != r.roomID {
		return apperror.Newf(apperror.KindRoomIDImmutable,
			"reservation %s is assigned to room %s and cannot be moved", r.id, r.roomID)
	}
	return nil
}
