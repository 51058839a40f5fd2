package room

import (
	"time"

	"github.com/frontdesk/service-reservation/internal/pkg/apperror"
	"github.com/google/uuid"
)

// Status is the occupancy state of a physical room.
type Status string

const (
	StatusAvailable    Status = "available"
	StatusOccupied     Status = "occupied"
	StatusMaintenance  Status = "maintenance"
	StatusReserved     Status = "reserved"
	StatusOutOfService Status = "out_of_service"
)

// IsValid returns true if the status is a recognized room status.
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusOccupied, StatusMaintenance, StatusReserved, StatusOutOfService:
		return true
	}
	return false
}

// IsManual returns true for statuses staff may set directly. Occupied and
// reserved are only ever written by the reservation lifecycle.
func (s Status) IsManual() bool {
	return s == StatusAvailable || s == StatusMaintenance || s == StatusOutOfService
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", apperror.Validation("invalid room status: %q", s)
	}
	return status, nil
}

// Type describes a room category. Read-only from the reservation side.
type Type struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	BaseNightlyRateCents int64     `json:"base_nightly_rate_cents"`
}

// Room is a physical room and its current occupancy status.
type Room struct {
	id        uuid.UUID
	number    string
	status    Status
	roomType  Type
	updatedAt time.Time
}

// NewRoom creates an available room. Rooms are provisioned out of band; this
// is used by seeding and tests.
func NewRoom(number string, roomType Type) (*Room, error) {
	if number == "" {
		return nil, apperror.Validation("room number is required")
	}
	if roomType.BaseNightlyRateCents < 0 {
		return nil, apperror.Validation("nightly rate cannot be negative")
	}
	return &Room{
		id:        uuid.New(),
		number:    number,
		status:    StatusAvailable,
		roomType:  roomType,
		updatedAt: time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Room from persistence data (no validation).
func Reconstruct(id uuid.UUID, number string, status Status, roomType Type, updatedAt time.Time) *Room {
	return &Room{
		id:        id,
		number:    number,
		status:    status,
		roomType:  roomType,
		updatedAt: updatedAt,
	}
}

func (r *Room) ID() uuid.UUID        { return r.id }
func (r *Room) Number() string       { return r.number }
func (r *Room) Status() Status       { return r.status }
func (r *Room) Type() Type           { return r.roomType }
func (r *Room) UpdatedAt() time.Time { return r.updatedAt }

// ChangeStatus sets the occupancy status. Callers are responsible for holding
// the room lock and for checking preconditions.
func (r *Room) ChangeStatus(status Status) {
	r.status = status
	r.updatedAt = time.Now().UTC()
}
