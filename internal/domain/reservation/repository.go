package reservation

import (
	"context"

	"github.com/frontdesk/service-reservation/internal/domain/guest"
	"github.com/frontdesk/service-reservation/internal/domain/room"
	"github.com/google/uuid"
)

// Listing is the read model shown on the reservations screen.
type Listing struct {
	Reservation *Reservation
	Guest       *guest.Guest
	RoomNumber  string
}

// ListFilter narrows ListReservations. Zero values mean "any".
type ListFilter struct {
	Status *Status
	RoomID *uuid.UUID
	Page   int
	Limit  int
}

// Store defines the persistence contract of the front desk: read queries
// plus a unit of work for writes.
type Store interface {
	// WithinTx runs fn in one atomic unit. If fn returns an error, or ctx is
	// done before commit, nothing fn wrote becomes visible.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// FindReservation retrieves a reservation by its unique identifier.
	FindReservation(ctx context.Context, id uuid.UUID) (*Reservation, error)

	// FindListing retrieves a reservation together with its guest and room number.
	FindListing(ctx context.Context, id uuid.UUID) (*Listing, error)

	// ListReservations retrieves listings ordered by check-in descending with pagination.
	ListReservations(ctx context.Context, filter ListFilter) ([]*Listing, int64, error)

	// CountByStatus returns reservation counts grouped by status.
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// FindRoom retrieves a room with its type.
	FindRoom(ctx context.Context, id uuid.UUID) (*room.Room, error)

	// ListRooms retrieves rooms ordered by room number, optionally by status.
	ListRooms(ctx context.Context, status *room.Status) ([]*room.Room, error)

	// HasOverlap reports whether an active reservation on the room overlaps stay.
	HasOverlap(ctx context.Context, roomID uuid.UUID, stay Stay) (bool, error)
}

// Tx is the write side of a unit of work. Lock* methods take row locks that
// are held until the unit of work ends. Lock order is reservation before room.
type Tx interface {
	// LockReservation locks and loads a reservation.
	LockReservation(ctx context.Context, id uuid.UUID) (*Reservation, error)

	// LockRoom locks and loads a room.
	LockRoom(ctx context.Context, id uuid.UUID) (*room.Room, error)

	// HasOverlap is Store.HasOverlap evaluated inside the unit of work.
	HasOverlap(ctx context.Context, roomID uuid.UUID, stay Stay) (bool, error)

	// CountHolders counts reservations on the room in the given statuses,
	// excluding one reservation (uuid.Nil excludes nothing).
	CountHolders(ctx context.Context, roomID, exclude uuid.UUID, statuses ...Status) (int64, error)

	// FindGuest loads a guest by ID.
	FindGuest(ctx context.Context, id uuid.UUID) (*guest.Guest, error)

	// FindGuestByDocument returns the guest with the identification document,
	// or nil when none exists.
	FindGuestByDocument(ctx context.Context, idDocument string) (*guest.Guest, error)

	// InsertGuest persists a new guest.
	InsertGuest(ctx context.Context, g *guest.Guest) error

	// InsertReservation persists a new reservation.
	InsertReservation(ctx context.Context, r *Reservation) error

	// UpdateReservationStatus persists the reservation's status and version.
	// The room assignment is never written.
	UpdateReservationStatus(ctx context.Context, r *Reservation) error

	// UpdateRoomStatus persists the room's status.
	UpdateRoomStatus(ctx context.Context, rm *room.Room) error
}
