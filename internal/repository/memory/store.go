// Package memory provides an in-process reservation.Store. Row locks are
// emulated with a keyed lock manager and writes are staged per unit of work,
// so callers observe the same isolation and rollback guarantees as the
// PostgreSQL store.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/frontdesk/service-reservation/internal/domain/guest"
	"github.com/frontdesk/service-reservation/internal/domain/reservation"
	"github.com/frontdesk/service-reservation/internal/domain/room"
	"github.com/frontdesk/service-reservation/internal/pkg/apperror"
	"github.com/google/uuid"
)

var _ reservation.Store = (*Store)(nil)

// maxCodeAttempts bounds how many reservation codes are drawn per insert.
const maxCodeAttempts = 5

// Store is an in-memory reservation.Store.
type Store struct {
	mu           sync.RWMutex
	rooms        map[uuid.UUID]*room.Room
	guests       map[uuid.UUID]*guest.Guest
	reservations map[uuid.UUID]*reservation.Reservation

	locks *lockManager
}

// NewStore creates an empty Store. lockWait bounds every lock wait; zero
// means waits are bounded by the caller's context only.
func NewStore(lockWait time.Duration) *Store {
	return &Store{
		rooms:        make(map[uuid.UUID]*room.Room),
		guests:       make(map[uuid.UUID]*guest.Guest),
		reservations: make(map[uuid.UUID]*reservation.Reservation),
		locks:        newLockManager(lockWait),
	}
}

// SeedRoom stores a room. Rooms are provisioned out of band; this serves
// bootstrap data and tests.
func (s *Store) SeedRoom(_ context.Context, rm *room.Room) error {
	s.PutRoom(rm)
	return nil
}

// PutRoom stores or overwrites a room outside any unit of work.
func (s *Store) PutRoom(rm *room.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[rm.ID()] = cloneRoom(rm)
}

// WithinTx runs fn as one unit of work. Staged writes become visible only
// when fn succeeds and ctx is still live; locks are released afterwards in
// every case.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx reservation.Tx) error) error {
	tx := newTx(s)
	defer tx.releaseAll()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return apperror.New(apperror.KindLockTimeout, "deadline exceeded before commit")
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rm := range tx.rooms {
		s.rooms[id] = rm
	}
	for id, g := range tx.guests {
		s.guests[id] = g
	}
	for id, r := range tx.reservations {
		s.reservations[id] = r
	}
	return nil
}

// FindReservation retrieves a reservation by its unique identifier.
func (s *Store) FindReservation(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, apperror.Newf(apperror.KindReservationNotFound, "reservation %s not found", id)
	}
	return cloneReservation(r), nil
}

// FindListing retrieves a reservation together with its guest and room number.
func (s *Store) FindListing(_ context.Context, id uuid.UUID) (*reservation.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, apperror.Newf(apperror.KindReservationNotFound, "reservation %s not found", id)
	}
	return s.listingLocked(r), nil
}

// ListReservations retrieves listings ordered by check-in descending with pagination.
func (s *Store) ListReservations(_ context.Context, filter reservation.ListFilter) ([]*reservation.Listing, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*reservation.Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		if filter.Status != nil && r.Status() != *filter.Status {
			continue
		}
		if filter.RoomID != nil && r.RoomID() != *filter.RoomID {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.Stay().CheckIn().Equal(b.Stay().CheckIn()) {
			return a.Stay().CheckIn().After(b.Stay().CheckIn())
		}
		return a.CreatedAt().After(b.CreatedAt())
	})

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start < 0 {
		start = 0
	}
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}

	listings := make([]*reservation.Listing, 0, end-start)
	for _, r := range matched[start:end] {
		listings = append(listings, s.listingLocked(r))
	}
	return listings, total, nil
}

// CountByStatus returns reservation counts grouped by status.
func (s *Store) CountByStatus(_ context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int64)
	for _, r := range s.reservations {
		counts[string(r.Status())]++
	}
	return counts, nil
}

// FindRoom retrieves a room with its type.
func (s *Store) FindRoom(_ context.Context, id uuid.UUID) (*room.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rm, ok := s.rooms[id]
	if !ok {
		return nil, apperror.Newf(apperror.KindRoomNotFound, "room %s not found", id)
	}
	return cloneRoom(rm), nil
}

// ListRooms retrieves rooms ordered by room number, optionally by status.
func (s *Store) ListRooms(_ context.Context, status *room.Status) ([]*room.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*room.Room, 0, len(s.rooms))
	for _, rm := range s.rooms {
		if status != nil && rm.Status() != *status {
			continue
		}
		rooms = append(rooms, cloneRoom(rm))
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Number() < rooms[j].Number() })
	return rooms, nil
}

// HasOverlap reports whether an active reservation on the room overlaps stay.
func (s *Store) HasOverlap(_ context.Context, roomID uuid.UUID, stay reservation.Stay) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reservations {
		if overlaps(r, roomID, stay) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) codeTaken(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reservations {
		if r.Code() == code {
			return true
		}
	}
	return false
}

func (s *Store) listingLocked(r *reservation.Reservation) *reservation.Listing {
	l := &reservation.Listing{Reservation: cloneReservation(r)}
	if g, ok := s.guests[r.GuestID()]; ok {
		l.Guest = cloneGuest(g)
	}
	if rm, ok := s.rooms[r.RoomID()]; ok {
		l.RoomNumber = rm.Number()
	}
	return l
}

func overlaps(r *reservation.Reservation, roomID uuid.UUID, stay reservation.Stay) bool {
	return r.RoomID() == roomID && r.Status().IsActive() && r.Stay().Overlaps(stay)
}

func cloneRoom(rm *room.Room) *room.Room {
	c := *rm
	return &c
}

func cloneGuest(g *guest.Guest) *guest.Guest {
	c := *g
	return &c
}

func cloneReservation(r *reservation.Reservation) *reservation.Reservation {
	c := *r
	return &c
}
