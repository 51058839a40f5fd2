package memory

import (
	"context"
	"fmt"

	"github.com/frontdesk/service-reservation/internal/domain/guest"
	"github.com/frontdesk/service-reservation/internal/domain/reservation"
	"github.com/frontdesk/service-reservation/internal/domain/room"
	"github.com/frontdesk/service-reservation/internal/pkg/apperror"
	"github.com/google/uuid"
)

// tx stages writes until WithinTx commits them. Reads see staged rows first.
type tx struct {
	store *Store
	held  []string

	rooms        map[uuid.UUID]*room.Room
	guests       map[uuid.UUID]*guest.Guest
	reservations map[uuid.UUID]*reservation.Reservation
}

func newTx(s *Store) *tx {
	return &tx{
		store:        s,
		rooms:        make(map[uuid.UUID]*room.Room),
		guests:       make(map[uuid.UUID]*guest.Guest),
		reservations: make(map[uuid.UUID]*reservation.Reservation),
	}
}

func (t *tx) lock(ctx context.Context, key string) error {
	for _, k := range t.held {
		if k == key {
			return nil
		}
	}
	if err := t.store.locks.acquire(ctx, key); err != nil {
		return err
	}
	t.held = append(t.held, key)
	return nil
}

func (t *tx) releaseAll() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.store.locks.release(t.held[i])
	}
	t.held = nil
}

func (t *tx) LockReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	if err := t.lock(ctx, "reservation:"+id.String()); err != nil {
		return nil, err
	}
	if r, ok := t.reservations[id]; ok {
		return cloneReservation(r), nil
	}
	return t.store.FindReservation(ctx, id)
}

func (t *tx) LockRoom(ctx context.Context, id uuid.UUID) (*room.Room, error) {
	if err := t.lock(ctx, "room:"+id.String()); err != nil {
		return nil, err
	}
	if rm, ok := t.rooms[id]; ok {
		return cloneRoom(rm), nil
	}
	return t.store.FindRoom(ctx, id)
}

// each visits every reservation as this unit of work sees it.
func (t *tx) each(fn func(r *reservation.Reservation)) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	for id, r := range t.store.reservations {
		if staged, ok := t.reservations[id]; ok {
			r = staged
		}
		fn(r)
	}
	for id, r := range t.reservations {
		if _, committed := t.store.reservations[id]; !committed {
			fn(r)
		}
	}
}

func (t *tx) HasOverlap(_ context.Context, roomID uuid.UUID, stay reservation.Stay) (bool, error) {
	found := false
	t.each(func(r *reservation.Reservation) {
		if overlaps(r, roomID, stay) {
			found = true
		}
	})
	return found, nil
}

func (t *tx) CountHolders(_ context.Context, roomID, exclude uuid.UUID, statuses ...reservation.Status) (int64, error) {
	var n int64
	t.each(func(r *reservation.Reservation) {
		if r.RoomID() != roomID || r.ID() == exclude {
			return
		}
		for _, s := range statuses {
			if r.Status() == s {
				n++
				return
			}
		}
	})
	return n, nil
}

func (t *tx) FindGuest(_ context.Context, id uuid.UUID) (*guest.Guest, error) {
	if g, ok := t.guests[id]; ok {
		return cloneGuest(g), nil
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	g, ok := t.store.guests[id]
	if !ok {
		return nil, apperror.Newf(apperror.KindGuestNotFound, "guest %s not found", id)
	}
	return cloneGuest(g), nil
}

func (t *tx) FindGuestByDocument(_ context.Context, idDocument string) (*guest.Guest, error) {
	var found *guest.Guest
	pick := func(g *guest.Guest) {
		if g.IDDocument() != idDocument {
			return
		}
		if found == nil || g.CreatedAt().Before(found.CreatedAt()) {
			found = g
		}
	}

	for _, g := range t.guests {
		pick(g)
	}
	t.store.mu.RLock()
	for _, g := range t.store.guests {
		pick(g)
	}
	t.store.mu.RUnlock()

	if found == nil {
		return nil, nil
	}
	return cloneGuest(found), nil
}

func (t *tx) InsertGuest(_ context.Context, g *guest.Guest) error {
	t.guests[g.ID()] = cloneGuest(g)
	return nil
}

// InsertReservation stages r, drawing a new code while the current one is
// already taken.
func (t *tx) InsertReservation(_ context.Context, r *reservation.Reservation) error {
	for attempt := 1; t.codeTaken(r.Code()); attempt++ {
		if attempt == maxCodeAttempts {
			return fmt.Errorf("failed to insert reservation: no free code after %d attempts", attempt)
		}
		if err := r.RegenerateCode(); err != nil {
			return err
		}
	}
	t.reservations[r.ID()] = cloneReservation(r)
	return nil
}

func (t *tx) codeTaken(code string) bool {
	for _, r := range t.reservations {
		if r.Code() == code {
			return true
		}
	}
	return t.store.codeTaken(code)
}

func (t *tx) UpdateReservationStatus(ctx context.Context, r *reservation.Reservation) error {
	current, ok := t.reservations[r.ID()]
	if !ok {
		committed, err := t.store.FindReservation(ctx, r.ID())
		if err != nil {
			return err
		}
		current = committed
	}
	if current.Version() != r.Version()-1 {
		return apperror.Newf(apperror.KindConcurrentModification,
			"reservation %s was modified by another transaction", r.ID())
	}
	if current.RoomID() != r.RoomID() {
		return apperror.Newf(apperror.KindRoomIDImmutable,
			"reservation %s is assigned to room %s", r.ID(), current.RoomID())
	}
	t.reservations[r.ID()] = cloneReservation(r)
	return nil
}

func (t *tx) UpdateRoomStatus(ctx context.Context, rm *room.Room) error {
	if _, ok := t.rooms[rm.ID()]; !ok {
		if _, err := t.store.FindRoom(ctx, rm.ID()); err != nil {
			return err
		}
	}
	t.rooms[rm.ID()] = cloneRoom(rm)
	return nil
}
