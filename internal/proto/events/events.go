// Package events holds the topic names, event types and payloads exchanged
// with other hotel services.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicReservationEvents  = "reservation.events"
	TopicHousekeepingEvents = "housekeeping.events"
)

// Event types published on TopicReservationEvents.
const (
	ReservationCreated       = "reservation.created"
	ReservationStatusChanged = "reservation.status_changed"
	RoomStatusChanged        = "room.status_changed"
)

// Event types consumed from TopicHousekeepingEvents.
const (
	RoomCleaned             = "room.cleaned"
	RoomMaintenanceRequired = "room.maintenance_required"
)

// ReservationCreatedEvent is published after a booking commits.
type ReservationCreatedEvent struct {
	ReservationID    uuid.UUID `json:"reservation_id"`
	Code             string    `json:"code"`
	RoomID           uuid.UUID `json:"room_id"`
	GuestID          uuid.UUID `json:"guest_id"`
	CheckIn          string    `json:"check_in"`
	CheckOut         string    `json:"check_out"`
	Status           string    `json:"status"`
	TotalAmountCents int64     `json:"total_amount_cents"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// ReservationStatusChangedEvent is published after a transition commits.
type ReservationStatusChangedEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	Code          string    `json:"code"`
	RoomID        uuid.UUID `json:"room_id"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	Version       int64     `json:"version"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// RoomStatusChangedEvent is published whenever a committed operation changed
// a room's status.
type RoomStatusChangedEvent struct {
	RoomID     uuid.UUID `json:"room_id"`
	RoomNumber string    `json:"room_number"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Cause      string    `json:"cause"`
	OccurredAt time.Time `json:"occurred_at"`
}

// HousekeepingEvent is the payload of every event on TopicHousekeepingEvents.
type HousekeepingEvent struct {
	RoomID     uuid.UUID `json:"room_id"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
