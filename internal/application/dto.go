package application

import (
	"time"

	"github.com/frontdesk/service-reservation/internal/domain/guest"
	"github.com/frontdesk/service-reservation/internal/domain/reservation"
	"github.com/frontdesk/service-reservation/internal/domain/room"
	"github.com/google/uuid"
)

// GuestInput identifies an existing guest or describes a new one.
type GuestInput struct {
	ID         *uuid.UUID `json:"id"`
	FullName   string     `json:"full_name"`
	Phone      string     `json:"phone"`
	IDDocument string     `json:"id_document"`
}

// CreateBookingRequest holds the data needed to create a new reservation.
type CreateBookingRequest struct {
	Guest    GuestInput `json:"guest"`
	RoomID   uuid.UUID  `json:"room_id" binding:"required"`
	CheckIn  string     `json:"check_in" binding:"required"`
	CheckOut string     `json:"check_out" binding:"required"`
	// Status is the initial status: pending (default) or confirmed.
	Status string `json:"status"`
}

// TransitionRequest is the body of POST /reservations/:id/transition.
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateReservationRequest is the body of PATCH /reservations/:id. Only
// status may actually change; a differing room_id is rejected.
type UpdateReservationRequest struct {
	Status *string    `json:"status"`
	RoomID *uuid.UUID `json:"room_id"`
}

// SetRoomStatusRequest is the body of PATCH /rooms/:id/status.
type SetRoomStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GuestDTO is the response representation of a guest.
type GuestDTO struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"full_name"`
	Phone      string    `json:"phone,omitempty"`
	IDDocument string    `json:"id_document,omitempty"`
}

// ReservationDTO is the response representation of a reservation.
type ReservationDTO struct {
	ID               uuid.UUID `json:"id"`
	Code             string    `json:"code"`
	RoomID           uuid.UUID `json:"room_id"`
	RoomNumber       string    `json:"room_number,omitempty"`
	GuestID          uuid.UUID `json:"guest_id"`
	Guest            *GuestDTO `json:"guest,omitempty"`
	CheckIn          string    `json:"check_in"`
	CheckOut         string    `json:"check_out"`
	Nights           int       `json:"nights"`
	Status           string    `json:"status"`
	AllowedNext      []string  `json:"allowed_next"`
	TotalAmountCents int64     `json:"total_amount_cents"`
	Version          int64     `json:"version"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RoomDTO is the response representation of a room.
type RoomDTO struct {
	ID         uuid.UUID `json:"id"`
	RoomNumber string    `json:"room_number"`
	Status     string    `json:"status"`
	RoomType   room.Type `json:"room_type"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TransitionResult reports the outcome of a lifecycle request.
type TransitionResult struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	Previous      string    `json:"previous_status"`
	Status        string    `json:"status"`
	RoomStatus    string    `json:"room_status,omitempty"`
	Changed       bool      `json:"changed"`
}

// AvailabilityDTO answers an availability query.
type AvailabilityDTO struct {
	RoomID    uuid.UUID `json:"room_id"`
	CheckIn   string    `json:"check_in"`
	CheckOut  string    `json:"check_out"`
	Available bool      `json:"available"`
}

// ReservationStatsDTO holds reservation counts for the admin dashboard.
type ReservationStatsDTO struct {
	TotalReservations int64            `json:"total_reservations"`
	ByStatus          map[string]int64 `json:"by_status"`
}

// PaginatedResult is one page of a listing.
type PaginatedResult[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}

// --- Helpers ---

func toGuestDTO(g *guest.Guest) *GuestDTO {
	if g == nil {
		return nil
	}
	return &GuestDTO{
		ID:         g.ID(),
		FullName:   g.FullName(),
		Phone:      g.Phone(),
		IDDocument: g.IDDocument(),
	}
}

func toReservationDTO(r *reservation.Reservation, g *guest.Guest, roomNumber string) ReservationDTO {
	return ReservationDTO{
		ID:               r.ID(),
		Code:             r.Code(),
		RoomID:           r.RoomID(),
		RoomNumber:       roomNumber,
		GuestID:          r.GuestID(),
		Guest:            toGuestDTO(g),
		CheckIn:          r.Stay().CheckIn().Format(reservation.DateLayout),
		CheckOut:         r.Stay().CheckOut().Format(reservation.DateLayout),
		Nights:           r.Stay().Nights(),
		Status:           string(r.Status()),
		AllowedNext:      reservation.Strings(r.Status().AllowedTargets()),
		TotalAmountCents: r.TotalAmountCents(),
		Version:          r.Version(),
		CreatedAt:        r.CreatedAt(),
		UpdatedAt:        r.UpdatedAt(),
	}
}

func toListingDTO(l *reservation.Listing) ReservationDTO {
	return toReservationDTO(l.Reservation, l.Guest, l.RoomNumber)
}

func toRoomDTO(rm *room.Room) RoomDTO {
	return RoomDTO{
		ID:         rm.ID(),
		RoomNumber: rm.Number(),
		Status:     string(rm.Status()),
		RoomType:   rm.Type(),
		UpdatedAt:  rm.UpdatedAt(),
	}
}
