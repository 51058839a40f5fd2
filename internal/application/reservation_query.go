package application

import (
	"context"
	"fmt"

	"github.com/frontdesk/service-reservation/internal/domain/reservation"
	"github.com/frontdesk/service-reservation/internal/pkg/apperror"
	"github.com/google/uuid"
)

// ReservationQueryService serves the read side of the reservations screen.
type ReservationQueryService struct {
	store reservation.Store
}

// NewReservationQueryService creates a new ReservationQueryService.
func NewReservationQueryService(store reservation.Store) *ReservationQueryService {
	return &ReservationQueryService{store: store}
}

// ListReservationsQuery filters the reservation listing. Empty strings mean "any".
type ListReservationsQuery struct {
	Status string
	RoomID string
	Page   int
	Limit  int
}

// GetReservation retrieves a single reservation with its guest and room number.
func (s *ReservationQueryService) GetReservation(ctx context.Context, id uuid.UUID) (*ReservationDTO, error) {
	l, err := s.store.FindListing(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toListingDTO(l)
	return &dto, nil
}

// ListReservations retrieves reservations ordered by check-in, newest first.
func (s *ReservationQueryService) ListReservations(ctx context.Context, q ListReservationsQuery) (*PaginatedResult[ReservationDTO], error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 20
	}
	filter := reservation.ListFilter{Page: q.Page, Limit: q.Limit}
	if q.Status != "" {
		status, err := reservation.ParseStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	if q.RoomID != "" {
		roomID, err := uuid.Parse(q.RoomID)
		if err != nil {
			return nil, apperror.Validation("invalid room_id %q", q.RoomID)
		}
		filter.RoomID = &roomID
	}

	listings, total, err := s.store.ListReservations(ctx, filter)
	if err != nil {
		return nil, err
	}

	dtos := make([]ReservationDTO, len(listings))
	for i, l := range listings {
		dtos[i] = toListingDTO(l)
	}
	return &PaginatedResult[ReservationDTO]{Items: dtos, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

// GetReservationStats returns reservation counts by status.
func (s *ReservationQueryService) GetReservationStats(ctx context.Context) (*ReservationStatsDTO, error) {
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &ReservationStatsDTO{
		TotalReservations: total,
		ByStatus:          counts,
	}, nil
}
