package repository

import (
	"time"

	"github.com/frontdesk/service-reservation/internal/domain/guest"
	"github.com/frontdesk/service-reservation/internal/domain/reservation"
	"github.com/frontdesk/service-reservation/internal/domain/room"
	"github.com/google/uuid"
)

// RoomTypeModel is the GORM model for the room_types table.
type RoomTypeModel struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name                 string    `gorm:"not null;size:100"`
	Description          string    `gorm:"size:500"`
	BaseNightlyRateCents int64     `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RoomTypeModel) TableName() string {
	return "room_types"
}

// RoomModel is the GORM model for the rooms table.
type RoomModel struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey"`
	RoomNumber string        `gorm:"uniqueIndex;not null;size:20"`
	RoomTypeID uuid.UUID     `gorm:"type:uuid;index;not null"`
	RoomType   RoomTypeModel `gorm:"foreignKey:RoomTypeID"`
	Status     string        `gorm:"not null;size:20;index"`
	UpdatedAt  time.Time     `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RoomModel) TableName() string {
	return "rooms"
}

// GuestModel is the GORM model for the guests table.
type GuestModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName   string    `gorm:"not null;size:200"`
	Phone      string    `gorm:"size:50"`
	IDDocument string    `gorm:"size:100;index"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (GuestModel) TableName() string {
	return "guests"
}

// ReservationModel is the GORM model for the reservations table.
type ReservationModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Code             string     `gorm:"uniqueIndex;not null;size:20"`
	RoomID           uuid.UUID  `gorm:"type:uuid;not null;index:idx_reservations_room_dates,priority:1"`
	Room             RoomModel  `gorm:"foreignKey:RoomID"`
	GuestID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	Guest            GuestModel `gorm:"foreignKey:GuestID"`
	CheckIn          time.Time  `gorm:"type:date;not null;index:idx_reservations_room_dates,priority:2"`
	CheckOut         time.Time  `gorm:"type:date;not null;index:idx_reservations_room_dates,priority:3"`
	Status           string     `gorm:"not null;size:20;index"`
	TotalAmountCents int64      `gorm:"not null"`
	Version          int64      `gorm:"not null;default:1"`
	CreatedAt        time.Time  `gorm:"not null"`
	UpdatedAt        time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ReservationModel) TableName() string {
	return "reservations"
}

// --- Conversion Helpers ---

func toRoomTypeModel(t room.Type) RoomTypeModel {
	return RoomTypeModel{
		ID:                   t.ID,
		Name:                 t.Name,
		Description:          t.Description,
		BaseNightlyRateCents: t.BaseNightlyRateCents,
	}
}

func toDomainRoomType(m RoomTypeModel) room.Type {
	return room.Type{
		ID:                   m.ID,
		Name:                 m.Name,
		Description:          m.Description,
		BaseNightlyRateCents: m.BaseNightlyRateCents,
	}
}

func toRoomModel(rm *room.Room) *RoomModel {
	return &RoomModel{
		ID:         rm.ID(),
		RoomNumber: rm.Number(),
		RoomTypeID: rm.Type().ID,
		Status:     string(rm.Status()),
		UpdatedAt:  rm.UpdatedAt(),
	}
}

func toDomainRoom(m *RoomModel, roomType RoomTypeModel) (*room.Room, error) {
	status, err := room.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return room.Reconstruct(m.ID, m.RoomNumber, status, toDomainRoomType(roomType), m.UpdatedAt), nil
}

func toGuestModel(g *guest.Guest) *GuestModel {
	return &GuestModel{
		ID:         g.ID(),
		FullName:   g.FullName(),
		Phone:      g.Phone(),
		IDDocument: g.IDDocument(),
		CreatedAt:  g.CreatedAt(),
	}
}

func toDomainGuest(m *GuestModel) *guest.Guest {
	return guest.Reconstruct(m.ID, m.FullName, m.Phone, m.IDDocument, m.CreatedAt)
}

func toReservationModel(r *reservation.Reservation) *ReservationModel {
	return &ReservationModel{
		ID:               r.ID(),
		Code:             r.Code(),
		RoomID:           r.RoomID(),
		GuestID:          r.GuestID(),
		CheckIn:          r.Stay().CheckIn(),
		CheckOut:         r.Stay().CheckOut(),
		Status:           string(r.Status()),
		TotalAmountCents: r.TotalAmountCents(),
		Version:          r.Version(),
		CreatedAt:        r.CreatedAt(),
		UpdatedAt:        r.UpdatedAt(),
	}
}

func toDomainReservation(m *ReservationModel) (*reservation.Reservation, error) {
	status, err := reservation.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return reservation.Reconstruct(
		m.ID,
		m.Code,
		m.RoomID,
		m.GuestID,
		reservation.ReconstructStay(m.CheckIn, m.CheckOut),
		status,
		m.TotalAmountCents,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toListing(m *ReservationModel) (*reservation.Listing, error) {
	r, err := toDomainReservation(m)
	if err != nil {
		return nil, err
	}
	return &reservation.Listing{
		Reservation: r,
		Guest:       toDomainGuest(&m.Guest),
		RoomNumber:  m.Room.RoomNumber,
	}, nil
}
