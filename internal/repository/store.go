package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frontdesk/service-reservation/internal/domain/guest"
	"github.com/frontdesk/service-reservation/internal/domain/reservation"
	"github.com/frontdesk/service-reservation/internal/domain/room"
	"github.com/frontdesk/service-reservation/internal/pkg/apperror"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres SQLSTATE codes the store translates into domain errors.
const (
	pgLockNotAvailable   = "55P03"
	pgDeadlockDetected   = "40P01"
	pgCheckViolation     = "23514"
	pgRaiseException     = "P0001"
	roomIDImmutableToken = "ROOM_ID_IMMUTABLE"
)

// maxCodeAttempts bounds how many reservation codes are drawn per insert.
const maxCodeAttempts = 5

var _ reservation.Store = (*GormStore)(nil)

// GormStore is the PostgreSQL implementation of reservation.Store.
type GormStore struct {
	db       *gorm.DB
	lockWait time.Duration
}

// NewGormStore creates a new GormStore. lockWait bounds every row-lock wait
// inside a unit of work; zero leaves the server default.
func NewGormStore(db *gorm.DB, lockWait time.Duration) *GormStore {
	return &GormStore{db: db, lockWait: lockWait}
}

// WithinTx runs fn inside a database transaction. Errors raised inside the
// unit of work are returned as they are; only begin and commit failures are
// wrapped here.
func (s *GormStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx reservation.Tx) error) error {
	var workErr error
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if s.lockWait > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockWait.Milliseconds())
			if err := db.Exec(stmt).Error; err != nil {
				workErr = mapDBError("set lock timeout", err)
				return workErr
			}
		}
		workErr = fn(ctx, &gormTx{db: db})
		return workErr
	})
	switch {
	case err == nil:
		return nil
	case workErr != nil:
		return workErr
	default:
		return mapDBError("commit transaction", err)
	}
}

// FindReservation retrieves a reservation by its unique identifier.
func (s *GormStore) FindReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var model ReservationModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Newf(apperror.KindReservationNotFound, "reservation %s not found", id)
		}
		return nil, mapDBError("find reservation", err)
	}
	return toDomainReservation(&model)
}

// FindListing retrieves a reservation together with its guest and room number.
func (s *GormStore) FindListing(ctx context.Context, id uuid.UUID) (*reservation.Listing, error) {
	var model ReservationModel
	if err := s.db.WithContext(ctx).
		Preload("Guest").
		Preload("Room").
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Newf(apperror.KindReservationNotFound, "reservation %s not found", id)
		}
		return nil, mapDBError("find reservation listing", err)
	}
	return toListing(&model)
}

// ListReservations retrieves listings ordered by check-in descending with pagination.
func (s *GormStore) ListReservations(ctx context.Context, filter reservation.ListFilter) ([]*reservation.Listing, int64, error) {
	filtered := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&ReservationModel{})
		if filter.Status != nil {
			query = query.Where("status = ?", string(*filter.Status))
		}
		if filter.RoomID != nil {
			query = query.Where("room_id = ?", *filter.RoomID)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, mapDBError("count reservations", err)
	}

	var models []ReservationModel
	offset := (filter.Page - 1) * filter.Limit
	if err := filtered().
		Preload("Guest").
		Preload("Room").
		Order("check_in DESC").
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&models).Error; err != nil {
		return nil, 0, mapDBError("list reservations", err)
	}

	listings := make([]*reservation.Listing, len(models))
	for i := range models {
		l, err := toListing(&models[i])
		if err != nil {
			return nil, 0, err
		}
		listings[i] = l
	}
	return listings, total, nil
}

// CountByStatus returns reservation counts grouped by status.
func (s *GormStore) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := s.db.WithContext(ctx).Model(&ReservationModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, mapDBError("count by status", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// FindRoom retrieves a room with its type.
func (s *GormStore) FindRoom(ctx context.Context, id uuid.UUID) (*room.Room, error) {
	var model RoomModel
	if err := s.db.WithContext(ctx).Preload("RoomType").Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Newf(apperror.KindRoomNotFound, "room %s not found", id)
		}
		return nil, mapDBError("find room", err)
	}
	return toDomainRoom(&model, model.RoomType)
}

// ListRooms retrieves rooms ordered by room number, optionally by status.
func (s *GormStore) ListRooms(ctx context.Context, status *room.Status) ([]*room.Room, error) {
	query := s.db.WithContext(ctx).Preload("RoomType").Order("room_number")
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	var models []RoomModel
	if err := query.Find(&models).Error; err != nil {
		return nil, mapDBError("list rooms", err)
	}

	rooms := make([]*room.Room, len(models))
	for i := range models {
		rm, err := toDomainRoom(&models[i], models[i].RoomType)
		if err != nil {
			return nil, err
		}
		rooms[i] = rm
	}
	return rooms, nil
}

// HasOverlap reports whether an active reservation on the room overlaps stay.
func (s *GormStore) HasOverlap(ctx context.Context, roomID uuid.UUID, stay reservation.Stay) (bool, error) {
	return hasOverlap(s.db.WithContext(ctx), roomID, stay)
}

// SeedRoom inserts a room and its room type, leaving existing rows alone. Rooms are provisioned out of
// band; this serves bootstrap data and tests.
func (s *GormStore) SeedRoom(ctx context.Context, rm *room.Room) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		roomType := toRoomTypeModel(rm.Type())
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&roomType).Error; err != nil {
			return mapDBError("seed room type", err)
		}
		if err := db.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(toRoomModel(rm)).Error; err != nil {
			return mapDBError("seed room", err)
		}
		return nil
	})
}

// gormTx implements reservation.Tx on an open transaction.
type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) LockReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var model ReservationModel
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Newf(apperror.KindReservationNotFound, "reservation %s not found", id)
		}
		return nil, mapDBError("lock reservation", err)
	}
	return toDomainReservation(&model)
}

func (t *gormTx) LockRoom(ctx context.Context, id uuid.UUID) (*room.Room, error) {
	var model RoomModel
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Newf(apperror.KindRoomNotFound, "room %s not found", id)
		}
		return nil, mapDBError("lock room", err)
	}

	// Room types are read-only here and must not be locked with the room.
	var roomType RoomTypeModel
	if err := t.db.WithContext(ctx).Where("id = ?", model.RoomTypeID).First(&roomType).Error; err != nil {
		return nil, mapDBError("load room type", err)
	}
	return toDomainRoom(&model, roomType)
}

func (t *gormTx) HasOverlap(ctx context.Context, roomID uuid.UUID, stay reservation.Stay) (bool, error) {
	return hasOverlap(t.db.WithContext(ctx), roomID, stay)
}

func (t *gormTx) CountHolders(ctx context.Context, roomID, exclude uuid.UUID, statuses ...reservation.Status) (int64, error) {
	var n int64
	if err := t.db.WithContext(ctx).Model(&ReservationModel{}).
		Where("room_id = ? AND id <> ? AND status IN ?", roomID, exclude, reservation.Strings(statuses)).
		Count(&n).Error; err != nil {
		return 0, mapDBError("count room holders", err)
	}
	return n, nil
}

func (t *gormTx) FindGuest(ctx context.Context, id uuid.UUID) (*guest.Guest, error) {
	var model GuestModel
	if err := t.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Newf(apperror.KindGuestNotFound, "guest %s not found", id)
		}
		return nil, mapDBError("find guest", err)
	}
	return toDomainGuest(&model), nil
}

func (t *gormTx) FindGuestByDocument(ctx context.Context, idDocument string) (*guest.Guest, error) {
	var models []GuestModel
	if err := t.db.WithContext(ctx).
		Where("id_document = ?", idDocument).
		Order("created_at").
		Limit(1).
		Find(&models).Error; err != nil {
		return nil, mapDBError("find guest by document", err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	return toDomainGuest(&models[0]), nil
}

func (t *gormTx) InsertGuest(ctx context.Context, g *guest.Guest) error {
	if err := t.db.WithContext(ctx).Create(toGuestModel(g)).Error; err != nil {
		return mapDBError("insert guest", err)
	}
	return nil
}

// InsertReservation stores r, drawing a new code whenever the current one is
// already taken. ON CONFLICT keeps the transaction usable after a collision.
func (t *gormTx) InsertReservation(ctx context.Context, r *reservation.Reservation) error {
	for attempt := 1; ; attempt++ {
		result := t.db.WithContext(ctx).
			Omit(clause.Associations).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
			Create(toReservationModel(r))
		if result.Error != nil {
			return mapDBError("insert reservation", result.Error)
		}
		if result.RowsAffected == 1 {
			return nil
		}
		if attempt == maxCodeAttempts {
			return fmt.Errorf("failed to insert reservation: no free code after %d attempts", attempt)
		}
		if err := r.RegenerateCode(); err != nil {
			return err
		}
	}
}

// UpdateReservationStatus writes status and version only, guarded by the
// version read under the row lock.
func (t *gormTx) UpdateReservationStatus(ctx context.Context, r *reservation.Reservation) error {
	expectedVersion := r.Version() - 1
	result := t.db.WithContext(ctx).
		Model(&ReservationModel{}).
		Where("id = ? AND version = ?", r.ID(), expectedVersion).
		Updates(map[string]interface{}{
			"status":     string(r.Status()),
			"version":    r.Version(),
			"updated_at": r.UpdatedAt(),
		})
	if result.Error != nil {
		return mapDBError("update reservation status", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.Newf(apperror.KindConcurrentModification,
			"reservation %s was modified by another transaction", r.ID())
	}
	return nil
}

func (t *gormTx) UpdateRoomStatus(ctx context.Context, rm *room.Room) error {
	result := t.db.WithContext(ctx).
		Model(&RoomModel{}).
		Where("id = ?", rm.ID()).
		Updates(map[string]interface{}{
			"status":     string(rm.Status()),
			"updated_at": rm.UpdatedAt(),
		})
	if result.Error != nil {
		return mapDBError("update room status", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.Newf(apperror.KindRoomNotFound, "room %s not found", rm.ID())
	}
	return nil
}

// hasOverlap applies the half-open interval test in SQL: an existing stay
// [check_in, check_out) conflicts with [in, out) iff check_in < out and
// in < check_out.
func hasOverlap(db *gorm.DB, roomID uuid.UUID, stay reservation.Stay) (bool, error) {
	var n int64
	if err := db.Model(&ReservationModel{}).
		Where("room_id = ?", roomID).
		Where("status IN ?", reservation.Strings(reservation.ActiveStatuses)).
		Where("check_in < ?::date AND ?::date < check_out",
			stay.CheckOut().Format(reservation.DateLayout),
			stay.CheckIn().Format(reservation.DateLayout)).
		Count(&n).Error; err != nil {
		return false, mapDBError("check overlap", err)
	}
	return n > 0, nil
}

// mapDBError translates driver and context failures into domain errors and
// wraps everything else with the failing operation.
func mapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgDeadlockDetected:
			return apperror.Newf(apperror.KindLockTimeout, "%s: %s", op, pgErr.Message)
		case pgCheckViolation:
			return apperror.Validation("%s: %s", op, pgErr.Message)
		case pgRaiseException:
			if strings.Contains(pgErr.Message, roomIDImmutableToken) {
				return apperror.New(apperror.KindRoomIDImmutable, pgErr.Message)
			}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.Newf(apperror.KindLockTimeout, "%s: deadline exceeded", op)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
