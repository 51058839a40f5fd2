package application

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/frontdesk/service-reservation/internal/domain/reservation"
	"github.com/frontdesk/service-reservation/internal/domain/room"
	"github.com/frontdesk/service-reservation/internal/pkg/apperror"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoomService handles room listings and the manual maintenance action.
type RoomService struct {
	store     reservation.Store
	publisher EventPublisher
	cache     RoomCache
	logger    *zap.Logger
}

// NewRoomService creates a new RoomService. publisher and cache may be nil.
func NewRoomService(store reservation.Store, publisher EventPublisher, cache RoomCache, logger *zap.Logger) *RoomService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if cache == nil {
		cache = nopCache{}
	}
	return &RoomService{
		store:     store,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// ListRooms returns rooms ordered by number, optionally filtered by status.
func (s *RoomService) ListRooms(ctx context.Context, status string) ([]RoomDTO, error) {
	var filter *room.Status
	key := "all"
	if status != "" {
		parsed, err := room.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter = &parsed
		key = status
	}

	// The generation is read before the store so that an invalidation racing
	// with this read leaves the entry under a generation nobody reads again.
	gen, cacheable := s.cache.Generation(ctx)
	key = roomCacheKey(gen, key)
	if cacheable {
		if data, ok := s.cache.Get(ctx, key); ok {
			var cached []RoomDTO
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
			s.logger.Warn("discarding undecodable room cache entry", zap.String("key", key))
		}
	}

	rooms, err := s.store.ListRooms(ctx, filter)
	if err != nil {
		return nil, err
	}

	dtos := make([]RoomDTO, len(rooms))
	for i, rm := range rooms {
		dtos[i] = toRoomDTO(rm)
	}

	if cacheable {
		if data, err := json.Marshal(dtos); err == nil {
			s.cache.Set(ctx, key, data)
		}
	}
	return dtos, nil
}

func roomCacheKey(gen int64, listing string) string {
	return strconv.FormatInt(gen, 10) + ":" + listing
}

// GetRoom retrieves a single room, bypassing the cache.
func (s *RoomService) GetRoom(ctx context.Context, id uuid.UUID) (*RoomDTO, error) {
	rm, err := s.store.FindRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toRoomDTO(rm)
	return &dto, nil
}

// SetRoomStatus is the manual maintenance action. Only available,
// maintenance and out_of_service may be set by hand, and never over a room
// that a confirmed or checked-in reservation holds. Returning a room to
// service while a confirmed reservation holds it makes it reserved instead
// of available.
func (s *RoomService) SetRoomStatus(ctx context.Context, id uuid.UUID, status, cause string) (*RoomDTO, error) {
	target, err := room.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	if !target.IsManual() {
		return nil, apperror.Validation("room status %q is managed by reservations and cannot be set by hand", target)
	}

	var change roomChange
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx reservation.Tx) error {
		rm, err := tx.LockRoom(ctx, id)
		if err != nil {
			return err
		}
		change = roomChange{room: rm, from: rm.Status(), to: rm.Status()}
		if rm.Status() == target {
			return nil
		}

		switch {
		case rm.Status() == room.StatusOccupied:
			return apperror.Newf(apperror.KindRoomAlreadyOccupied, "room %s is occupied", rm.Number())
		case target == room.StatusAvailable && rm.Status() == room.StatusReserved:
			return apperror.Newf(apperror.KindRoomAlreadyOccupied,
				"room %s is reserved; cancel its reservation to release it", rm.Number())
		}
		resolved := target
		if target == room.StatusAvailable {
			// A room back in service goes to whoever still holds it.
			confirmed, err := tx.CountHolders(ctx, rm.ID(), uuid.Nil, reservation.StatusConfirmed)
			if err != nil {
				return err
			}
			if confirmed > 0 {
				resolved = room.StatusReserved
			}
		} else {
			holders, err := tx.CountHolders(ctx, rm.ID(), uuid.Nil,
				reservation.StatusConfirmed, reservation.StatusCheckedIn)
			if err != nil {
				return err
			}
			if holders > 0 {
				return apperror.Newf(apperror.KindRoomAlreadyOccupied,
					"room %s is held by %d active reservation(s)", rm.Number(), holders)
			}
		}
		if rm.Status() == resolved {
			return nil
		}

		rm.ChangeStatus(resolved)
		if err := tx.UpdateRoomStatus(ctx, rm); err != nil {
			return err
		}
		change.to = resolved
		return nil
	})
	if err != nil {
		s.logger.Info("room status change refused",
			zap.String("room_id", id.String()),
			zap.String("target", string(target)),
			zap.String("cause", cause),
			zap.String("kind", string(apperror.KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}

	if change.changed() {
		s.logger.Info("room status changed",
			zap.String("room_id", id.String()),
			zap.String("from", string(change.from)),
			zap.String("to", string(change.to)),
			zap.String("cause", cause),
		)
		publishRoomChanged(ctx, s.publisher, s.logger, change, cause)
		s.cache.Invalidate(ctx)
	}

	dto := toRoomDTO(change.room)
	return &dto, nil
}
