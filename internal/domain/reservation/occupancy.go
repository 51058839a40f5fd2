package reservation

import (
	"github.com/frontdesk/service-reservation/internal/domain/room"
	"github.com/frontdesk/service-reservation/internal/pkg/apperror"
)

// occupancyRule is the room side effect a transition target mandates.
type occupancyRule struct {
	// rejections maps a room status to the error kind that refuses the
	// transition. Statuses not listed satisfy the precondition.
	rejections map[room.Status]apperror.Kind
	// result computes the room status after the transition.
	result func(current room.Status) room.Status
}

func always(s room.Status) func(room.Status) room.Status {
	return func(room.Status) room.Status { return s }
}

func releaseReserved(current room.Status) room.Status {
	if current == room.StatusReserved {
		return room.StatusAvailable
	}
	return current
}

var occupancyRules = map[Status]occupancyRule{
	StatusConfirmed: {
		rejections: map[room.Status]apperror.Kind{
			room.StatusOccupied:     apperror.KindRoomAlreadyOccupied,
			room.StatusMaintenance:  apperror.KindRoomNotAvailableForReservation,
			room.StatusOutOfService: apperror.KindRoomNotAvailableForReservation,
		},
		result: always(room.StatusReserved),
	},
	StatusCheckedIn: {
		rejections: map[room.Status]apperror.Kind{
			room.StatusOccupied:     apperror.KindRoomAlreadyOccupied,
			room.StatusMaintenance:  apperror.KindRoomNotReadyForCheckin,
			room.StatusOutOfService: apperror.KindRoomNotReadyForCheckin,
		},
		result: always(room.StatusOccupied),
	},
	StatusCheckedOut: {
		rejections: map[room.Status]apperror.Kind{
			room.StatusAvailable:    apperror.KindRoomNotOccupiedCannotCheckout,
			room.StatusReserved:     apperror.KindRoomNotOccupiedCannotCheckout,
			room.StatusMaintenance:  apperror.KindRoomNotOccupiedCannotCheckout,
			room.StatusOutOfService: apperror.KindRoomNotOccupiedCannotCheckout,
		},
		result: always(room.StatusMaintenance),
	},
	StatusCancelled: {
		rejections: map[room.Status]apperror.Kind{
			room.StatusOccupied: apperror.KindCannotReleaseOccupiedRoom,
		},
		result: releaseReserved,
	},
	StatusNoShow: {
		rejections: map[room.Status]apperror.Kind{
			room.StatusOccupied: apperror.KindCannotReleaseOccupiedRoom,
		},
		result: releaseReserved,
	},
}

// RoomEffect returns the room status a transition to target produces from
// the room's current status, or the typed error refusing it. Targets with no
// rule (pending) leave the room unchanged.
func RoomEffect(target Status, current room.Status) (room.Status, error) {
	rule, ok := occupancyRules[target]
	if !ok {
		return current, nil
	}
	if kind, refused := rule.rejections[current]; refused {
		return current, apperror.Newf(kind, "room is %s, cannot move reservation to %s", current, target)
	}
	return rule.result(current), nil
}

// ReleasesRoom returns true for targets that give up the reservation's claim
// on its room.
func (s Status) ReleasesRoom() bool {
	return s == StatusCancelled || s == StatusNoShow
}
