// Package apperror defines the error taxonomy shared by the front-desk domain,
// its storage adapters and the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the cause of a refused operation so callers can branch on it.
type Kind string

const (
	KindInvalidTransition              Kind = "INVALID_TRANSITION"
	KindRoomUnavailable                Kind = "ROOM_UNAVAILABLE"
	KindRoomAlreadyOccupied            Kind = "ROOM_ALREADY_OCCUPIED"
	KindRoomNotAvailableForReservation Kind = "ROOM_NOT_AVAILABLE_FOR_RESERVATION"
	KindRoomNotReadyForCheckin         Kind = "ROOM_NOT_READY_FOR_CHECKIN"
	KindCannotReleaseOccupiedRoom      Kind = "CANNOT_RELEASE_OCCUPIED_ROOM"
	KindRoomNotOccupiedCannotCheckout  Kind = "ROOM_NOT_OCCUPIED_CANNOT_CHECKOUT"
	KindReservationNotFound            Kind = "RESERVATION_NOT_FOUND"
	KindRoomNotFound                   Kind = "ROOM_NOT_FOUND"
	KindGuestNotFound                  Kind = "GUEST_NOT_FOUND"
	KindRoomIDImmutable                Kind = "ROOM_ID_IMMUTABLE"
	KindDateRangeConflict              Kind = "DATE_RANGE_CONFLICT"
	KindValidation                     Kind = "VALIDATION_FAILED"
	KindLockTimeout                    Kind = "LOCK_TIMEOUT"
	KindConcurrentModification         Kind = "CONCURRENT_MODIFICATION"
	KindRateLimited                    Kind = "RATE_LIMITED"
)

// KindInternal is reported for errors outside the taxonomy (store unreachable, bugs).
const KindInternal Kind = "INTERNAL"

var statusByKind = map[Kind]int{
	KindInvalidTransition:              http.StatusConflict,
	KindRoomUnavailable:                http.StatusConflict,
	KindRoomAlreadyOccupied:            http.StatusConflict,
	KindRoomNotAvailableForReservation: http.StatusConflict,
	KindRoomNotReadyForCheckin:         http.StatusConflict,
	KindCannotReleaseOccupiedRoom:      http.StatusConflict,
	KindRoomNotOccupiedCannotCheckout:  http.StatusConflict,
	KindReservationNotFound:            http.StatusNotFound,
	KindRoomNotFound:                   http.StatusNotFound,
	KindGuestNotFound:                  http.StatusNotFound,
	KindRoomIDImmutable:                http.StatusUnprocessableEntity,
	KindDateRangeConflict:              http.StatusConflict,
	KindValidation:                     http.StatusBadRequest,
	KindLockTimeout:                    http.StatusServiceUnavailable,
	KindConcurrentModification:         http.StatusConflict,
	KindRateLimited:                    http.StatusTooManyRequests,
}

// Error is a structured domain error. Two errors match under errors.Is when
// their kinds are equal, so sentinels below can be compared against errors
// carrying a more specific message.
type Error struct {
	Kind    Kind
	Message string
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// HTTPStatus returns the status code the transport should answer with.
func (e *Error) HTTPStatus() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Retryable reports whether the caller may retry the same request unchanged.
func (e *Error) Retryable() bool {
	return e.Kind == KindLockTimeout || e.Kind == KindConcurrentModification
}

var (
	ErrInvalidTransition              = New(KindInvalidTransition, "requested status is not reachable from the current status")
	ErrRoomUnavailable                = New(KindRoomUnavailable, "room is out of service")
	ErrRoomAlreadyOccupied            = New(KindRoomAlreadyOccupied, "room is already occupied")
	ErrRoomNotAvailableForReservation = New(KindRoomNotAvailableForReservation, "room cannot be reserved in its current status")
	ErrRoomNotReadyForCheckin         = New(KindRoomNotReadyForCheckin, "room is not ready for check-in")
	ErrCannotReleaseOccupiedRoom      = New(KindCannotReleaseOccupiedRoom, "room is occupied and cannot be released")
	ErrRoomNotOccupiedCannotCheckout  = New(KindRoomNotOccupiedCannotCheckout, "room is not occupied, cannot check out")
	ErrReservationNotFound            = New(KindReservationNotFound, "reservation not found")
	ErrRoomNotFound                   = New(KindRoomNotFound, "room not found")
	ErrGuestNotFound                  = New(KindGuestNotFound, "guest not found")
	ErrRoomIDImmutable                = New(KindRoomIDImmutable, "room assignment of a reservation cannot be changed")
	ErrDateRangeConflict              = New(KindDateRangeConflict, "room already has a reservation overlapping these dates")
	ErrValidation                     = New(KindValidation, "validation failed")
	ErrLockTimeout                    = New(KindLockTimeout, "timed out waiting for a conflicting operation, retry")
	ErrConcurrentModification         = New(KindConcurrentModification, "record was modified concurrently, retry")
	ErrRateLimited                    = New(KindRateLimited, "too many requests")
)

// Validation returns a VALIDATION_FAILED error with the given message.
func Validation(format string, args ...interface{}) *Error {
	return Newf(KindValidation, format, args...)
}

// As extracts the domain error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal when err is not a domain error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps any error to a response status.
func HTTPStatus(err error) int {
	if e, ok := As(err); ok {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// IsRetryable reports whether err is a transient contention error.
func IsRetryable(err error) bool {
	if e, ok := As(err); ok {
		return e.Retryable()
	}
	return false
}
