package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByKind(t *testing.T) {
	err := Newf(KindRoomNotReadyForCheckin, "room 101 is in %s", "maintenance")

	assert.ErrorIs(t, err, ErrRoomNotReadyForCheckin)
	assert.NotErrorIs(t, err, ErrRoomAlreadyOccupied)

	wrapped := fmt.Errorf("transition: %w", err)
	assert.ErrorIs(t, wrapped, ErrRoomNotReadyForCheckin)
	assert.Equal(t, KindRoomNotReadyForCheckin, KindOf(wrapped))
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("connection refused")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrInvalidTransition, http.StatusConflict},
		{ErrReservationNotFound, http.StatusNotFound},
		{ErrRoomNotFound, http.StatusNotFound},
		{ErrRoomIDImmutable, http.StatusUnprocessableEntity},
		{Validation("check_in must precede check_out"), http.StatusBadRequest},
		{ErrLockTimeout, http.StatusServiceUnavailable},
		{ErrRateLimited, http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(string(KindOf(tt.err)), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("lock room: %w", ErrLockTimeout)))
	assert.True(t, IsRetryable(ErrConcurrentModification))
	assert.False(t, IsRetryable(ErrDateRangeConflict))
	assert.False(t, IsRetryable(errors.New("io")))
}
