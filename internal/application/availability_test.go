package application

import (
	"context"
	"testing"
	"time"

	"github.com/frontdesk/service-reservation/internal/domain/reservation"
	"github.com/frontdesk/service-reservation/internal/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	d, _ := time.Parse(reservation.DateLayout, s)
	return d
}

func TestIsRoomAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.book(t, f.standard.ID(), "2026-03-10", "2026-03-13", "")

	available, err := f.availability.IsRoomAvailable(ctx, f.standard.ID(), date("2026-03-12"), date("2026-03-14"))
	require.NoError(t, err)
	assert.False(t, available)

	available, err = f.availability.IsRoomAvailable(ctx, f.standard.ID(), date("2026-03-13"), date("2026-03-14"))
	require.NoError(t, err)
	assert.True(t, available)

	available, err = f.availability.IsRoomAvailable(ctx, f.suite.ID(), date("2026-03-10"), date("2026-03-13"))
	require.NoError(t, err)
	assert.True(t, available)

	f.transition(t, res.ID, reservation.StatusCancelled)
	available, err = f.availability.IsRoomAvailable(ctx, f.standard.ID(), date("2026-03-12"), date("2026-03-14"))
	require.NoError(t, err)
	assert.True(t, available)
}

func TestIsRoomAvailable_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.availability.IsRoomAvailable(ctx, f.standard.ID(), date("2026-03-14"), date("2026-03-12"))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = f.availability.IsRoomAvailable(ctx, uuid.New(), date("2026-03-12"), date("2026-03-14"))
	assert.ErrorIs(t, err, apperror.ErrRoomNotFound)
}

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t)
	f.book(t, f.standard.ID(), "2026-03-10", "2026-03-13", "")

	dto, err := f.availability.CheckAvailability(context.Background(), f.standard.ID(), "2026-03-11", "2026-03-12")
	require.NoError(t, err)
	assert.False(t, dto.Available)
	assert.Equal(t, "2026-03-11", dto.CheckIn)

	_, err = f.availability.CheckAvailability(context.Background(), f.standard.ID(), "", "2026-03-12")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}
