package room

import (
	"testing"

	"github.com/frontdesk/service-reservation/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoom(t *testing.T) {
	rm, err := NewRoom("101", Type{Name: "Standard", BaseNightlyRateCents: 8900})
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, rm.Status())

	_, err = NewRoom("", Type{})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = NewRoom("102", Type{BaseNightlyRateCents: -1})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestStatus_IsManual(t *testing.T) {
	assert.True(t, StatusAvailable.IsManual())
	assert.True(t, StatusMaintenance.IsManual())
	assert.True(t, StatusOutOfService.IsManual())
	assert.False(t, StatusReserved.IsManual())
	assert.False(t, StatusOccupied.IsManual())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("out_of_service")
	require.NoError(t, err)
	assert.Equal(t, StatusOutOfService, s)

	_, err = ParseStatus("dirty")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}
