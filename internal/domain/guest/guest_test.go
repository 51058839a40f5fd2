package guest

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/frontdesk/service-reservation/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGuest(t *testing.T) {
	name := gofakeit.Name()
	phone := gofakeit.Phone()

	g, err := NewGuest("  "+name+" ", phone, " P1234567 ")
	require.NoError(t, err)
	assert.Equal(t, name, g.FullName())
	assert.Equal(t, phone, g.Phone())
	assert.Equal(t, "P1234567", g.IDDocument())
	assert.False(t, g.CreatedAt().IsZero())
}

func TestNewGuest_RequiresName(t *testing.T) {
	_, err := NewGuest("   ", gofakeit.Phone(), "")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}
