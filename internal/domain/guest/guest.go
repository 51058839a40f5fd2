package guest

import (
	"strings"
	"time"

	"github.com/frontdesk/service-reservation/internal/pkg/apperror"
	"github.com/google/uuid"
)

// Guest is a person who holds reservations. Owned independently of the
// reservation lifecycle.
type Guest struct {
	id         uuid.UUID
	fullName   string
	phone      string
	idDocument string
	createdAt  time.Time
}

// NewGuest creates a guest record with validated fields.
func NewGuest(fullName, phone, idDocument string) (*Guest, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, apperror.Validation("guest full name is required")
	}

	return &Guest{
		id:         uuid.New(),
		fullName:   fullName,
		phone:      strings.TrimSpace(phone),
		idDocument: strings.TrimSpace(idDocument),
		createdAt:  time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Guest from persistence data (no validation).
func Reconstruct(id uuid.UUID, fullName, phone, idDocument string, createdAt time.Time) *Guest {
	return &Guest{
		id:         id,
		fullName:   fullName,
		phone:      phone,
		idDocument: idDocument,
		createdAt:  createdAt,
	}
}

func (g *Guest) ID() uuid.UUID        { return g.id }
func (g *Guest) FullName() string     { return g.fullName }
func (g *Guest) Phone() string        { return g.phone }
func (g *Guest) IDDocument() string   { return g.idDocument }
func (g *Guest) CreatedAt() time.Time { return g.createdAt }
