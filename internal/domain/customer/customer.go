// Package customer exposes the profile records consulted, never owned,
// by this service. Profiles are looked up by phone to link new
// conversations to a known customer.
package customer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no profile matches the phone number.
var ErrNotFound = errors.New("customer not found")

type Customer struct {
	ID        uuid.UUID
	Phone     string
	FirstName string
	LastName  string
	CreatedAt time.Time
}

// Repository is the read-only profile lookup used by the conversation
// resolver.
type Repository interface {
	// GetByPhone returns the profile with the given phone, or ErrNotFound.
	GetByPhone(ctx context.Context, phone string) (*Customer, error)
}
