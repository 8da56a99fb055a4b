// Package conversation holds the thread-per-phone-number aggregate.
// The store enforces at most one conversation per customer_phone.
package conversation

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// Conversation is the logical message thread with one phone number.
// CustomerID is a weak reference to a known profile, set when a profile
// with the same phone exists at creation time.
type Conversation struct {
	ID            uuid.UUID
	CustomerPhone string
	CustomerID    *uuid.UUID
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// New constructs an active conversation for the given phone number.
func New(phone string, customerID *uuid.UUID) *Conversation {
	return &Conversation{
		ID:            uuid.New(),
		CustomerPhone: phone,
		CustomerID:    customerID,
		Status:        StatusActive,
		CreatedAt:     time.Now(),
	}
}
