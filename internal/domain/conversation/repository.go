package conversation

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no conversation exists for a phone number.
	ErrNotFound = errors.New("conversation not found")
	// ErrAlreadyExists is returned when a create hits the unique phone
	// constraint. Callers must re-read instead of failing.
	ErrAlreadyExists = errors.New("conversation already exists for phone")
)

// Repository defines the persistence operations for Conversation aggregates.
type Repository interface {
	// GetByPhone returns the conversation keyed by customer_phone, or ErrNotFound.
	GetByPhone(ctx context.Context, phone string) (*Conversation, error)

	// Create inserts a new conversation. Returns ErrAlreadyExists when a
	// concurrent create for the same phone won the race.
	Create(ctx context.Context, c *Conversation) error
}
