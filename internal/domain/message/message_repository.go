package message

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no message matches the lookup.
var ErrNotFound = errors.New("message not found")

// Repository defines the persistence operations for Message aggregates.
//
// It is implemented by infrastructure layers (e.g. GORM) while the
// domain and service layers depend only on this interface.
type Repository interface {
	// Save persists a new message row.
	Save(ctx context.Context, m *Message) error

	// GetByID returns the message with the given internal id, or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Message, error)

	// GetByGatewaySID returns the message with the given gateway SID, or ErrNotFound.
	GetByGatewaySID(ctx context.Context, sid string) (*Message, error)

	// ListByBatchID returns all messages linked to a campaign batch.
	ListByBatchID(ctx context.Context, batchID uuid.UUID) ([]*Message, error)

	// ListAwaitingStatus returns up to limit messages that have a gateway
	// SID, are not in a terminal status, and are below the check ceiling.
	ListAwaitingStatus(ctx context.Context, limit, maxChecks int) ([]*Message, error)

	// RecordStatusCheck persists the message's current status and error
	// fields and atomically increments its status check counter, whether
	// or not the status changed.
	RecordStatusCheck(ctx context.Context, m *Message) error

	// ListDispatched returns a paginated list of messages that were
	// accepted by the gateway, newest first, plus the total count.
	ListDispatched(ctx context.Context, page, limit int) ([]*Message, int64, error)
}
