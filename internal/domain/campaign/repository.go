package campaign

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no campaign matches the id.
var ErrNotFound = errors.New("campaign not found")

// Repository defines the persistence operations for Campaign aggregates.
// MarkSent and MarkFailed are single atomic row updates guarded on the
// draft status, so a campaign transitions to a terminal status at most once.
type Repository interface {
	// Create inserts a new draft campaign.
	Create(ctx context.Context, c *Campaign) error

	// GetByID returns the campaign with the given id, or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Campaign, error)

	// MarkSent atomically moves a draft campaign to sent, stamping
	// sent_at, sent_count and the raw gateway response.
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time, sentCount int, gatewayResponse string) error

	// MarkFailed atomically moves a draft campaign to failed, stamping
	// error_message. The failed counter records dispatch attempts, not
	// recipients, until product confirms the intended semantics; it is
	// always written as 1.
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}
