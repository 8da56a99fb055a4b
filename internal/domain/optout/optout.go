// Package optout holds the compliance registry of phone numbers that
// must never receive outbound messages. Presence is a hard gate,
// independent of all other state.
package optout

import (
	"context"
	"time"
)

type OptOut struct {
	PhoneNumber string
	CreatedAt   time.Time
}

type Repository interface {
	// Exists reports whether the phone number is in the opt-out registry.
	Exists(ctx context.Context, phone string) (bool, error)

	// Add records an opt-out. Idempotent: adding an existing number is a no-op.
	Add(ctx context.Context, phone string) error
}
