// Package campaign holds the batch-send aggregate: one stored message
// body plus a fixed recipient list, dispatched as a single gateway call.
package campaign

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft  Status = "draft"
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// Campaign owns its recipient list at creation time. A dispatch attempt
// moves it to exactly one terminal status; it is never left in draft
// after a dispatch call returns.
type Campaign struct {
	ID              uuid.UUID
	Message         string
	Recipients      []string
	Status          Status
	SentAt          *time.Time
	SentCount       int
	FailedCount     int
	GatewayResponse string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// New constructs a draft campaign with the given body and recipients.
func New(message string, recipients []string) *Campaign {
	return &Campaign{
		ID:         uuid.New(),
		Message:    message,
		Recipients: recipients,
		Status:     StatusDraft,
		CreatedAt:  time.Now(),
	}
}
