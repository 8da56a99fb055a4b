// Package gateway exposes the contract with the third-party carrier
// used to transmit SMS messages and report delivery status.
package gateway

import (
	"context"
	"time"
)

// SendResult is the carrier's answer to an accepted single send.
type SendResult struct {
	SID    string
	Status string
	From   string
	To     string
	Body   string
	Raw    string
}

// StatusResult is the carrier's current view of one message.
type StatusResult struct {
	SID          string
	Status       string
	ErrorCode    *int
	ErrorMessage string
	DateSent     *time.Time
	DateUpdated  *time.Time
	Price        string
	Raw          string
}

// BatchResult is the carrier's answer to an accepted bulk send.
type BatchResult struct {
	Accepted int
	Raw      string
}

// Client is the contract for a carrier implementation.
//
// Expected carrier rejections (non-2xx responses) are returned as
// *apperrors.Gateway carrying the carrier's code and message; plain
// errors are reserved for network-level failures. No method retries
// internally; retry policy belongs to callers.
type Client interface {
	// Send transmits a single message. The destination must already be
	// validated as E.164 by the caller.
	Send(ctx context.Context, to, from, body string) (*SendResult, error)

	// FetchStatus queries the delivery status of a message by its
	// gateway-assigned SID.
	FetchStatus(ctx context.Context, sid string) (*StatusResult, error)

	// SendBatch transmits one body to the full recipient list in a
	// single carrier call. senderID names the sending device or service.
	SendBatch(ctx context.Context, recipients []string, body, senderID string) (*BatchResult, error)

	// Health checks whether the carrier API is reachable and usable.
	Health(ctx context.Context) error
}
