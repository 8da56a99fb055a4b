// Package message holds the domain model and invariants for outbound
// and inbound SMS messages.
package message

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxBodyLength is the maximum allowed length for a message body.
const MaxBodyLength = 1600

// E164 is the phone number format required for every destination.
var E164 = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
)

// Status is the gateway-reported delivery lifecycle state.
type Status string

const (
	StatusQueued      Status = "queued"
	StatusAccepted    Status = "accepted"
	StatusSending     Status = "sending"
	StatusSent        Status = "sent"
	StatusDelivered   Status = "delivered"
	StatusUndelivered Status = "undelivered"
	StatusFailed      Status = "failed"
	StatusCanceled    Status = "canceled"
	StatusReceived    Status = "received"
)

// Terminal reports whether the gateway will never update this status
// again. Terminal messages are excluded from status polling.
func (s Status) Terminal() bool {
	switch s {
	case StatusDelivered, StatusUndelivered, StatusFailed, StatusCanceled, StatusReceived:
		return true
	default:
		return false
	}
}

var (
	// ErrEmptyRecipient is returned when no recipient phone number is provided.
	ErrEmptyRecipient = errors.New("recipient phone number is required")
	// ErrEmptyBody is returned when the message body is empty.
	ErrEmptyBody = errors.New("message body is required")
	// ErrBodyTooLong is returned when the message body exceeds MaxBodyLength.
	ErrBodyTooLong = errors.New("message body exceeds maximum length")
	// ErrInvalidPhone is returned when the recipient is not in E.164 format.
	ErrInvalidPhone = errors.New("recipient must be in E.164 format")
)

// Message is the core domain entity representing one SMS, outbound or
// inbound, within a conversation. Rows are created on every send attempt
// (including failed ones) and never deleted.
type Message struct {
	ID               uuid.UUID
	ConversationID   uuid.UUID
	GatewaySID       string
	Direction        Direction
	FromNumber       string
	ToNumber         string
	Body             string
	Status           Status
	ErrorCode        *int
	ErrorMessage     string
	StatusCheckCount int
	BatchID          *uuid.UUID
	RawResponse      string
	SentAt           *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewOutbound constructs a queued outbound Message and enforces basic
// domain rules. The recipient must already be validated as E.164 by the
// caller; this re-checks as a backstop.
func NewOutbound(conversationID uuid.UUID, from, to, body string) (*Message, error) {
	to = strings.TrimSpace(to)
	body = strings.TrimSpace(body)

	if to == "" {
		return nil, ErrEmptyRecipient
	}
	if !E164.MatchString(to) {
		return nil, ErrInvalidPhone
	}
	if body == "" {
		return nil, ErrEmptyBody
	}
	if len(body) > MaxBodyLength {
		return nil, ErrBodyTooLong
	}

	return &Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Direction:      DirectionOutbound,
		FromNumber:     strings.TrimSpace(from),
		ToNumber:       to,
		Body:           body,
		Status:         StatusQueued,
		CreatedAt:      time.Now(),
	}, nil
}

// MarkSent records the gateway-assigned SID and the status the gateway
// reported for the accepted send.
func (m *Message) MarkSent(sid string, status Status, raw string) {
	now := time.Now()
	m.SentAt = &now
	m.GatewaySID = sid
	m.Status = status
	m.RawResponse = raw
	if m.Status == "" {
		m.Status = StatusQueued
	}
}

// MarkFailed records a rejected send along with the carrier's error
// code and message, when present.
func (m *Message) MarkFailed(code *int, errMsg, raw string) {
	m.Status = StatusFailed
	m.ErrorCode = code
	m.ErrorMessage = errMsg
	m.RawResponse = raw
}

// ApplyStatus overwrites the delivery state with a freshly fetched
// gateway status. It returns true when the stored status changed.
func (m *Message) ApplyStatus(status Status, code *int, errMsg string) bool {
	changed := m.Status != status
	m.Status = status
	if code != nil {
		m.ErrorCode = code
	}
	if errMsg != "" {
		m.ErrorMessage = errMsg
	}
	return changed
}
