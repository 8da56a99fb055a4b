package response

import (
	"time"

	domain "github.com/ovenlight/sms-dispatch/internal/domain/message"
	"github.com/ovenlight/sms-dispatch/internal/service"
)

type WelcomePayload struct {
	Message string `json:"message"`
}

type HealthPayload struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// SendMessagePayload answers a successful direct send.
type SendMessagePayload struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	GatewaySID string `json:"gatewaySid"`
}

// StatusLookupPayload answers a selector-based status lookup.
type StatusLookupPayload struct {
	Success  bool                  `json:"success"`
	Message  string                `json:"message"`
	Statuses []service.StatusEntry `json:"statuses"`
}

// ReconcilePayload answers one reconcile pass.
type ReconcilePayload struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Checked int                   `json:"checked"`
	Updated int                   `json:"updated"`
	Results []service.CheckResult `json:"results"`
}

type SchedulerControlPayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MessageDTO is a public-facing representation of a message used in
// API responses. It decouples the wire format from the domain entity
// and plays nicely with Swagger.
type MessageDTO struct {
	ID               string     `json:"id"`
	ConversationID   string     `json:"conversationId"`
	GatewaySID       string     `json:"gatewaySid,omitempty"`
	Direction        string     `json:"direction"`
	From             string     `json:"from,omitempty"`
	To               string     `json:"to"`
	Body             string     `json:"body"`
	Status           string     `json:"status"`
	ErrorCode        *int       `json:"errorCode,omitempty"`
	ErrorMessage     string     `json:"errorMessage,omitempty"`
	StatusCheckCount int        `json:"statusCheckCount"`
	BatchID          string     `json:"batchId,omitempty"`
	SentAt           *time.Time `json:"sentAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// MessagesPayload is a paginated message listing.
type MessagesPayload struct {
	Success bool         `json:"success"`
	Items   []MessageDTO `json:"items"`
	Total   int64        `json:"total"`
	Page    int          `json:"page"`
	Limit   int          `json:"limit"`
}

// FromDomainMessage converts one domain message into its DTO.
func FromDomainMessage(m *domain.Message) MessageDTO {
	dto := MessageDTO{
		ID:               m.ID.String(),
		ConversationID:   m.ConversationID.String(),
		GatewaySID:       m.GatewaySID,
		Direction:        string(m.Direction),
		From:             m.FromNumber,
		To:               m.ToNumber,
		Body:             m.Body,
		Status:           string(m.Status),
		ErrorCode:        m.ErrorCode,
		ErrorMessage:     m.ErrorMessage,
		StatusCheckCount: m.StatusCheckCount,
		SentAt:           m.SentAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.BatchID != nil {
		dto.BatchID = m.BatchID.String()
	}
	return dto
}

// FromDomainMessages converts domain messages into DTOs for HTTP responses.
func FromDomainMessages(msgs []*domain.Message) []MessageDTO {
	out := make([]MessageDTO, len(msgs))
	for i, m := range msgs {
		out[i] = FromDomainMessage(m)
	}
	return out
}
