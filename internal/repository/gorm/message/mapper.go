package messagegorm

import (
	"github.com/ovenlight/sms-dispatch/internal/domain/message"
)

// toDomain maps a GORM MessageModel to a domain-level Message.
func toDomain(m *MessageModel) *message.Message {
	return &message.Message{
		ID:               m.ID,
		ConversationID:   m.ConversationID,
		GatewaySID:       m.GatewaySID,
		Direction:        message.Direction(m.Direction),
		FromNumber:       m.FromNumber,
		ToNumber:         m.ToNumber,
		Body:             m.Body,
		Status:           message.Status(m.Status),
		ErrorCode:        m.ErrorCode,
		ErrorMessage:     m.ErrorMessage,
		StatusCheckCount: m.StatusCheckCount,
		BatchID:          m.BatchID,
		RawResponse:      m.RawResponse,
		SentAt:           m.SentAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// toDomainMany maps a slice of MessageModel to a slice of domain Messages.
func toDomainMany(models []MessageModel) []*message.Message {
	out := make([]*message.Message, len(models))
	for i := range models {
		out[i] = toDomain(&models[i])
	}
	return out
}

// fromDomain maps a domain-level Message to a GORM MessageModel.
func fromDomain(d *message.Message) *MessageModel {
	return &MessageModel{
		ID:               d.ID,
		ConversationID:   d.ConversationID,
		GatewaySID:       d.GatewaySID,
		Direction:        string(d.Direction),
		FromNumber:       d.FromNumber,
		ToNumber:         d.ToNumber,
		Body:             d.Body,
		Status:           string(d.Status),
		ErrorCode:        d.ErrorCode,
		ErrorMessage:     d.ErrorMessage,
		StatusCheckCount: d.StatusCheckCount,
		BatchID:          d.BatchID,
		RawResponse:      d.RawResponse,
		SentAt:           d.SentAt,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}
