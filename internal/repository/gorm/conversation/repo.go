package conversationgorm

import (
	"context"
	"errors"

	"github.com/ovenlight/sms-dispatch/internal/db"
	"github.com/ovenlight/sms-dispatch/internal/domain/conversation"
	"gorm.io/gorm"
)

// Repository is a GORM-backed implementation of conversation.Repository.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a conversation repository using the given DB adapter.
func NewRepository(d db.DB) *Repository {
	return &Repository{
		db: d.Conn().(*gorm.DB),
	}
}

// GetByPhone returns the conversation keyed by customer_phone.
func (r *Repository) GetByPhone(ctx context.Context, phone string) (*conversation.Conversation, error) {
	var model ConversationModel

	err := r.db.WithContext(ctx).
		Where("customer_phone = ?", phone).
		First(&model).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, conversation.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return toDomain(&model), nil
}

// Create inserts a new conversation. A unique-constraint violation on
// customer_phone is reported as conversation.ErrAlreadyExists so the
// resolver can re-read instead of failing.
func (r *Repository) Create(ctx context.Context, c *conversation.Conversation) error {
	err := r.db.WithContext(ctx).Create(fromDomain(c)).Error

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conversation.ErrAlreadyExists
	}
	return err
}

// toDomain maps a GORM ConversationModel to a domain-level Conversation.
func toDomain(m *ConversationModel) *conversation.Conversation {
	return &conversation.Conversation{
		ID:            m.ID,
		CustomerPhone: m.CustomerPhone,
		CustomerID:    m.CustomerID,
		Status:        conversation.Status(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// fromDomain maps a domain-level Conversation to a GORM ConversationModel.
func fromDomain(c *conversation.Conversation) *ConversationModel {
	return &ConversationModel{
		ID:            c.ID,
		CustomerPhone: c.CustomerPhone,
		CustomerID:    c.CustomerID,
		Status:        string(c.Status),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// compile-time interface check
var _ conversation.Repository = (*Repository)(nil)
