package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ovenlight/sms-dispatch/internal/domain/conversation"
	"github.com/ovenlight/sms-dispatch/internal/domain/customer"
)

// ConversationResolver deterministically finds or creates the single
// conversation thread for a phone number.
type ConversationResolver interface {
	Resolve(ctx context.Context, phone string) (uuid.UUID, error)
}

type conversationResolver struct {
	conversations conversation.Repository
	customers     customer.Repository
}

// NewConversationResolver creates a resolver over the conversation
// store and the read-only customer profile lookup.
func NewConversationResolver(conversations conversation.Repository, customers customer.Repository) ConversationResolver {
	return &conversationResolver{
		conversations: conversations,
		customers:     customers,
	}
}

// Resolve looks up the conversation keyed by phone and lazily creates
// an active one when none exists, linking a known profile if the phone
// matches one. Two concurrent creates for the same new number can race;
// the unique constraint on customer_phone turns the loser's insert into
// ErrAlreadyExists, which is resolved by re-reading.
func (r *conversationResolver) Resolve(ctx context.Context, phone string) (uuid.UUID, error) {
	existing, err := r.conversations.GetByPhone(ctx, phone)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, conversation.ErrNotFound) {
		return uuid.Nil, fmt.Errorf("conversation lookup for %s: %w", phone, err)
	}

	var customerID *uuid.UUID
	profile, err := r.customers.GetByPhone(ctx, phone)
	switch {
	case err == nil:
		customerID = &profile.ID
	case errors.Is(err, customer.ErrNotFound):
		// No profile; the conversation stands alone.
	default:
		return uuid.Nil, fmt.Errorf("customer lookup for %s: %w", phone, err)
	}

	conv := conversation.New(phone, customerID)

	err = r.conversations.Create(ctx, conv)
	if err == nil {
		return conv.ID, nil
	}
	if !errors.Is(err, conversation.ErrAlreadyExists) {
		return uuid.Nil, fmt.Errorf("conversation create for %s: %w", phone, err)
	}

	// Lost the create race; the winner's row is the conversation.
	existing, err = r.conversations.GetByPhone(ctx, phone)
	if err != nil {
		return uuid.Nil, fmt.Errorf("conversation re-read for %s: %w", phone, err)
	}
	return existing.ID, nil
}
