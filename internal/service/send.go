package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ovenlight/sms-dispatch/internal/apperrors"
	"github.com/ovenlight/sms-dispatch/internal/domain/message"
	"github.com/ovenlight/sms-dispatch/internal/gateway"
)

// SendService orchestrates a single outbound send: validation,
// compliance gate, conversation resolution, the gateway call, and
// persisting the outcome.
type SendService interface {
	// Send transmits one message. fromHint overrides the configured
	// sender number when non-empty. At most one Message row is written
	// per invocation, failed or succeeded.
	Send(ctx context.Context, to, body, fromHint string) (*message.Message, error)

	// ListDispatched returns a page of gateway-accepted messages for audit.
	ListDispatched(ctx context.Context, page, limit int) ([]*message.Message, int64, error)
}

type sendService struct {
	messages    message.Repository
	gateway     gateway.Client
	compliance  ComplianceFilter
	resolver    ConversationResolver
	defaultFrom string
}

// NewSendService creates a send orchestrator with the given dependencies.
func NewSendService(
	messages message.Repository,
	gw gateway.Client,
	compliance ComplianceFilter,
	resolver ConversationResolver,
	defaultFrom string,
) SendService {
	return &sendService{
		messages:    messages,
		gateway:     gw,
		compliance:  compliance,
		resolver:    resolver,
		defaultFrom: defaultFrom,
	}
}

// Send applies the orchestration gates in order, short-circuiting on the
// first failure. Validation and compliance run before any side effect;
// a blocked or malformed send writes nothing and calls no gateway.
func (s *sendService) Send(ctx context.Context, to, body, fromHint string) (*message.Message, error) {
	to = strings.TrimSpace(to)
	body = strings.TrimSpace(body)

	if to == "" || body == "" {
		return nil, apperrors.NewInvalidRequest("to and body are required")
	}
	if !message.E164.MatchString(to) {
		return nil, apperrors.NewInvalidRequest("to must be in E.164 format, e.g. +15551234567")
	}

	blocked, err := s.compliance.IsBlocked(ctx, to)
	if err != nil {
		return nil, apperrors.NewPersistence("opt-out check", err)
	}
	if blocked {
		return nil, apperrors.NewCompliance(to)
	}

	// The conversation may be newly created here and is kept even if the
	// gateway call below fails.
	conversationID, err := s.resolver.Resolve(ctx, to)
	if err != nil {
		return nil, apperrors.NewPersistence("conversation resolve", err)
	}

	from := strings.TrimSpace(fromHint)
	if from == "" {
		from = s.defaultFrom
	}

	msg, err := message.NewOutbound(conversationID, from, to, body)
	if err != nil {
		return nil, apperrors.NewInvalidRequest(err.Error())
	}

	result, sendErr := s.gateway.Send(ctx, to, from, body)
	if sendErr != nil {
		// Persist the failed attempt for audit, then surface the error.
		var gerr *apperrors.Gateway
		if errors.As(sendErr, &gerr) {
			var code *int
			if gerr.Code != 0 {
				c := gerr.Code
				code = &c
			}
			msg.MarkFailed(code, gerr.Message, gerr.Message)
		} else {
			msg.MarkFailed(nil, sendErr.Error(), "")
		}

		if saveErr := s.messages.Save(ctx, msg); saveErr != nil {
			log.Printf("[Send] Failed to persist failed message %s: %v", msg.ID, saveErr)
		}

		return nil, fmt.Errorf("gateway send to %s: %w", to, sendErr)
	}

	msg.MarkSent(result.SID, message.Status(result.Status), result.Raw)
	if result.From != "" {
		msg.FromNumber = result.From
	}
	if result.To != "" {
		msg.ToNumber = result.To
	}

	if err := s.messages.Save(ctx, msg); err != nil {
		return nil, apperrors.NewPersistence("message save", err)
	}

	return msg, nil
}

func (s *sendService) ListDispatched(ctx context.Context, page, limit int) ([]*message.Message, int64, error) {
	return s.messages.ListDispatched(ctx, page, limit)
}
