package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ovenlight/sms-dispatch/internal/apperrors"
	"github.com/ovenlight/sms-dispatch/internal/domain/campaign"
	"github.com/ovenlight/sms-dispatch/internal/gateway"
)

// CampaignService dispatches stored campaigns as a single batch send.
type CampaignService interface {
	// Dispatch expands the campaign into one gateway batch call and
	// records exactly one terminal status transition, sent or failed.
	Dispatch(ctx context.Context, campaignID uuid.UUID, senderID string) (*gateway.BatchResult, error)
}

type campaignService struct {
	campaigns campaign.Repository
	gateway   gateway.Client
}

// NewCampaignService creates a campaign dispatcher.
func NewCampaignService(campaigns campaign.Repository, gw gateway.Client) CampaignService {
	return &campaignService{
		campaigns: campaigns,
		gateway:   gw,
	}
}

func (s *campaignService) Dispatch(ctx context.Context, campaignID uuid.UUID, senderID string) (*gateway.BatchResult, error) {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if errors.Is(err, campaign.ErrNotFound) {
		return nil, apperrors.NewNotFound("campaign", campaignID.String())
	}
	if err != nil {
		return nil, apperrors.NewPersistence("campaign fetch", err)
	}

	if c.Status != campaign.StatusDraft {
		return nil, apperrors.NewInvalidRequest(fmt.Sprintf("campaign is already %s", c.Status))
	}

	if len(c.Recipients) == 0 {
		// Still a dispatch attempt: the campaign must not stay in draft.
		if markErr := s.campaigns.MarkFailed(ctx, c.ID, "campaign has no recipients"); markErr != nil {
			log.Printf("[Campaign] Failed to mark campaign %s failed: %v", c.ID, markErr)
		}
		return nil, apperrors.NewInvalidRequest("campaign has no recipients")
	}

	result, sendErr := s.gateway.SendBatch(ctx, c.Recipients, c.Message, senderID)
	if sendErr != nil {
		// The batch call is all-or-nothing; record the failure and leave
		// re-invocation to the operator.
		if markErr := s.campaigns.MarkFailed(ctx, c.ID, sendErr.Error()); markErr != nil {
			log.Printf("[Campaign] Failed to mark campaign %s failed: %v", c.ID, markErr)
		}
		return nil, fmt.Errorf("campaign %s batch send: %w", c.ID, sendErr)
	}

	if err := s.campaigns.MarkSent(ctx, c.ID, time.Now(), len(c.Recipients), result.Raw); err != nil {
		return nil, apperrors.NewPersistence("campaign mark sent", err)
	}

	log.Printf("[Campaign] Dispatched %s to %d recipients.", c.ID, len(c.Recipients))
	return result, nil
}
