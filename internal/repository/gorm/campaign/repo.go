package campaigngorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ovenlight/sms-dispatch/internal/db"
	"github.com/ovenlight/sms-dispatch/internal/domain/campaign"
	"gorm.io/gorm"
)

// Repository is a GORM-backed implementation of campaign.Repository.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a campaign repository using the given DB adapter.
func NewRepository(d db.DB) *Repository {
	return &Repository{
		db: d.Conn().(*gorm.DB),
	}
}

// Create inserts a new draft campaign.
func (r *Repository) Create(ctx context.Context, c *campaign.Campaign) error {
	return r.db.WithContext(ctx).Create(fromDomain(c)).Error
}

// GetByID returns the campaign with the given id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	var model CampaignModel

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&model).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, campaign.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return toDomain(&model), nil
}

// MarkSent moves a draft campaign to sent in one guarded update. The
// status guard makes the terminal transition happen at most once.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time, sentCount int, gatewayResponse string) error {
	return r.terminalUpdate(ctx, id, map[string]interface{}{
		"status":           string(campaign.StatusSent),
		"sent_at":          sentAt,
		"sent_count":       sentCount,
		"gateway_response": gatewayResponse,
	})
}

// MarkFailed moves a draft campaign to failed in one guarded update.
// failed_count is fixed at 1: it counts dispatch attempts, not
// recipients, until product confirms the intended semantics.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	return r.terminalUpdate(ctx, id, map[string]interface{}{
		"status":        string(campaign.StatusFailed),
		"failed_count":  1,
		"error_message": errMsg,
	})
}

func (r *Repository) terminalUpdate(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&CampaignModel{}).
		Where("id = ? AND status = ?", id, string(campaign.StatusDraft)).
		Updates(updates)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("campaign %s is not in draft status", id)
	}
	return nil
}

// toDomain maps a GORM CampaignModel to a domain-level Campaign.
func toDomain(m *CampaignModel) *campaign.Campaign {
	return &campaign.Campaign{
		ID:              m.ID,
		Message:         m.Message,
		Recipients:      []string(m.Recipients),
		Status:          campaign.Status(m.Status),
		SentAt:          m.SentAt,
		SentCount:       m.SentCount,
		FailedCount:     m.FailedCount,
		GatewayResponse: m.GatewayResponse,
		ErrorMessage:    m.ErrorMessage,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// fromDomain maps a domain-level Campaign to a GORM CampaignModel.
func fromDomain(c *campaign.Campaign) *CampaignModel {
	return &CampaignModel{
		ID:              c.ID,
		Message:         c.Message,
		Recipients:      c.Recipients,
		Status:          string(c.Status),
		SentAt:          c.SentAt,
		SentCount:       c.SentCount,
		FailedCount:     c.FailedCount,
		GatewayResponse: c.GatewayResponse,
		ErrorMessage:    c.ErrorMessage,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// compile-time interface check
var _ campaign.Repository = (*Repository)(nil)
