package messagegorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ovenlight/sms-dispatch/internal/db"
	"github.com/ovenlight/sms-dispatch/internal/domain/message"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// nonTerminalStatuses is the explicit polling-eligibility set. It must
// stay in sync with message.Status.Terminal.
var nonTerminalStatuses = []string{
	string(message.StatusQueued),
	string(message.StatusAccepted),
	string(message.StatusSending),
	string(message.StatusSent),
}

// Repository is a GORM-backed implementation of the message.Repository interface.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a message repository using the given DB adapter.
func NewRepository(d db.DB) *Repository {
	return &Repository{
		db: d.Conn().(*gorm.DB),
	}
}

// Save inserts a new message record into the database.
func (r *Repository) Save(ctx context.Context, m *message.Message) error {
	dbModel := fromDomain(m)
	return r.db.WithContext(ctx).Create(dbModel).Error
}

// GetByID returns the message with the given internal id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*message.Message, error) {
	var model MessageModel

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&model).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, message.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return toDomain(&model), nil
}

// GetByGatewaySID returns the message carrying the given gateway SID.
func (r *Repository) GetByGatewaySID(ctx context.Context, sid string) (*message.Message, error) {
	var model MessageModel

	err := r.db.WithContext(ctx).
		Where("gateway_sid = ?", sid).
		First(&model).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, message.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return toDomain(&model), nil
}

// ListByBatchID returns all messages linked to a campaign batch,
// oldest first.
func (r *Repository) ListByBatchID(ctx context.Context, batchID uuid.UUID) ([]*message.Message, error) {
	var models []MessageModel

	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&models).Error

	if err != nil {
		return nil, err
	}

	return toDomainMany(models), nil
}

// ListAwaitingStatus returns up to limit messages eligible for a status
// check, using SELECT ... FOR UPDATE SKIP LOCKED to avoid double-polling
// when two reconcile passes overlap.
func (r *Repository) ListAwaitingStatus(ctx context.Context, limit, maxChecks int) ([]*message.Message, error) {
	var models []MessageModel

	err := r.db.WithContext(ctx).
		Where("gateway_sid <> ''").
		Where("status IN ?", nonTerminalStatuses).
		Where("status_check_count < ?", maxChecks).
		Order("created_at ASC").
		Limit(limit).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Find(&models).Error

	if err != nil {
		return nil, err
	}

	return toDomainMany(models), nil
}

// RecordStatusCheck persists the message's status and error fields and
// bumps the check counter in the same update, so an unchanged status
// still moves the message toward its polling ceiling.
func (r *Repository) RecordStatusCheck(ctx context.Context, m *message.Message) error {
	updates := map[string]interface{}{
		"status":             string(m.Status),
		"error_code":         m.ErrorCode,
		"error_message":      m.ErrorMessage,
		"raw_response":       m.RawResponse,
		"status_check_count": gorm.Expr("status_check_count + 1"),
	}

	return r.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("id = ?", m.ID).
		Updates(updates).Error
}

// ListDispatched returns a paginated list of gateway-accepted messages
// and the total count, newest first.
func (r *Repository) ListDispatched(ctx context.Context, page, limit int) ([]*message.Message, int64, error) {
	var models []MessageModel
	var total int64

	query := r.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("gateway_sid <> ''")

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, err
	}

	return toDomainMany(models), total, nil
}

// compile-time interface check
var _ message.Repository = (*Repository)(nil)
