package optoutgorm

import (
	"context"
	"time"

	"github.com/ovenlight/sms-dispatch/internal/db"
	"github.com/ovenlight/sms-dispatch/internal/domain/optout"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OptOutModel is the GORM persistence model for the opt-out registry.
type OptOutModel struct {
	PhoneNumber string    `gorm:"size:20;primaryKey"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName overrides the default table name used by GORM.
func (OptOutModel) TableName() string {
	return "opt_outs"
}

// Repository is a GORM-backed implementation of optout.Repository.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an opt-out repository using the given DB adapter.
func NewRepository(d db.DB) *Repository {
	return &Repository{
		db: d.Conn().(*gorm.DB),
	}
}

// Exists reports whether the phone number is in the registry.
func (r *Repository) Exists(ctx context.Context, phone string) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&OptOutModel{}).
		Where("phone_number = ?", phone).
		Count(&count).Error

	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Add records an opt-out; inserting an existing number is a no-op.
func (r *Repository) Add(ctx context.Context, phone string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&OptOutModel{PhoneNumber: phone, CreatedAt: time.Now()}).Error
}

// compile-time interface check
var _ optout.Repository = (*Repository)(nil)
