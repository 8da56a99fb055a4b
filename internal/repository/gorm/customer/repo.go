package customergorm

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ovenlight/sms-dispatch/internal/db"
	"github.com/ovenlight/sms-dispatch/internal/domain/customer"
	"gorm.io/gorm"
)

// CustomerModel is the GORM persistence model for customer profiles.
// This service only reads the table; profile ownership lives elsewhere.
type CustomerModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Phone     string    `gorm:"size:20;not null;uniqueIndex"`
	FirstName string    `gorm:"size:100"`
	LastName  string    `gorm:"size:100"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName overrides the default table name used by GORM.
func (CustomerModel) TableName() string {
	return "customers"
}

// Repository is a GORM-backed implementation of customer.Repository.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a customer repository using the given DB adapter.
func NewRepository(d db.DB) *Repository {
	return &Repository{
		db: d.Conn().(*gorm.DB),
	}
}

// GetByPhone returns the profile with the given phone number.
func (r *Repository) GetByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	var model CustomerModel

	err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&model).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, customer.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &customer.Customer{
		ID:        model.ID,
		Phone:     model.Phone,
		FirstName: model.FirstName,
		LastName:  model.LastName,
		CreatedAt: model.CreatedAt,
	}, nil
}

// compile-time interface check
var _ customer.Repository = (*Repository)(nil)
