package conversationgorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConversationModel is the GORM persistence model for conversations.
// The unique index on customer_phone is the correctness backstop for
// the find-or-create race in the resolver.
type ConversationModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerPhone string     `gorm:"size:20;not null;uniqueIndex"`
	CustomerID    *uuid.UUID `gorm:"type:uuid;index"`
	Status        string     `gorm:"size:10;not null"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time
}

// TableName overrides the default table name used by GORM.
func (ConversationModel) TableName() string {
	return "conversations"
}

// BeforeCreate ensures a UUID is set before inserting a new record.
func (m *ConversationModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
