package messagegorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageModel is the GORM persistence model for messages.
// It maps directly to the "messages" table in Postgres.
type MessageModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ConversationID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	GatewaySID       string     `gorm:"size:100;index"`
	Direction        string     `gorm:"size:10;not null"`
	FromNumber       string     `gorm:"size:20"`
	ToNumber         string     `gorm:"size:20;not null"`
	Body             string     `gorm:"type:text;not null"`
	Status           string     `gorm:"size:20;not null;index"`
	ErrorCode        *int       ``
	ErrorMessage     string     `gorm:"type:text"`
	StatusCheckCount int        `gorm:"not null;default:0"`
	BatchID          *uuid.UUID `gorm:"type:uuid;index"`
	RawResponse      string     `gorm:"type:text"`
	SentAt           *time.Time `gorm:"index"`
	CreatedAt        time.Time  `gorm:"not null;index"`
	UpdatedAt        time.Time
}

// TableName overrides the default table name used by GORM.
func (MessageModel) TableName() string {
	return "messages"
}

// BeforeCreate ensures a UUID is set before inserting a new record.
func (m *MessageModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
