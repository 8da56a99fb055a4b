package campaigngorm

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// CampaignModel is the GORM persistence model for campaigns. The
// recipient list is stored as a Postgres text[] column.
type CampaignModel struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Message         string         `gorm:"type:text;not null"`
	Recipients      pq.StringArray `gorm:"type:text[];not null"`
	Status          string         `gorm:"size:10;not null;index"`
	SentAt          *time.Time     ``
	SentCount       int            `gorm:"not null;default:0"`
	FailedCount     int            `gorm:"not null;default:0"`
	GatewayResponse string         `gorm:"type:text"`
	ErrorMessage    string         `gorm:"type:text"`
	CreatedAt       time.Time      `gorm:"not null"`
	UpdatedAt       time.Time
}

// TableName overrides the default table name used by GORM.
func (CampaignModel) TableName() string {
	return "campaigns"
}

// BeforeCreate ensures a UUID is set before inserting a new record.
func (m *CampaignModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
