package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SymptomLog records one symptom occurrence with severity on a 1-10 scale.
type SymptomLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Symptom    string         `gorm:"not null;index" json:"symptom"`
	Severity   int            `gorm:"not null" json:"severity"`
	OccurredAt time.Time      `gorm:"not null;index" json:"occurred_at"`
	Notes      string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (SymptomLog) TableName() string { return "symptom_log" }

func (s *SymptomLog) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
