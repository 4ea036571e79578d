package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MedicationLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Name      string         `gorm:"not null" json:"name"`
	Dosage    string         `json:"dosage,omitempty"`
	TakenAt   time.Time      `gorm:"not null;index" json:"taken_at"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (MedicationLog) TableName() string { return "medication_log" }

func (m *MedicationLog) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
