package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SleepLog records one night of sleep. DryEyeSeverity and NextDayFatigue
// (0-10, zero meaning not reported) are surfaced downstream as independent
// outcome channels.
type SleepLog struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User           *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	SleptAt        time.Time      `gorm:"not null;index" json:"slept_at"`
	DurationMin    int            `json:"duration_min,omitempty"`
	DryEyeSeverity int            `json:"dry_eye_severity,omitempty"`
	NextDayFatigue int            `json:"next_day_fatigue,omitempty"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (SleepLog) TableName() string { return "sleep_log" }

func (s *SleepLog) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
