package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BowelLog records one bowel movement on the Bristol stool scale (1-7).
type BowelLog struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	BristolType int            `gorm:"not null" json:"bristol_type"`
	Urgency     int            `json:"urgency,omitempty"`
	OccurredAt  time.Time      `gorm:"not null;index" json:"occurred_at"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (BowelLog) TableName() string { return "bowel_log" }

func (b *BowelLog) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
