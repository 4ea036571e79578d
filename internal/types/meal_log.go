package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MealLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Name       string         `gorm:"not null" json:"name"`
	ConsumedAt time.Time      `gorm:"not null;index" json:"consumed_at"`
	Foods      []*MealFood    `gorm:"constraint:OnDelete:CASCADE;foreignKey:MealLogID;references:ID" json:"foods,omitempty"`
	Notes      string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (MealLog) TableName() string { return "meal_log" }

func (m *MealLog) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// MealFood is one raw item inside a meal. Several items may resolve to the
// same exposure category downstream.
type MealFood struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MealLogID uuid.UUID `gorm:"type:uuid;not null;index" json:"meal_log_id"`
	Name      string    `gorm:"not null" json:"name"`
	Quantity  string    `json:"quantity,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (MealFood) TableName() string { return "meal_food" }

func (f *MealFood) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
