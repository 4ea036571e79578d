package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Correlation is one qualified (exposure category, outcome) association for
// a user. The full set for a user is replaced wholesale on each engine run;
// rows only exist when the sample-size floor and confidence filter passed.
type Correlation struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index:idx_correlation_user_pair,unique" json:"user_id"`
	User             *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ExposureCategory string         `gorm:"not null;index:idx_correlation_user_pair,unique" json:"exposure_category"`
	OutcomeID        string         `gorm:"not null;index:idx_correlation_user_pair,unique" json:"outcome_id"`
	Score            float64        `gorm:"not null" json:"score"`
	Confidence       float64        `gorm:"not null" json:"confidence"`
	SampleSize       int            `gorm:"not null" json:"sample_size"`
	LagBucket        string         `gorm:"not null" json:"lag_bucket"`
	Detail           datatypes.JSON `gorm:"type:jsonb;column:detail" json:"detail,omitempty"`
	ComputedAt       time.Time      `gorm:"not null" json:"computed_at"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Correlation) TableName() string { return "correlation" }

func (c *Correlation) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
