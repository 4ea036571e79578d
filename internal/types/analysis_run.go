package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnalysisRun is an audit row written once per engine invocation.
type AnalysisRun struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Kind        string         `gorm:"not null;index" json:"kind"`
	WindowDays  int            `gorm:"not null" json:"window_days"`
	RecordCount int            `gorm:"not null" json:"record_count"`
	DurationMs  int64          `gorm:"not null" json:"duration_ms"`
	Detail      datatypes.JSON `gorm:"type:jsonb;column:detail" json:"detail,omitempty"`
	StartedAt   time.Time      `gorm:"not null;index" json:"started_at"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AnalysisRun) TableName() string { return "analysis_run" }

func (r *AnalysisRun) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

const (
	AnalysisRunKindCorrelation = "correlation"
	AnalysisRunKindML          = "ml"
)
