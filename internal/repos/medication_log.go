package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mburgan/gutcheck-backend/internal/logger"
	"github.com/mburgan/gutcheck-backend/internal/types"
)

type MedicationLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, logs []*types.MedicationLog) ([]*types.MedicationLog, error)
	GetByUserInWindow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.MedicationLog, error)
}

type medicationLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMedicationLogRepo(db *gorm.DB, baseLog *logger.Logger) MedicationLogRepo {
	return &medicationLogRepo{db: db, log: baseLog.With("repo", "MedicationLogRepo")}
}

func (r *medicationLogRepo) Create(ctx context.Context, tx *gorm.DB, logs []*types.MedicationLog) ([]*types.MedicationLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(logs) == 0 {
		return []*types.MedicationLog{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *medicationLogRepo) GetByUserInWindow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.MedicationLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.MedicationLog
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND taken_at >= ? AND taken_at <= ?", userID, from, to).
		Order("taken_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
