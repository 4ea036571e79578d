package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mburgan/gutcheck-backend/internal/logger"
	"github.com/mburgan/gutcheck-backend/internal/types"
)

type SymptomLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, logs []*types.SymptomLog) ([]*types.SymptomLog, error)
	GetByUserInWindow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.SymptomLog, error)
}

type symptomLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSymptomLogRepo(db *gorm.DB, baseLog *logger.Logger) SymptomLogRepo {
	return &symptomLogRepo{db: db, log: baseLog.With("repo", "SymptomLogRepo")}
}

func (r *symptomLogRepo) Create(ctx context.Context, tx *gorm.DB, logs []*types.SymptomLog) ([]*types.SymptomLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(logs) == 0 {
		return []*types.SymptomLog{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *symptomLogRepo) GetByUserInWindow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.SymptomLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SymptomLog
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND occurred_at >= ? AND occurred_at <= ?", userID, from, to).
		Order("occurred_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
