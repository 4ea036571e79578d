package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mburgan/gutcheck-backend/internal/logger"
	"github.com/mburgan/gutcheck-backend/internal/types"
)

type SleepLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, logs []*types.SleepLog) ([]*types.SleepLog, error)
	GetByUserInWindow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.SleepLog, error)
}

type sleepLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSleepLogRepo(db *gorm.DB, baseLog *logger.Logger) SleepLogRepo {
	return &sleepLogRepo{db: db, log: baseLog.With("repo", "SleepLogRepo")}
}

func (r *sleepLogRepo) Create(ctx context.Context, tx *gorm.DB, logs []*types.SleepLog) ([]*types.SleepLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(logs) == 0 {
		return []*types.SleepLog{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *sleepLogRepo) GetByUserInWindow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.SleepLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SleepLog
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND slept_at >= ? AND slept_at <= ?", userID, from, to).
		Order("slept_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
