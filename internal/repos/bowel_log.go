package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mburgan/gutcheck-backend/internal/logger"
	"github.com/mburgan/gutcheck-backend/internal/types"
)

type BowelLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, logs []*types.BowelLog) ([]*types.BowelLog, error)
	GetByUserInWindow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.BowelLog, error)
}

type bowelLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBowelLogRepo(db *gorm.DB, baseLog *logger.Logger) BowelLogRepo {
	return &bowelLogRepo{db: db, log: baseLog.With("repo", "BowelLogRepo")}
}

func (r *bowelLogRepo) Create(ctx context.Context, tx *gorm.DB, logs []*types.BowelLog) ([]*types.BowelLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(logs) == 0 {
		return []*types.BowelLog{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *bowelLogRepo) GetByUserInWindow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.BowelLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.BowelLog
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
