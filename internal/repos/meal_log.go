package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mburgan/gutcheck-backend/internal/logger"
	"github.com/mburgan/gutcheck-backend/internal/types"
)

type MealLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, logs []*types.MealLog) ([]*types.MealLog, error)
	GetByUserInWindow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.MealLog, error)
}

type mealLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMealLogRepo(db *gorm.DB, baseLog *logger.Logger) MealLogRepo {
	return &mealLogRepo{db: db, log: baseLog.With("repo", "MealLogRepo")}
}

func (r *mealLogRepo) Create(ctx context.Context, tx *gorm.DB, logs []*types.MealLog) ([]*types.MealLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(logs) == 0 {
		return []*types.MealLog{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *mealLogRepo) GetByUserInWindow(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.MealLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.MealLog
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Foods").
		Where("user_id = ? AND consumed_at >= ? AND consumed_at <= ?", userID, from, to).
		Order("consumed_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
