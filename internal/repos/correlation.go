package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mburgan/gutcheck-backend/internal/logger"
	"github.com/mburgan/gutcheck-backend/internal/types"
)

type CorrelationRepo interface {
	// ReplaceForUser swaps the whole correlation set for a user inside one
	// transaction so readers never see a mix of old and new windows.
	ReplaceForUser(ctx context.Context, userID uuid.UUID, rows []*types.Correlation) error
	GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, minConfidence float64, limit int) ([]*types.Correlation, error)
}

type correlationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCorrelationRepo(db *gorm.DB, baseLog *logger.Logger) CorrelationRepo {
	return &correlationRepo{db: db, log: baseLog.With("repo", "CorrelationRepo")}
}

func (r *correlationRepo) ReplaceForUser(ctx context.Context, userID uuid.UUID, rows []*types.Correlation) error {
	if userID == uuid.Nil {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("user_id = ?", userID).
			Delete(&types.Correlation{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (r *correlationRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, minConfidence float64, limit int) ([]*types.Correlation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Correlation
	if userID == uuid.Nil {
		return results, nil
	}

	query := transaction.WithContext(ctx).
		Where("user_id = ? AND confidence >= ?", userID, minConfidence).
		Order("sample_size DESC, exposure_category ASC, outcome_id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
