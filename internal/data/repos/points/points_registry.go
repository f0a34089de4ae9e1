package points

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sprintflow/sprintflow-backend/internal/domain"
	"github.com/sprintflow/sprintflow-backend/internal/pkg/logger"
)

type PointsRegistryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entries []*domain.PointsRegistryEntry) ([]*domain.PointsRegistryEntry, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.PointsRegistryEntry, error)
	ListBySprint(ctx context.Context, tx *gorm.DB, sprintID uuid.UUID) ([]*domain.PointsRegistryEntry, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.PointsRegistryEntry, error)
	ListByUserAndSprint(ctx context.Context, tx *gorm.DB, userID, sprintID uuid.UUID) ([]*domain.PointsRegistryEntry, error)
	// SumBySprint totals the live entries of a sprint straight from the store,
	// bypassing the denormalized sprint counters.
	SumBySprint(ctx context.Context, tx *gorm.DB, sprintID uuid.UUID) (float64, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type pointsRegistryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPointsRegistryRepo(db *gorm.DB, baseLog *logger.Logger) PointsRegistryRepo {
	repoLog := baseLog.With("repo", "PointsRegistryRepo")
	return &pointsRegistryRepo{db: db, log: repoLog}
}

func (pr *pointsRegistryRepo) Create(ctx context.Context, tx *gorm.DB, entries []*domain.PointsRegistryEntry) ([]*domain.PointsRegistryEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if len(entries) == 0 {
		return []*domain.PointsRegistryEntry{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (pr *pointsRegistryRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.PointsRegistryEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*domain.PointsRegistryEntry
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *pointsRegistryRepo) ListBySprint(ctx context.Context, tx *gorm.DB, sprintID uuid.UUID) ([]*domain.PointsRegistryEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*domain.PointsRegistryEntry
	if err := transaction.WithContext(ctx).
		Where("sprint_id = ?", sprintID).
		Order("registered_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *pointsRegistryRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.PointsRegistryEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*domain.PointsRegistryEntry
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("registered_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *pointsRegistryRepo) ListByUserAndSprint(ctx context.Context, tx *gorm.DB, userID, sprintID uuid.UUID) ([]*domain.PointsRegistryEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*domain.PointsRegistryEntry
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND sprint_id = ?", userID, sprintID).
		Order("registered_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *pointsRegistryRepo) SumBySprint(ctx context.Context, tx *gorm.DB, sprintID uuid.UUID) (float64, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var total float64
	if err := transaction.WithContext(ctx).
		Model(&domain.PointsRegistryEntry{}).
		Where("sprint_id = ?", sprintID).
		Select("COALESCE(SUM(total_points), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (pr *pointsRegistryRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.PointsRegistryEntry{}).Error
}
