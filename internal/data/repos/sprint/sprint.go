package sprint

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sprintflow/sprintflow-backend/internal/domain"
	"github.com/sprintflow/sprintflow-backend/internal/pkg/logger"
)

type SprintRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sprints []*domain.Sprint) ([]*domain.Sprint, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Sprint, error)
	List(ctx context.Context, tx *gorm.DB) ([]*domain.Sprint, error)
	// ListByStatuses returns sprints whose stored status is one of the given
	// values, optionally restricted to the given ids.
	ListByStatuses(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, statuses []domain.Status) ([]*domain.Sprint, error)
	Save(ctx context.Context, tx *gorm.DB, s *domain.Sprint) error
	// UpdateStatus persists a status transition together with the terminal
	// snapshot fields.
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status domain.Status, finalTotal float64, objectiveAchieved bool) error
	// UpdateTotals persists the aggregator-maintained completed points and the
	// denormalized per-user mirror in one statement.
	UpdateTotals(ctx context.Context, tx *gorm.DB, id uuid.UUID, completedPoints float64, userPoints datatypes.JSON) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type sprintRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSprintRepo(db *gorm.DB, baseLog *logger.Logger) SprintRepo {
	repoLog := baseLog.With("repo", "SprintRepo")
	return &sprintRepo{db: db, log: repoLog}
}

func (sr *sprintRepo) Create(ctx context.Context, tx *gorm.DB, sprints []*domain.Sprint) ([]*domain.Sprint, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if len(sprints) == 0 {
		return []*domain.Sprint{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&sprints).Error; err != nil {
		return nil, err
	}
	return sprints, nil
}

func (sr *sprintRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Sprint, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*domain.Sprint
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

func (sr *sprintRepo) List(ctx context.Context, tx *gorm.DB) ([]*domain.Sprint, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*domain.Sprint
	if err := transaction.WithContext(ctx).
		Order("start_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *sprintRepo) ListByStatuses(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, statuses []domain.Status) ([]*domain.Sprint, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*domain.Sprint
	if len(statuses) == 0 {
		return results, nil
	}
	q := transaction.WithContext(ctx).Where("status IN ?", statuses)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	if err := q.Order("start_date ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *sprintRepo) Save(ctx context.Context, tx *gorm.DB, s *domain.Sprint) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).Save(s).Error
}

func (sr *sprintRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status domain.Status, finalTotal float64, objectiveAchieved bool) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	updates := map[string]any{"status": status}
	if status.Terminal() {
		updates["final_completion_total_points"] = finalTotal
		updates["final_objective_achieved"] = objectiveAchieved
	}
	return transaction.WithContext(ctx).
		Model(&domain.Sprint{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (sr *sprintRepo) UpdateTotals(ctx context.Context, tx *gorm.DB, id uuid.UUID, completedPoints float64, userPoints datatypes.JSON) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.Sprint{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"completed_points": completedPoints,
			"user_points":      userPoints,
		}).Error
}

func (sr *sprintRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Sprint{}).Error
}
