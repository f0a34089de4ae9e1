package completion

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sprintflow/sprintflow-backend/internal/domain"
	"github.com/sprintflow/sprintflow-backend/internal/pkg/logger"
)

type CompletionRepo interface {
	// Upsert inserts the record or, when a row for the same (sprint, user)
	// pair exists, replaces its stories, total and notes.
	Upsert(ctx context.Context, tx *gorm.DB, rec *domain.CompletionRecord) (*domain.CompletionRecord, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.CompletionRecord, error)
	GetBySprintAndUser(ctx context.Context, tx *gorm.DB, sprintID, userID uuid.UUID) (*domain.CompletionRecord, error)
	ListBySprint(ctx context.Context, tx *gorm.DB, sprintID uuid.UUID) ([]*domain.CompletionRecord, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type completionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompletionRepo(db *gorm.DB, baseLog *logger.Logger) CompletionRepo {
	repoLog := baseLog.With("repo", "CompletionRepo")
	return &completionRepo{db: db, log: repoLog}
}

func (cr *completionRepo) Upsert(ctx context.Context, tx *gorm.DB, rec *domain.CompletionRecord) (*domain.CompletionRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "sprint_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"completed_stories",
				"total_achieved_points",
				"notes",
				"submitted_at",
				"updated_at",
			}),
		}).
		Create(rec).Error; err != nil {
		return nil, err
	}
	// Re-read so the caller sees the surviving row (the conflict path keeps
	// the original id).
	return cr.GetBySprintAndUser(ctx, transaction, rec.SprintID, rec.UserID)
}

func (cr *completionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.CompletionRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*domain.CompletionRecord
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

func (cr *completionRepo) GetBySprintAndUser(ctx context.Context, tx *gorm.DB, sprintID, userID uuid.UUID) (*domain.CompletionRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*domain.CompletionRecord
	if err := transaction.WithContext(ctx).
		Where("sprint_id = ? AND user_id = ?", sprintID, userID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (cr *completionRepo) ListBySprint(ctx context.Context, tx *gorm.DB, sprintID uuid.UUID) ([]*domain.CompletionRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*domain.CompletionRecord
	if err := transaction.WithContext(ctx).
		Where("sprint_id = ?", sprintID).
		Order("updated_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *completionRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.CompletionRecord{}).Error
}
