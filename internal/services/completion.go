package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sprintflow/sprintflow-backend/internal/data/repos"
	"github.com/sprintflow/sprintflow-backend/internal/domain"
	"github.com/sprintflow/sprintflow-backend/internal/pkg/logger"
	"github.com/sprintflow/sprintflow-backend/internal/platform/apierr"
	"github.com/sprintflow/sprintflow-backend/internal/requestdata"
)

type CompletedStoryInput struct {
	Score          float64 `json:"score"`
	CompletedCount int     `json:"completed_count"`
}

type SubmitCompletionInput struct {
	SprintID uuid.UUID             `json:"sprint_id"`
	Stories  []CompletedStoryInput `json:"stories"`
	Notes    string                `json:"notes"`
}

// Contribution source markers for the merged sprint view.
const (
	SourceLegacy   = "legacy"
	SourceRegistry = "registry"
)

// Contribution is one user's completed-points line in a sprint, merged from
// the legacy completion records and the points registry.
type Contribution struct {
	UserID      uuid.UUID `json:"user_id"`
	TotalPoints float64   `json:"total_points"`
	Source      string    `json:"source"`
	Entries     int       `json:"entries"`
}

type CompletionService interface {
	// Submit upserts the calling user's legacy completion record for a
	// sprint: at most one record per (sprint, user), resubmission replaces.
	Submit(ctx context.Context, in SubmitCompletionInput) (*domain.CompletionRecord, error)
	// SprintContributions returns the merged per-user completed totals for a
	// sprint. A legacy record wins over registry entries for the same user.
	SprintContributions(ctx context.Context, sprintID uuid.UUID) ([]Contribution, error)
	GetUserCompletion(ctx context.Context, sprintID, userID uuid.UUID) (*domain.CompletionRecord, error)
	ListSprintCompletions(ctx context.Context, sprintID uuid.UUID) ([]*domain.CompletionRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type completionService struct {
	db             *gorm.DB
	log            *logger.Logger
	sprintRepo     repos.SprintRepo
	completionRepo repos.CompletionRepo
	registryRepo   repos.PointsRegistryRepo
	notifier       Notifier
}

func NewCompletionService(
	db *gorm.DB,
	log *logger.Logger,
	sprintRepo repos.SprintRepo,
	completionRepo repos.CompletionRepo,
	registryRepo repos.PointsRegistryRepo,
	notifier Notifier,
) CompletionService {
	return &completionService{
		db:             db,
		log:            log.With("service", "CompletionService"),
		sprintRepo:     sprintRepo,
		completionRepo: completionRepo,
		registryRepo:   registryRepo,
		notifier:       notifier,
	}
}

func (cs *completionService) Submit(ctx context.Context, in SubmitCompletionInput) (*domain.CompletionRecord, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	if len(in.Stories) == 0 {
		return nil, apierr.Validation("at least one completed story is required")
	}

	stories := make([]domain.CompletedStory, 0, len(in.Stories))
	for i, s := range in.Stories {
		if s.Score < 0 {
			return nil, apierr.Validation("story %d: score must not be negative", i)
		}
		if s.CompletedCount <= 0 {
			return nil, apierr.Validation("story %d: completed_count must be positive", i)
		}
		stories = append(stories, domain.CompletedStory{Score: s.Score, CompletedCount: s.CompletedCount})
	}

	sprints, err := cs.sprintRepo.GetByIDs(ctx, nil, []uuid.UUID{in.SprintID})
	if err != nil {
		return nil, fmt.Errorf("load sprint: %w", err)
	}
	if len(sprints) == 0 {
		return nil, apierr.NotFound("sprint %s not found", in.SprintID)
	}

	rec := &domain.CompletionRecord{
		ID:                  uuid.New(),
		SprintID:            in.SprintID,
		UserID:              rd.UserID,
		CompletedStories:    domain.EncodeCompletedStories(stories),
		TotalAchievedPoints: domain.AchievedTotal(stories),
		Notes:               strings.TrimSpace(in.Notes),
		SubmittedAt:         time.Now().UTC(),
	}

	var saved *domain.CompletionRecord
	if err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var uErr error
		saved, uErr = cs.completionRepo.Upsert(ctx, tx, rec)
		return uErr
	}); err != nil {
		return nil, fmt.Errorf("upsert completion: %w", err)
	}

	cs.log.Info("completion submitted", "sprintID", in.SprintID, "userID", rd.UserID, "total", saved.TotalAchievedPoints)
	cs.notifier.CompletionSubmitted(saved)
	return saved, nil
}

func (cs *completionService) SprintContributions(ctx context.Context, sprintID uuid.UUID) ([]Contribution, error) {
	sprints, err := cs.sprintRepo.GetByIDs(ctx, nil, []uuid.UUID{sprintID})
	if err != nil {
		return nil, fmt.Errorf("load sprint: %w", err)
	}
	if len(sprints) == 0 {
		return nil, apierr.NotFound("sprint %s not found", sprintID)
	}

	records, err := cs.completionRepo.ListBySprint(ctx, nil, sprintID)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	entries, err := cs.registryRepo.ListBySprint(ctx, nil, sprintID)
	if err != nil {
		return nil, fmt.Errorf("list registry entries: %w", err)
	}
	return mergeContributions(records, entries), nil
}

// mergeContributions folds the two completion sources into at most one
// contribution per user. Registry entries for a user are collapsed first;
// a legacy record then replaces the registry-derived line outright rather
// than adding to it.
func mergeContributions(records []*domain.CompletionRecord, entries []*domain.PointsRegistryEntry) []Contribution {
	byUser := make(map[uuid.UUID]Contribution)
	for _, e := range entries {
		c := byUser[e.UserID]
		c.UserID = e.UserID
		c.TotalPoints += e.TotalPoints
		c.Source = SourceRegistry
		c.Entries++
		byUser[e.UserID] = c
	}
	for _, r := range records {
		byUser[r.UserID] = Contribution{
			UserID:      r.UserID,
			TotalPoints: r.TotalAchievedPoints,
			Source:      SourceLegacy,
			Entries:     1,
		}
	}

	out := make([]Contribution, 0, len(byUser))
	for _, c := range byUser {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].UserID.String(), out[j].UserID.String()) < 0
	})
	return out
}

func (cs *completionService) GetUserCompletion(ctx context.Context, sprintID, userID uuid.UUID) (*domain.CompletionRecord, error) {
	rec, err := cs.completionRepo.GetBySprintAndUser(ctx, nil, sprintID, userID)
	if err != nil {
		return nil, fmt.Errorf("load completion: %w", err)
	}
	if rec == nil {
		return nil, apierr.NotFound("no completion for sprint %s and user %s", sprintID, userID)
	}
	return rec, nil
}

func (cs *completionService) ListSprintCompletions(ctx context.Context, sprintID uuid.UUID) ([]*domain.CompletionRecord, error) {
	records, err := cs.completionRepo.ListBySprint(ctx, nil, sprintID)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	return records, nil
}

func (cs *completionService) Delete(ctx context.Context, id uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return apierr.Unauthorized("not authenticated")
	}
	records, err := cs.completionRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return fmt.Errorf("load completion: %w", err)
	}
	if len(records) == 0 {
		return apierr.NotFound("completion %s not found", id)
	}
	rec := records[0]
	if rec.UserID != rd.UserID && !rd.IsAdmin {
		return apierr.Forbidden("only the record owner or an admin can delete it")
	}
	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return cs.completionRepo.Delete(ctx, tx, id)
	})
}
