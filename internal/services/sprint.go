package services

import (
	"context"
	"fmt"
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

type CreateSprintInput struct {
	Name           string                `json:"name"`
	StartDate      time.Time             `json:"start_date"`
	EndDate        time.Time             `json:"end_date"`
	PlannedStories []domain.PlannedStory `json:"planned_stories"`
	Observations   string                `json:"observations"`
}

// UpdateSprintInput carries a partial update; nil fields are left untouched.
type UpdateSprintInput struct {
	Name           *string               `json:"name"`
	StartDate      *time.Time            `json:"start_date"`
	EndDate        *time.Time            `json:"end_date"`
	PlannedStories []domain.PlannedStory `json:"planned_stories"`
	Observations   *string               `json:"observations"`
}

type SprintService interface {
	Create(ctx context.Context, in CreateSprintInput) (*domain.Sprint, error)
	List(ctx context.Context) ([]*domain.Sprint, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Sprint, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateSprintInput) (*domain.Sprint, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// SynchronizeStatuses re-derives the status of every non-terminal sprint
	// (or just the given ones) against today's date, persisting and
	// broadcasting each transition. Returns how many sprints changed.
	SynchronizeStatuses(ctx context.Context, ids []uuid.UUID) (int, error)
}

type sprintService struct {
	db         *gorm.DB
	log        *logger.Logger
	sprintRepo repos.SprintRepo
	notifier   Notifier
}

func NewSprintService(db *gorm.DB, log *logger.Logger, sprintRepo repos.SprintRepo, notifier Notifier) SprintService {
	return &sprintService{
		db:         db,
		log:        log.With("service", "SprintService"),
		sprintRepo: sprintRepo,
		notifier:   notifier,
	}
}

func validatePlannedStories(stories []domain.PlannedStory) error {
	for i, s := range stories {
		if !domain.IsAllowedPointValue(s.PointValue) {
			return apierr.Validation("planned story %d: point value %g is not one of the allowed values", i, s.PointValue)
		}
		if s.Quantity <= 0 {
			return apierr.Validation("planned story %d: quantity must be positive", i)
		}
	}
	return nil
}

func (ss *sprintService) Create(ctx context.Context, in CreateSprintInput) (*domain.Sprint, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	if !rd.IsAdmin {
		return nil, apierr.Forbidden("only admins can create sprints")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apierr.Validation("name is required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, apierr.Validation("start_date and end_date are required")
	}
	start := domain.Midnight(in.StartDate)
	end := domain.Midnight(in.EndDate)
	if end.Before(start) {
		return nil, apierr.Validation("end_date must not precede start_date")
	}
	if err := validatePlannedStories(in.PlannedStories); err != nil {
		return nil, err
	}

	s := &domain.Sprint{
		ID:                 uuid.New(),
		Name:               name,
		AdminID:            rd.UserID,
		StartDate:          start,
		EndDate:            end,
		PlannedStories:     domain.EncodePlannedStories(in.PlannedStories),
		PlannedTotalPoints: domain.PlannedTotal(in.PlannedStories),
		UserPoints:         domain.EncodeUserPoints(nil),
		Observations:       strings.TrimSpace(in.Observations),
	}
	s.Status = domain.ComputeStatus(s, time.Now())

	if err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, cErr := ss.sprintRepo.Create(ctx, tx, []*domain.Sprint{s})
		return cErr
	}); err != nil {
		return nil, fmt.Errorf("create sprint: %w", err)
	}

	ss.log.Info("sprint created", "sprintID", s.ID, "status", s.Status, "plannedTotal", s.PlannedTotalPoints)
	ss.notifier.SprintCreated(s)
	return s, nil
}

func (ss *sprintService) List(ctx context.Context) ([]*domain.Sprint, error) {
	// Reads self-heal: derive statuses first so callers never see a sprint
	// whose stored status lags its date window.
	if _, err := ss.SynchronizeStatuses(ctx, nil); err != nil {
		ss.log.Warn("status synchronization before list failed", "error", err)
	}
	sprints, err := ss.sprintRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list sprints: %w", err)
	}
	return sprints, nil
}

func (ss *sprintService) Get(ctx context.Context, id uuid.UUID) (*domain.Sprint, error) {
	if _, err := ss.SynchronizeStatuses(ctx, []uuid.UUID{id}); err != nil {
		ss.log.Warn("status synchronization before get failed", "sprintID", id, "error", err)
	}
	sprints, err := ss.sprintRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("load sprint: %w", err)
	}
	if len(sprints) == 0 {
		return nil, apierr.NotFound("sprint %s not found", id)
	}
	return sprints[0], nil
}

func (ss *sprintService) Update(ctx context.Context, id uuid.UUID, in UpdateSprintInput) (*domain.Sprint, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	if !rd.IsAdmin {
		return nil, apierr.Forbidden("only admins can update sprints")
	}

	s, err := ss.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Status.Terminal() {
		return nil, apierr.InvalidState("sprint %s is %s and can no longer be modified", id, s.Status)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apierr.Validation("name must not be empty")
		}
		s.Name = name
	}
	if in.StartDate != nil {
		s.StartDate = domain.Midnight(*in.StartDate)
	}
	if in.EndDate != nil {
		s.EndDate = domain.Midnight(*in.EndDate)
	}
	if domain.Midnight(s.EndDate).Before(domain.Midnight(s.StartDate)) {
		return nil, apierr.Validation("end_date must not precede start_date")
	}
	if in.PlannedStories != nil {
		if err := validatePlannedStories(in.PlannedStories); err != nil {
			return nil, err
		}
		s.PlannedStories = domain.EncodePlannedStories(in.PlannedStories)
		s.PlannedTotalPoints = domain.PlannedTotal(in.PlannedStories)
	}
	if in.Observations != nil {
		s.Observations = strings.TrimSpace(*in.Observations)
	}

	// Date edits can move the sprint forward in its lifecycle but never
	// backward: an Active sprint whose window is pushed into the future
	// stays Active.
	prev := s.Status
	derived := domain.ComputeStatus(s, time.Now())
	if prev.Before(derived) {
		s.Status = derived
		if derived.Terminal() {
			s.FinalCompletionTotalPoints = s.CompletedPoints
			s.FinalObjectiveAchieved = derived == domain.StatusCompletedSuccess
		}
	}

	if err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return ss.sprintRepo.Save(ctx, tx, s)
	}); err != nil {
		return nil, fmt.Errorf("save sprint: %w", err)
	}

	if s.Status != prev {
		ss.notifier.SprintStatusChanged(s, prev, s.Status)
	}
	ss.notifier.SprintUpdated(s)
	return s, nil
}

func (ss *sprintService) Delete(ctx context.Context, id uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return apierr.Unauthorized("not authenticated")
	}
	if !rd.IsAdmin {
		return apierr.Forbidden("only admins can delete sprints")
	}
	if _, err := ss.Get(ctx, id); err != nil {
		return err
	}
	return ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return ss.sprintRepo.Delete(ctx, tx, id)
	})
}

func (ss *sprintService) SynchronizeStatuses(ctx context.Context, ids []uuid.UUID) (int, error) {
	// Terminal sprints are excluded at the query: a completed sprint is
	// never re-classified, whatever happens to today's date or its totals.
	sprints, err := ss.sprintRepo.ListByStatuses(ctx, nil, ids, []domain.Status{domain.StatusPlanned, domain.StatusActive})
	if err != nil {
		return 0, fmt.Errorf("list sprints for sync: %w", err)
	}

	today := time.Now()
	changed := 0
	for _, s := range sprints {
		derived := domain.ComputeStatus(s, today)
		// Forward-only: rescheduling an Active sprint into the future must
		// not demote it back to Planned.
		if !s.Status.Before(derived) {
			continue
		}
		var finalTotal float64
		var achieved bool
		if derived.Terminal() {
			finalTotal = s.CompletedPoints
			achieved = derived == domain.StatusCompletedSuccess
		}
		if err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return ss.sprintRepo.UpdateStatus(ctx, tx, s.ID, derived, finalTotal, achieved)
		}); err != nil {
			return changed, fmt.Errorf("persist status of sprint %s: %w", s.ID, err)
		}
		prev := s.Status
		s.Status = derived
		if derived.Terminal() {
			s.FinalCompletionTotalPoints = finalTotal
			s.FinalObjectiveAchieved = achieved
		}
		changed++
		ss.log.Info("sprint status changed", "sprintID", s.ID, "from", prev, "to", derived)
		ss.notifier.SprintStatusChanged(s, prev, derived)
	}
	return changed, nil
}
