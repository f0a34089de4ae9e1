package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sprintflow/sprintflow-backend/internal/data/repos"
	"github.com/sprintflow/sprintflow-backend/internal/domain"
	"github.com/sprintflow/sprintflow-backend/internal/pkg/logger"
	"github.com/sprintflow/sprintflow-backend/internal/platform/apierr"
	"github.com/sprintflow/sprintflow-backend/internal/requestdata"
)

type RegistryStoryInput struct {
	PointValue float64 `json:"point_value"`
	Count      int     `json:"count"`
}

type RecordPointsInput struct {
	SprintID       uuid.UUID            `json:"sprint_id"`
	Stories        []RegistryStoryInput `json:"stories"`
	IsInterruption bool                 `json:"is_interruption"`
}

type PointsService interface {
	// RecordPoints creates a registry entry for the calling user and, in the
	// same transaction, rolls its total into the sprint and user aggregates.
	// The sprint must be Active at the moment of recording.
	RecordPoints(ctx context.Context, in RecordPointsInput) (*domain.PointsRegistryEntry, error)
	// RemovePoints deletes an entry and reverses its contribution from the
	// aggregates, clamping at zero. Owner or admin only. Entries of a
	// completed sprint cannot be removed: the registry freezes with the final
	// snapshot, so removal returns InvalidState rather than NotFound.
	RemovePoints(ctx context.Context, entryID uuid.UUID) error
	ListSprintEntries(ctx context.Context, sprintID uuid.UUID) ([]*domain.PointsRegistryEntry, error)
	ListUserEntries(ctx context.Context, userID uuid.UUID) ([]*domain.PointsRegistryEntry, error)
	ListUserSprintEntries(ctx context.Context, userID, sprintID uuid.UUID) ([]*domain.PointsRegistryEntry, error)
}

type pointsService struct {
	db            *gorm.DB
	log           *logger.Logger
	sprintRepo    repos.SprintRepo
	registryRepo  repos.PointsRegistryRepo
	userRepo      repos.UserRepo
	sprintService SprintService
	notifier      Notifier
}

func NewPointsService(
	db *gorm.DB,
	log *logger.Logger,
	sprintRepo repos.SprintRepo,
	registryRepo repos.PointsRegistryRepo,
	userRepo repos.UserRepo,
	sprintService SprintService,
	notifier Notifier,
) PointsService {
	return &pointsService{
		db:            db,
		log:           log.With("service", "PointsService"),
		sprintRepo:    sprintRepo,
		registryRepo:  registryRepo,
		userRepo:      userRepo,
		sprintService: sprintService,
		notifier:      notifier,
	}
}

func buildRegistryStories(inputs []RegistryStoryInput) ([]domain.RegistryStory, error) {
	if len(inputs) == 0 {
		return nil, apierr.Validation("at least one story is required")
	}
	stories := make([]domain.RegistryStory, 0, len(inputs))
	for i, in := range inputs {
		if !domain.IsAllowedPointValue(in.PointValue) {
			return nil, apierr.Validation("story %d: point value %g is not one of the allowed values", i, in.PointValue)
		}
		if in.Count <= 0 {
			return nil, apierr.Validation("story %d: count must be positive", i)
		}
		stories = append(stories, domain.RegistryStory{
			PointValue: in.PointValue,
			Count:      in.Count,
			// Subtotals are always derived server-side.
			Subtotal: in.PointValue * float64(in.Count),
		})
	}
	return stories, nil
}

// applyUserPointsDelta adjusts one user's row in the sprint's denormalized
// per-user mirror, flooring at zero and dropping emptied rows.
func applyUserPointsDelta(raw datatypes.JSON, userID uuid.UUID, delta float64) (datatypes.JSON, error) {
	rows, err := domain.DecodeUserPoints(raw)
	if err != nil {
		return nil, fmt.Errorf("decode user points: %w", err)
	}
	out := rows[:0]
	found := false
	for _, r := range rows {
		if r.UserID == userID {
			found = true
			r.Points += delta
			if r.Points < 0 {
				r.Points = 0
			}
			if r.Points == 0 {
				continue
			}
		}
		out = append(out, r)
	}
	if !found && delta > 0 {
		out = append(out, domain.UserPoints{UserID: userID, Points: delta})
	}
	return domain.EncodeUserPoints(out), nil
}

func (ps *pointsService) RecordPoints(ctx context.Context, in RecordPointsInput) (*domain.PointsRegistryEntry, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("not authenticated")
	}

	stories, err := buildRegistryStories(in.Stories)
	if err != nil {
		return nil, err
	}
	total := domain.RegistryTotal(stories)

	// Persisting derived statuses first is best-effort; the authoritative
	// gate below recomputes from dates so a just-expired sprint is rejected
	// even if the sync write failed.
	if _, err := ps.sprintService.SynchronizeStatuses(ctx, []uuid.UUID{in.SprintID}); err != nil {
		ps.log.Warn("status synchronization before record failed", "sprintID", in.SprintID, "error", err)
	}

	entry := &domain.PointsRegistryEntry{
		ID:             uuid.New(),
		UserID:         rd.UserID,
		SprintID:       in.SprintID,
		Stories:        domain.EncodeRegistryStories(stories),
		TotalPoints:    total,
		IsInterruption: in.IsInterruption,
		RegisteredAt:   time.Now().UTC(),
	}

	err = ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sprints, sErr := ps.sprintRepo.GetByIDs(ctx, tx, []uuid.UUID{in.SprintID})
		if sErr != nil {
			return fmt.Errorf("load sprint: %w", sErr)
		}
		if len(sprints) == 0 {
			return apierr.NotFound("sprint %s not found", in.SprintID)
		}
		s := sprints[0]
		if s.Status.Terminal() || domain.ComputeStatus(s, time.Now()) != domain.StatusActive {
			return apierr.InvalidState("points can only be recorded while the sprint is active")
		}

		if _, cErr := ps.registryRepo.Create(ctx, tx, []*domain.PointsRegistryEntry{entry}); cErr != nil {
			return fmt.Errorf("create registry entry: %w", cErr)
		}

		userPoints, upErr := applyUserPointsDelta(s.UserPoints, rd.UserID, total)
		if upErr != nil {
			return upErr
		}
		if tErr := ps.sprintRepo.UpdateTotals(ctx, tx, s.ID, s.CompletedPoints+total, userPoints); tErr != nil {
			return fmt.Errorf("update sprint totals: %w", tErr)
		}
		if uErr := ps.userRepo.AddTotalPoints(ctx, tx, rd.UserID, total); uErr != nil {
			return fmt.Errorf("update user total: %w", uErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ps.log.Info("points recorded", "sprintID", in.SprintID, "userID", rd.UserID, "total", total)
	ps.notifier.PointsRecorded(entry)
	return entry, nil
}

func (ps *pointsService) RemovePoints(ctx context.Context, entryID uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return apierr.Unauthorized("not authenticated")
	}

	var removed *domain.PointsRegistryEntry
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entries, eErr := ps.registryRepo.GetByIDs(ctx, tx, []uuid.UUID{entryID})
		if eErr != nil {
			return fmt.Errorf("load registry entry: %w", eErr)
		}
		if len(entries) == 0 {
			return apierr.NotFound("registry entry %s not found", entryID)
		}
		entry := entries[0]
		if entry.UserID != rd.UserID && !rd.IsAdmin {
			return apierr.Forbidden("only the entry owner or an admin can remove it")
		}

		sprints, sErr := ps.sprintRepo.GetByIDs(ctx, tx, []uuid.UUID{entry.SprintID})
		if sErr != nil {
			return fmt.Errorf("load sprint: %w", sErr)
		}
		if len(sprints) == 0 {
			return apierr.NotFound("sprint %s not found", entry.SprintID)
		}
		s := sprints[0]
		if s.Status.Terminal() {
			return apierr.InvalidState("sprint %s is %s; its registry is frozen", s.ID, s.Status)
		}

		if dErr := ps.registryRepo.Delete(ctx, tx, entry.ID); dErr != nil {
			return fmt.Errorf("delete registry entry: %w", dErr)
		}

		completed := s.CompletedPoints - entry.TotalPoints
		if completed < 0 {
			completed = 0
		}
		userPoints, upErr := applyUserPointsDelta(s.UserPoints, entry.UserID, -entry.TotalPoints)
		if upErr != nil {
			return upErr
		}
		if tErr := ps.sprintRepo.UpdateTotals(ctx, tx, s.ID, completed, userPoints); tErr != nil {
			return fmt.Errorf("update sprint totals: %w", tErr)
		}
		if uErr := ps.userRepo.AddTotalPoints(ctx, tx, entry.UserID, -entry.TotalPoints); uErr != nil {
			return fmt.Errorf("update user total: %w", uErr)
		}
		removed = entry
		return nil
	})
	if err != nil {
		return err
	}

	ps.log.Info("points removed", "entryID", entryID, "sprintID", removed.SprintID, "total", removed.TotalPoints)
	ps.notifier.PointsRemoved(removed)
	return nil
}

func (ps *pointsService) ListSprintEntries(ctx context.Context, sprintID uuid.UUID) ([]*domain.PointsRegistryEntry, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || (!rd.IsAdmin && rd.Role != domain.RoleScrumMaster) {
		return nil, apierr.Forbidden("sprint-wide registry listing requires admin or scrum master")
	}
	entries, err := ps.registryRepo.ListBySprint(ctx, nil, sprintID)
	if err != nil {
		return nil, fmt.Errorf("list sprint entries: %w", err)
	}
	return entries, nil
}

func (ps *pointsService) ListUserEntries(ctx context.Context, userID uuid.UUID) ([]*domain.PointsRegistryEntry, error) {
	entries, err := ps.registryRepo.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("list user entries: %w", err)
	}
	return entries, nil
}

func (ps *pointsService) ListUserSprintEntries(ctx context.Context, userID, sprintID uuid.UUID) ([]*domain.PointsRegistryEntry, error) {
	entries, err := ps.registryRepo.ListByUserAndSprint(ctx, nil, userID, sprintID)
	if err != nil {
		return nil, fmt.Errorf("list user sprint entries: %w", err)
	}
	return entries, nil
}
