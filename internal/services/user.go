package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sprintflow/sprintflow-backend/internal/data/repos"
	"github.com/sprintflow/sprintflow-backend/internal/domain"
	"github.com/sprintflow/sprintflow-backend/internal/pkg/logger"
	"github.com/sprintflow/sprintflow-backend/internal/platform/apierr"
	"github.com/sprintflow/sprintflow-backend/internal/requestdata"
)

type UserService interface {
	GetMe(ctx context.Context) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// Leaderboard returns all users ordered by lifetime completed points,
	// highest first.
	Leaderboard(ctx context.Context) ([]*domain.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string, isAdmin bool) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, userTokenRepo repos.UserTokenRepo) UserService {
	return &userService{
		db:            db,
		log:           log.With("service", "UserService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
	}
}

func (us *userService) GetMe(ctx context.Context) (*domain.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	return us.Get(ctx, rd.UserID)
}

func (us *userService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := us.userRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (us *userService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.NotFound("user %s not found", id)
	}
	return users[0], nil
}

func (us *userService) Leaderboard(ctx context.Context) ([]*domain.User, error) {
	users, err := us.userRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].TotalPoints > users[j].TotalPoints
	})
	return users, nil
}

func (us *userService) UpdateRole(ctx context.Context, id uuid.UUID, role string, isAdmin bool) (*domain.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || !rd.IsAdmin {
		return nil, apierr.Forbidden("admin privileges required")
	}
	if !domain.ValidRole(role) {
		return nil, apierr.Validation("unknown role %q", role)
	}

	if _, err := us.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return us.userRepo.UpdateRole(ctx, tx, id, role, isAdmin)
	}); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	us.log.Info("user role updated", "userID", id, "role", role, "isAdmin", isAdmin)
	return us.Get(ctx, id)
}

func (us *userService) Delete(ctx context.Context, id uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || !rd.IsAdmin {
		return apierr.Forbidden("admin privileges required")
	}
	if rd.UserID == id {
		return apierr.InvalidState("admins cannot delete their own account")
	}
	if _, err := us.Get(ctx, id); err != nil {
		return err
	}
	return us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := us.userTokenRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{id}); err != nil {
			return fmt.Errorf("delete user tokens: %w", err)
		}
		if err := us.userRepo.Delete(ctx, tx, id); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}
