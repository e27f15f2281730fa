package services

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/luxeestate/internal/logger"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/security"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

// UserService defines the business operations on site accounts.
type UserService interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, u models.User) (*models.User, error)
	Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id string) error

	// ToggleBlock flips the blocked flag. Applying it twice restores the
	// original account.
	ToggleBlock(ctx context.Context, id string) (*models.User, error)
}

type userService struct {
	store store.Store
	log   *logger.Logger
}

// NewUserService creates a new instance of UserService.
func NewUserService(st store.Store, log *logger.Logger) UserService {
	return &userService{store: st, log: log}
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := s.store.Users().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return u, nil
}

func (s *userService) Create(ctx context.Context, u models.User) (*models.User, error) {
	hash, err := security.HashPassword(u.Password)
	if err != nil {
		return nil, err
	}
	u.Password = hash

	created, err := s.store.Users().Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.FromContext(ctx, s.log).Info("User created", map[string]interface{}{
		"user_id": created.ID,
		"role":    created.Role,
	})
	return created, nil
}

func (s *userService) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	if patch.Password != nil {
		hash, err := security.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		patch.Password = &hash
	}

	updated, err := s.store.Users().Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", id, err)
	}
	return updated, nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	if err := s.store.Users().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	logger.FromContext(ctx, s.log).Info("User deleted", map[string]interface{}{"user_id": id})
	return nil
}

func (s *userService) ToggleBlock(ctx context.Context, id string) (*models.User, error) {
	u, err := s.store.Users().ToggleBlock(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle block for user %s: %w", id, err)
	}

	logger.FromContext(ctx, s.log).Info("User block toggled", map[string]interface{}{
		"user_id": u.ID,
		"blocked": u.Blocked,
	})
	return u, nil
}
