package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stwalsh4118/luxeestate/internal/logger"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/security"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountBlocked     = errors.New("account is blocked")
)

// Account is the identity returned by a successful login. It is shaped
// the same for users and agents and never carries the password.
type Account struct {
	ID     string          `json:"id" yaml:"id"`
	Name   string          `json:"name" yaml:"name"`
	Email  string          `json:"email" yaml:"email"`
	Role   models.UserRole `json:"role" yaml:"role"`
	Avatar string          `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// AuthService checks credentials. It issues no tokens.
type AuthService interface {
	// Authenticate looks the email up among users first, then agents.
	// A user without a password defers to the agent with the same email.
	// Returns ErrInvalidCredentials for an unknown email or a wrong
	// password and ErrAccountBlocked for a blocked account.
	Authenticate(ctx context.Context, email, password string) (*Account, error)
}

type authService struct {
	store store.Store
	log   *logger.Logger
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(st store.Store, log *logger.Logger) AuthService {
	return &authService{store: st, log: log}
}

func (s *authService) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	// A user row without a password is the profile of an agent whose
	// credentials live on the agent record. Its blocked flag still counts.
	userBlocked := false
	u, err := s.store.Users().GetByEmail(ctx, email)
	switch {
	case err == nil && u.Password != "":
		return s.check(ctx, email, u.Password, password, u.Blocked, &Account{
			ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Avatar: u.Avatar,
		})
	case err == nil:
		userBlocked = u.Blocked
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	a, err := s.store.Agents().GetByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		logger.FromContext(ctx, s.log).Info("Login failed", map[string]interface{}{"email": email, "reason": "unknown"})
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("failed to look up agent: %w", err)
	}
	return s.check(ctx, email, a.Password, password, userBlocked || a.Status == models.AgentBlocked, &Account{
		ID: a.ID, Name: a.Name, Email: a.Email, Role: models.RoleAgent, Avatar: a.Avatar,
	})
}

// check verifies the password before revealing the blocked state.
func (s *authService) check(ctx context.Context, email, hash, password string, blocked bool, acct *Account) (*Account, error) {
	if !security.CheckPassword(hash, password) {
		logger.FromContext(ctx, s.log).Info("Login failed", map[string]interface{}{"email": email, "reason": "password"})
		return nil, ErrInvalidCredentials
	}
	if blocked {
		logger.FromContext(ctx, s.log).Warn("Blocked account attempted login", map[string]interface{}{"account_id": acct.ID})
		return nil, ErrAccountBlocked
	}

	logger.FromContext(ctx, s.log).Info("Login succeeded", map[string]interface{}{
		"account_id": acct.ID,
		"role":       acct.Role,
	})
	return acct, nil
}
