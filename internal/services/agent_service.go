package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/stwalsh4118/luxeestate/internal/logger"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/security"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

// AgentService defines the business operations on agents.
type AgentService interface {
	List(ctx context.Context, filter store.AgentFilter) ([]models.Agent, error)
	Get(ctx context.Context, id string) (*models.Agent, error)

	// Create and Update store the password as a bcrypt hash.
	Create(ctx context.Context, a models.Agent) (*models.Agent, error)
	Update(ctx context.Context, id string, patch models.AgentPatch) (*models.Agent, error)

	// UpdateStatus sets the agent's status. Any agent may leave ACTIVE,
	// even one who still has listings.
	UpdateStatus(ctx context.Context, id string, status models.AgentStatus) (*models.Agent, error)

	// Delete returns ErrNotFound for an unknown agent and a
	// *store.ConflictError while listings still reference it.
	Delete(ctx context.Context, id string) error

	// Reassign moves every listing of from to to and returns how many
	// moved. to must exist, differ from from and be ACTIVE.
	Reassign(ctx context.Context, from, to string) (int, error)
}

type agentService struct {
	store store.Store
	log   *logger.Logger
}

// NewAgentService creates a new instance of AgentService.
func NewAgentService(st store.Store, log *logger.Logger) AgentService {
	return &agentService{store: st, log: log}
}

func (s *agentService) List(ctx context.Context, filter store.AgentFilter) ([]models.Agent, error) {
	agents, err := s.store.Agents().List(ctx, filter)
	if err != nil {
		logger.FromContext(ctx, s.log).Error("Failed to list agents", err, nil)
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return agents, nil
}

func (s *agentService) Get(ctx context.Context, id string) (*models.Agent, error) {
	a, err := s.store.Agents().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get agent %s: %w", id, err)
	}
	return a, nil
}

func (s *agentService) Create(ctx context.Context, a models.Agent) (*models.Agent, error) {
	hash, err := security.HashPassword(a.Password)
	if err != nil {
		return nil, err
	}
	a.Password = hash

	created, err := s.store.Agents().Create(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	logger.FromContext(ctx, s.log).Info("Agent created", map[string]interface{}{
		"agent_id": created.ID,
		"email":    created.Email,
	})
	return created, nil
}

func (s *agentService) Update(ctx context.Context, id string, patch models.AgentPatch) (*models.Agent, error) {
	if patch.Password != nil {
		hash, err := security.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		patch.Password = &hash
	}

	updated, err := s.store.Agents().Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update agent %s: %w", id, err)
	}

	if patch.Status != nil {
		s.logStatusChange(ctx, updated)
	}
	return updated, nil
}

func (s *agentService) UpdateStatus(ctx context.Context, id string, status models.AgentStatus) (*models.Agent, error) {
	switch status {
	case models.AgentActive, models.AgentOnLeave, models.AgentBlocked:
	default:
		return nil, store.NewValidationError("status", "Must be one of: ACTIVE ON_LEAVE BLOCKED")
	}
	return s.Update(ctx, id, models.AgentPatch{Status: &status})
}

func (s *agentService) logStatusChange(ctx context.Context, a *models.Agent) {
	fields := map[string]interface{}{
		"agent_id": a.ID,
		"status":   a.Status,
	}
	if a.Status != models.AgentActive && a.ListingsCount > 0 {
		fields["listings"] = a.ListingsCount
		logger.FromContext(ctx, s.log).Warn("Agent deactivated with listings still assigned", fields)
		return
	}
	logger.FromContext(ctx, s.log).Info("Agent status changed", fields)
}

func (s *agentService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Agents().Get(ctx, id); err != nil {
		return fmt.Errorf("failed to get agent %s: %w", id, err)
	}

	count, err := s.store.Properties().CountByAgent(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count listings for agent %s: %w", id, err)
	}
	if count > 0 {
		logger.FromContext(ctx, s.log).Warn("Refusing to delete agent with listings", map[string]interface{}{
			"agent_id": id,
			"listings": count,
		})
		return store.NewAgentConflict(count)
	}

	// The store re-checks inside its own critical section.
	if err := s.store.Agents().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete agent %s: %w", id, err)
	}

	logger.FromContext(ctx, s.log).Info("Agent deleted", map[string]interface{}{"agent_id": id})
	return nil
}

func (s *agentService) Reassign(ctx context.Context, from, to string) (int, error) {
	if from == "" {
		return 0, store.NewValidationError("oldAgentId", "This field is required")
	}
	if to == "" {
		return 0, store.NewValidationError("newAgentId", "This field is required")
	}
	if from == to {
		return 0, store.NewValidationError("newAgentId", "Must differ from the current agent")
	}

	if _, err := s.store.Agents().Get(ctx, from); err != nil {
		return 0, fmt.Errorf("failed to get agent %s: %w", from, err)
	}

	target, err := s.store.Agents().Get(ctx, to)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return 0, store.NewValidationError("newAgentId", "Agent does not exist")
	case err != nil:
		return 0, fmt.Errorf("failed to get agent %s: %w", to, err)
	case target.Status != models.AgentActive:
		return 0, store.NewValidationError("newAgentId", "Agent must be ACTIVE to receive listings")
	}

	moved, err := s.store.Agents().Reassign(ctx, from, to)
	if err != nil {
		logger.FromContext(ctx, s.log).Error("Failed to reassign listings", err, map[string]interface{}{
			"from": from,
			"to":   to,
		})
		return 0, fmt.Errorf("failed to reassign listings: %w", err)
	}

	logger.FromContext(ctx, s.log).Info("Listings reassigned", map[string]interface{}{
		"from":  from,
		"to":    to,
		"moved": moved,
	})
	return moved, nil
}
