package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/stwalsh4118/luxeestate/internal/logger"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

// LeadService defines the business operations on inquiries. Reads and
// writes are scoped to the actor carried by the context (see
// models.ActorFrom); a lead the actor cannot see is reported as not found.
type LeadService interface {
	// List returns every lead to an admin or the system actor. Any other
	// actor sees the leads on properties they own plus the leads assigned
	// to them.
	List(ctx context.Context, filter store.LeadFilter) ([]models.Lead, error)
	Get(ctx context.Context, id string) (*models.Lead, error)

	// Create always stores the lead with status NEW.
	Create(ctx context.Context, l models.Lead) (*models.Lead, error)
	Update(ctx context.Context, id string, patch models.LeadPatch) (*models.Lead, error)
	Delete(ctx context.Context, id string) error

	Assign(ctx context.Context, id, agentID string) (*models.Lead, error)
	UpdateStatus(ctx context.Context, id string, status models.LeadStatus) (*models.Lead, error)
}

type leadService struct {
	store store.Store
	log   *logger.Logger
}

// NewLeadService creates a new instance of LeadService.
func NewLeadService(st store.Store, log *logger.Logger) LeadService {
	return &leadService{store: st, log: log}
}

func (s *leadService) List(ctx context.Context, filter store.LeadFilter) ([]models.Lead, error) {
	leads, err := s.store.Leads().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	actor := models.ActorFrom(ctx)
	if actor.IsAdmin() {
		return leads, nil
	}

	owned, err := s.ownedProperties(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Lead, 0, len(leads))
	for _, l := range leads {
		if l.VisibleTo(actor.ID, owned) {
			visible = append(visible, l)
		}
	}

	logger.FromContext(ctx, s.log).Debug("Leads filtered for actor", map[string]interface{}{
		"actor_id": actor.ID,
		"total":    len(leads),
		"visible":  len(visible),
	})
	return visible, nil
}

func (s *leadService) ownedProperties(ctx context.Context, agentID string) (map[string]struct{}, error) {
	props, err := s.store.Properties().List(ctx, store.PropertyFilter{AgentID: agentID})
	if err != nil {
		return nil, fmt.Errorf("failed to list properties for agent %s: %w", agentID, err)
	}
	owned := make(map[string]struct{}, len(props))
	for _, p := range props {
		owned[p.ID] = struct{}{}
	}
	return owned, nil
}

// Get hides leads the actor may not see behind ErrNotFound.
func (s *leadService) Get(ctx context.Context, id string) (*models.Lead, error) {
	l, err := s.store.Leads().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lead %s: %w", id, err)
	}

	actor := models.ActorFrom(ctx)
	if actor.IsAdmin() {
		return l, nil
	}
	owned, err := s.ownedProperties(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if !l.VisibleTo(actor.ID, owned) {
		return nil, fmt.Errorf("lead %s: %w", id, store.ErrNotFound)
	}
	return l, nil
}

func (s *leadService) Create(ctx context.Context, l models.Lead) (*models.Lead, error) {
	l.Status = models.LeadNew

	if l.PropertyID != "" {
		_, err := s.store.Properties().Get(ctx, l.PropertyID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, store.NewValidationError("propertyId", "Property does not exist")
		case err != nil:
			return nil, fmt.Errorf("failed to look up property %s: %w", l.PropertyID, err)
		}
	}

	created, err := s.store.Leads().Create(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	logger.FromContext(ctx, s.log).Info("Lead received", map[string]interface{}{
		"lead_id":     created.ID,
		"property_id": created.PropertyID,
	})
	return created, nil
}

// requireVisible applies the Get visibility rule to writes.
func (s *leadService) requireVisible(ctx context.Context, id string) error {
	if models.ActorFrom(ctx).IsAdmin() {
		return nil
	}
	_, err := s.Get(ctx, id)
	return err
}

func (s *leadService) Update(ctx context.Context, id string, patch models.LeadPatch) (*models.Lead, error) {
	if err := s.requireVisible(ctx, id); err != nil {
		return nil, err
	}
	if patch.AssignedAgentID != nil && *patch.AssignedAgentID != "" {
		if err := s.requireAgent(ctx, *patch.AssignedAgentID); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.Leads().Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update lead %s: %w", id, err)
	}
	return updated, nil
}

func (s *leadService) Delete(ctx context.Context, id string) error {
	if err := s.requireVisible(ctx, id); err != nil {
		return err
	}
	if err := s.store.Leads().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete lead %s: %w", id, err)
	}
	logger.FromContext(ctx, s.log).Info("Lead deleted", map[string]interface{}{"lead_id": id})
	return nil
}

func (s *leadService) Assign(ctx context.Context, id, agentID string) (*models.Lead, error) {
	if agentID == "" {
		return nil, store.NewValidationError("agentId", "This field is required")
	}

	updated, err := s.Update(ctx, id, models.LeadPatch{AssignedAgentID: &agentID})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).Info("Lead assigned", map[string]interface{}{
		"lead_id":  id,
		"agent_id": agentID,
	})
	return updated, nil
}

func (s *leadService) UpdateStatus(ctx context.Context, id string, status models.LeadStatus) (*models.Lead, error) {
	switch status {
	case models.LeadNew, models.LeadContacted, models.LeadClosed:
	default:
		return nil, store.NewValidationError("status", "Must be one of: NEW CONTACTED CLOSED")
	}
	return s.Update(ctx, id, models.LeadPatch{Status: &status})
}

func (s *leadService) requireAgent(ctx context.Context, agentID string) error {
	_, err := s.store.Agents().Get(ctx, agentID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return store.NewValidationError("agentId", "Agent does not exist")
	case err != nil:
		return fmt.Errorf("failed to look up agent %s: %w", agentID, err)
	}
	return nil
}
