package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/stwalsh4118/luxeestate/internal/logger"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

// PropertyService defines the business operations on listings.
type PropertyService interface {
	// List returns the listings matching filter. An unknown SortBy is a
	// validation error rather than a silent fallback.
	List(ctx context.Context, filter store.PropertyFilter) ([]models.Property, error)
	GetBySlug(ctx context.Context, slug string) (*models.Property, error)
	Get(ctx context.Context, id string) (*models.Property, error)

	// Create returns a ValidationError on agentId when the agent does not
	// exist. Update applies the same check when the agent changes.
	Create(ctx context.Context, p models.Property) (*models.Property, error)
	Update(ctx context.Context, id string, patch models.PropertyPatch) (*models.Property, error)
	Delete(ctx context.Context, id string) error
}

type propertyService struct {
	store store.Store
	log   *logger.Logger
}

// NewPropertyService creates a new instance of PropertyService.
func NewPropertyService(st store.Store, log *logger.Logger) PropertyService {
	return &propertyService{store: st, log: log}
}

func (s *propertyService) List(ctx context.Context, filter store.PropertyFilter) ([]models.Property, error) {
	if !store.ValidSortOrder(string(filter.SortBy)) {
		return nil, store.NewValidationError("sortBy", "Must be one of: newest price_asc price_desc")
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, store.NewValidationError("minPrice", "Must not exceed maxPrice")
	}

	props, err := s.store.Properties().List(ctx, filter)
	if err != nil {
		logger.FromContext(ctx, s.log).Error("Failed to list properties", err, map[string]interface{}{
			"search": filter.Search,
			"status": filter.Status,
		})
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	logger.FromContext(ctx, s.log).Debug("Properties listed", map[string]interface{}{
		"count":   len(props),
		"sort_by": filter.SortBy,
	})
	return props, nil
}

func (s *propertyService) GetBySlug(ctx context.Context, slug string) (*models.Property, error) {
	p, err := s.store.Properties().GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get property %q: %w", slug, err)
	}
	return p, nil
}

func (s *propertyService) Get(ctx context.Context, id string) (*models.Property, error) {
	p, err := s.store.Properties().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get property %s: %w", id, err)
	}
	return p, nil
}

func (s *propertyService) Create(ctx context.Context, p models.Property) (*models.Property, error) {
	if err := s.requireAgent(ctx, p.AgentID); err != nil {
		return nil, err
	}

	created, err := s.store.Properties().Create(ctx, p)
	if err != nil {
		logger.FromContext(ctx, s.log).Warn("Failed to create property", map[string]interface{}{
			"title": p.Title,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	logger.FromContext(ctx, s.log).Info("Property created", map[string]interface{}{
		"property_id": created.ID,
		"slug":        created.Slug,
		"agent_id":    created.AgentID,
	})
	return created, nil
}

func (s *propertyService) Update(ctx context.Context, id string, patch models.PropertyPatch) (*models.Property, error) {
	if patch.AgentID != nil {
		current, err := s.store.Properties().Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get property %s: %w", id, err)
		}
		if *patch.AgentID != current.AgentID {
			if err := s.requireAgent(ctx, *patch.AgentID); err != nil {
				return nil, err
			}
		}
	}

	updated, err := s.store.Properties().Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update property %s: %w", id, err)
	}

	logger.FromContext(ctx, s.log).Info("Property updated", map[string]interface{}{
		"property_id": updated.ID,
		"slug":        updated.Slug,
	})
	return updated, nil
}

func (s *propertyService) Delete(ctx context.Context, id string) error {
	if err := s.store.Properties().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete property %s: %w", id, err)
	}
	logger.FromContext(ctx, s.log).Info("Property deleted", map[string]interface{}{"property_id": id})
	return nil
}

// requireAgent turns a missing agent into a field error on agentId.
func (s *propertyService) requireAgent(ctx context.Context, agentID string) error {
	if agentID == "" {
		return store.NewValidationError("agentId", "This field is required")
	}
	_, err := s.store.Agents().Get(ctx, agentID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return store.NewValidationError("agentId", "Agent does not exist")
	case err != nil:
		return fmt.Errorf("failed to look up agent %s: %w", agentID, err)
	}
	return nil
}
