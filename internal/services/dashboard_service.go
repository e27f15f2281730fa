package services

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/luxeestate/internal/logger"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

// DashboardService reports the admin dashboard aggregates.
type DashboardService interface {
	// Stats counts all properties, NEW leads, ACTIVE agents and all users.
	Stats(ctx context.Context) (models.DashboardStats, error)
}

type dashboardService struct {
	store store.Store
	log   *logger.Logger
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(st store.Store, log *logger.Logger) DashboardService {
	return &dashboardService{store: st, log: log}
}

func (s *dashboardService) Stats(ctx context.Context) (models.DashboardStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		logger.FromContext(ctx, s.log).Error("Failed to compute dashboard stats", err, map[string]interface{}{
			"mode": s.store.Mode(),
		})
		return models.DashboardStats{}, fmt.Errorf("failed to compute dashboard stats: %w", err)
	}
	return stats, nil
}
