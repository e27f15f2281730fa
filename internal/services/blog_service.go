package services

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/luxeestate/internal/logger"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

// BlogService defines the operations on blog posts.
type BlogService interface {
	List(ctx context.Context, filter store.BlogFilter) ([]models.BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	Get(ctx context.Context, id string) (*models.BlogPost, error)
	Create(ctx context.Context, b models.BlogPost) (*models.BlogPost, error)
	Update(ctx context.Context, id string, patch models.BlogPostPatch) (*models.BlogPost, error)
	Delete(ctx context.Context, id string) error
}

type blogService struct {
	store store.Store
	log   *logger.Logger
}

// NewBlogService creates a new instance of BlogService.
func NewBlogService(st store.Store, log *logger.Logger) BlogService {
	return &blogService{store: st, log: log}
}

func (s *blogService) List(ctx context.Context, filter store.BlogFilter) ([]models.BlogPost, error) {
	posts, err := s.store.Blog().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list blog posts: %w", err)
	}
	return posts, nil
}

func (s *blogService) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	b, err := s.store.Blog().GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get blog post %q: %w", slug, err)
	}
	return b, nil
}

func (s *blogService) Get(ctx context.Context, id string) (*models.BlogPost, error) {
	b, err := s.store.Blog().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get blog post %s: %w", id, err)
	}
	return b, nil
}

func (s *blogService) Create(ctx context.Context, b models.BlogPost) (*models.BlogPost, error) {
	created, err := s.store.Blog().Create(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("failed to create blog post: %w", err)
	}
	logger.FromContext(ctx, s.log).Info("Blog post published", map[string]interface{}{
		"post_id": created.ID,
		"slug":    created.Slug,
	})
	return created, nil
}

func (s *blogService) Update(ctx context.Context, id string, patch models.BlogPostPatch) (*models.BlogPost, error) {
	updated, err := s.store.Blog().Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update blog post %s: %w", id, err)
	}
	return updated, nil
}

func (s *blogService) Delete(ctx context.Context, id string) error {
	if err := s.store.Blog().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete blog post %s: %w", id, err)
	}
	return nil
}
