// Package store defines the data-access contract shared by the PostgreSQL
// repositories, the remote API client and the local key-value store.
package store

import (
	"context"

	"github.com/stwalsh4118/luxeestate/internal/models"
)

// Mode names the backing implementation selected at start-up.
type Mode string

const (
	ModePostgres Mode = "postgres"
	ModeRemote   Mode = "remote"
	ModeLocal    Mode = "local"
)

// Store is the entry point to every entity collection.
type Store interface {
	Properties() PropertyStore
	Agents() AgentStore
	Users() UserStore
	Leads() LeadStore
	Blog() BlogStore

	// Stats returns the dashboard aggregates.
	Stats(ctx context.Context) (models.DashboardStats, error)

	// Mode reports which implementation is serving the calls.
	Mode() Mode
}

// PropertyStore provides access to listings.
type PropertyStore interface {
	// List returns the properties matching every supplied filter key,
	// sorted per filter.SortBy. Returns an empty slice, never nil.
	List(ctx context.Context, filter PropertyFilter) ([]models.Property, error)

	// GetBySlug returns ErrNotFound if no property has the slug.
	GetBySlug(ctx context.Context, slug string) (*models.Property, error)
	Get(ctx context.Context, id string) (*models.Property, error)

	// Create assigns the id, creation time and a unique slug.
	Create(ctx context.Context, p models.Property) (*models.Property, error)
	Update(ctx context.Context, id string, patch models.PropertyPatch) (*models.Property, error)
	Delete(ctx context.Context, id string) error

	// CountByAgent returns how many properties reference the agent.
	CountByAgent(ctx context.Context, agentID string) (int, error)
}

// AgentStore provides access to agents. Returned agents carry a computed
// ListingsCount.
type AgentStore interface {
	List(ctx context.Context, filter AgentFilter) ([]models.Agent, error)
	Get(ctx context.Context, id string) (*models.Agent, error)
	GetByEmail(ctx context.Context, email string) (*models.Agent, error)
	Create(ctx context.Context, a models.Agent) (*models.Agent, error)
	Update(ctx context.Context, id string, patch models.AgentPatch) (*models.Agent, error)

	// Delete fails with *ConflictError while properties still reference
	// the agent.
	Delete(ctx context.Context, id string) error

	// Reassign repoints every property of from to to and returns how many
	// moved.
	Reassign(ctx context.Context, from, to string) (int, error)
}

// UserStore provides access to site accounts.
type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u models.User) (*models.User, error)
	Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id string) error
	ToggleBlock(ctx context.Context, id string) (*models.User, error)
}

// LeadStore provides access to inquiries.
type LeadStore interface {
	// List returns matching leads, newest first.
	List(ctx context.Context, filter LeadFilter) ([]models.Lead, error)
	Get(ctx context.Context, id string) (*models.Lead, error)
	Create(ctx context.Context, l models.Lead) (*models.Lead, error)
	Update(ctx context.Context, id string, patch models.LeadPatch) (*models.Lead, error)
	Delete(ctx context.Context, id string) error
}

// BlogStore provides access to blog posts.
type BlogStore interface {
	// List returns matching posts, newest first.
	List(ctx context.Context, filter BlogFilter) ([]models.BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	Get(ctx context.Context, id string) (*models.BlogPost, error)
	Create(ctx context.Context, b models.BlogPost) (*models.BlogPost, error)
	Update(ctx context.Context, id string, patch models.BlogPostPatch) (*models.BlogPost, error)
	Delete(ctx context.Context, id string) error
}
