package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

type propertyClient struct{ c *Client }

func (pc *propertyClient) List(ctx context.Context, filter store.PropertyFilter) ([]models.Property, error) {
	q := url.Values{}
	if filter.MinPrice != nil {
		q.Set("minPrice", strconv.FormatFloat(*filter.MinPrice, 'f', -1, 64))
	}
	if filter.MaxPrice != nil {
		q.Set("maxPrice", strconv.FormatFloat(*filter.MaxPrice, 'f', -1, 64))
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.AgentID != "" {
		q.Set("agentId", filter.AgentID)
	}
	if filter.SortBy != "" {
		q.Set("sortBy", string(filter.SortBy))
	}

	props := []models.Property{}
	if err := pc.c.do(ctx, http.MethodGet, "/properties", q, nil, &props); err != nil {
		return nil, err
	}
	return props, nil
}

func (pc *propertyClient) GetBySlug(ctx context.Context, slug string) (*models.Property, error) {
	var p models.Property
	if err := pc.c.do(ctx, http.MethodGet, "/properties/"+escape(slug), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get goes through the slug route, which also resolves ids.
func (pc *propertyClient) Get(ctx context.Context, id string) (*models.Property, error) {
	p, err := pc.GetBySlug(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := matchID(id, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (pc *propertyClient) Create(ctx context.Context, p models.Property) (*models.Property, error) {
	var created models.Property
	if err := pc.c.do(ctx, http.MethodPost, "/properties", nil, p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (pc *propertyClient) Update(ctx context.Context, id string, patch models.PropertyPatch) (*models.Property, error) {
	var updated models.Property
	if err := pc.c.do(ctx, http.MethodPut, "/properties/"+escape(id), nil, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (pc *propertyClient) Delete(ctx context.Context, id string) error {
	return pc.c.do(ctx, http.MethodDelete, "/properties/"+escape(id), nil, nil, nil)
}

func (pc *propertyClient) CountByAgent(ctx context.Context, agentID string) (int, error) {
	props, err := pc.List(ctx, store.PropertyFilter{AgentID: agentID})
	if err != nil {
		return 0, err
	}
	return len(props), nil
}

type agentClient struct{ c *Client }

func (ac *agentClient) List(ctx context.Context, filter store.AgentFilter) ([]models.Agent, error) {
	q := url.Values{}
	if filter.IncludeInactive {
		q.Set("includeInactive", "true")
	}

	agents := []models.Agent{}
	if err := ac.c.do(ctx, http.MethodGet, "/agents", q, nil, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

func (ac *agentClient) Get(ctx context.Context, id string) (*models.Agent, error) {
	var a models.Agent
	if err := ac.c.do(ctx, http.MethodGet, "/agents/"+escape(id), nil, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByEmail scans the full agent list. The API returns agents without
// their password hash.
func (ac *agentClient) GetByEmail(ctx context.Context, email string) (*models.Agent, error) {
	agents, err := ac.List(ctx, store.AgentFilter{IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	for i := range agents {
		if strings.EqualFold(agents[i].Email, email) {
			return &agents[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (ac *agentClient) Create(ctx context.Context, a models.Agent) (*models.Agent, error) {
	var created models.Agent
	if err := ac.c.do(ctx, http.MethodPost, "/agents", nil, a, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (ac *agentClient) Update(ctx context.Context, id string, patch models.AgentPatch) (*models.Agent, error) {
	var updated models.Agent
	if err := ac.c.do(ctx, http.MethodPut, "/agents/"+escape(id), nil, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (ac *agentClient) Delete(ctx context.Context, id string) error {
	return ac.c.do(ctx, http.MethodDelete, "/agents/"+escape(id), nil, nil, nil)
}

type reassignBody struct {
	OldAgentID string `json:"oldAgentId"`
	NewAgentID string `json:"newAgentId"`
}

type reassignResult struct {
	Success bool `json:"success"`
	Moved   int  `json:"moved"`
}

func (ac *agentClient) Reassign(ctx context.Context, from, to string) (int, error) {
	var res reassignResult
	if err := ac.c.do(ctx, http.MethodPost, "/agents/reassign", nil, reassignBody{OldAgentID: from, NewAgentID: to}, &res); err != nil {
		return 0, err
	}
	return res.Moved, nil
}

type userClient struct{ c *Client }

func (uc *userClient) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := uc.c.do(ctx, http.MethodGet, "/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (uc *userClient) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := uc.c.do(ctx, http.MethodGet, "/users/"+escape(id), nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (uc *userClient) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := uc.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (uc *userClient) Create(ctx context.Context, u models.User) (*models.User, error) {
	var created models.User
	if err := uc.c.do(ctx, http.MethodPost, "/users", nil, u, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (uc *userClient) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	var updated models.User
	if err := uc.c.do(ctx, http.MethodPut, "/users/"+escape(id), nil, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (uc *userClient) Delete(ctx context.Context, id string) error {
	return uc.c.do(ctx, http.MethodDelete, "/users/"+escape(id), nil, nil, nil)
}

func (uc *userClient) ToggleBlock(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := uc.c.do(ctx, http.MethodPut, "/users/"+escape(id)+"/toggle-block", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

type leadClient struct{ c *Client }

func (lc *leadClient) List(ctx context.Context, filter store.LeadFilter) ([]models.Lead, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.PropertyID != "" {
		q.Set("propertyId", filter.PropertyID)
	}
	if filter.AssignedAgentID != "" {
		q.Set("assignedAgentId", filter.AssignedAgentID)
	}

	leads := []models.Lead{}
	if err := lc.c.do(ctx, http.MethodGet, "/leads", q, nil, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

func (lc *leadClient) Get(ctx context.Context, id string) (*models.Lead, error) {
	var l models.Lead
	if err := lc.c.do(ctx, http.MethodGet, "/leads/"+escape(id), nil, nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (lc *leadClient) Create(ctx context.Context, l models.Lead) (*models.Lead, error) {
	var created models.Lead
	if err := lc.c.do(ctx, http.MethodPost, "/leads", nil, l, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (lc *leadClient) Update(ctx context.Context, id string, patch models.LeadPatch) (*models.Lead, error) {
	var updated models.Lead
	if err := lc.c.do(ctx, http.MethodPut, "/leads/"+escape(id), nil, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (lc *leadClient) Delete(ctx context.Context, id string) error {
	return lc.c.do(ctx, http.MethodDelete, "/leads/"+escape(id), nil, nil, nil)
}

type blogClient struct{ c *Client }

func (bc *blogClient) List(ctx context.Context, filter store.BlogFilter) ([]models.BlogPost, error) {
	q := url.Values{}
	if filter.AuthorID != "" {
		q.Set("authorId", filter.AuthorID)
	}

	posts := []models.BlogPost{}
	if err := bc.c.do(ctx, http.MethodGet, "/blog", q, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (bc *blogClient) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var b models.BlogPost
	if err := bc.c.do(ctx, http.MethodGet, "/blog/"+escape(slug), nil, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (bc *blogClient) Get(ctx context.Context, id string) (*models.BlogPost, error) {
	b, err := bc.GetBySlug(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := matchID(id, b.ID); err != nil {
		return nil, err
	}
	return b, nil
}

func (bc *blogClient) Create(ctx context.Context, b models.BlogPost) (*models.BlogPost, error) {
	var created models.BlogPost
	if err := bc.c.do(ctx, http.MethodPost, "/blog", nil, b, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (bc *blogClient) Update(ctx context.Context, id string, patch models.BlogPostPatch) (*models.BlogPost, error) {
	var updated models.BlogPost
	if err := bc.c.do(ctx, http.MethodPut, "/blog/"+escape(id), nil, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (bc *blogClient) Delete(ctx context.Context, id string) error {
	return bc.c.do(ctx, http.MethodDelete, "/blog/"+escape(id), nil, nil, nil)
}
