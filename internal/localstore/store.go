package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stwalsh4118/luxeestate/internal/logger"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/seed"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

// Storage keys, one per entity kind, each holding the full JSON array.
const (
	KeyProperties = "luxe_properties"
	KeyAgents     = "luxe_agents"
	KeyUsers      = "luxe_users"
	KeyLeads      = "luxe_leads"
	KeyBlog       = "luxe_blog"
)

// Store keeps every collection in memory and writes the affected
// collection to the KV after each mutation. A mutation becomes visible
// only once its write succeeded, so a failed write leaves the previous
// state in place. Records handed out are copies; slices inside them are
// never shared with the stored state.
type Store struct {
	kv  KV
	log *logger.Logger
	now func() time.Time

	mu         sync.RWMutex
	properties []models.Property
	agents     []models.Agent
	users      []models.User
	leads      []models.Lead
	blog       []models.BlogPost
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open loads every collection from kv, seeding absent or unreadable
// collections from the embedded demo dataset.
func Open(ctx context.Context, kv KV, log *logger.Logger, opts ...Option) (*Store, error) {
	ds, err := seed.Load()
	if err != nil {
		return nil, err
	}

	s := &Store{
		kv:  kv,
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}

	s.properties = load(ctx, s, KeyProperties, ds.Properties)
	s.agents = load(ctx, s, KeyAgents, ds.Agents)
	s.users = load(ctx, s, KeyUsers, ds.Users)
	s.leads = load(ctx, s, KeyLeads, ds.Leads)
	s.blog = load(ctx, s, KeyBlog, ds.Blog)

	for i := range s.users {
		s.users[i].Normalize()
	}

	return s, nil
}

// load reads one collection. Missing keys fall back to the seed silently;
// unreadable ones fall back with a warning.
func load[T any](ctx context.Context, s *Store, key string, fallback []T) []T {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.log.Warn("Local store unreadable, using seed data", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		return fallback
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		s.log.Warn("Local store value corrupt, using seed data", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return fallback
	}
	if items == nil {
		items = []T{}
	}
	return items
}

// persist writes a whole collection.
func persist[T any](ctx context.Context, kv KV, key string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}

// replaced returns a copy of items with position i set to item.
func replaced[T any](items []T, i int, item T) []T {
	next := make([]T, len(items))
	copy(next, items)
	next[i] = item
	return next
}

// removed returns a copy of items without position i.
func removed[T any](items []T, i int) []T {
	next := make([]T, 0, len(items)-1)
	next = append(next, items[:i]...)
	return append(next, items[i+1:]...)
}

// prepended returns a copy of items with item in front.
func prepended[T any](items []T, item T) []T {
	next := make([]T, 0, len(items)+1)
	next = append(next, item)
	return append(next, items...)
}

// Properties returns the property collection.
func (s *Store) Properties() store.PropertyStore { return &propertyStore{s: s} }

// Agents returns the agent collection.
func (s *Store) Agents() store.AgentStore { return &agentStore{s: s} }

// Users returns the user collection.
func (s *Store) Users() store.UserStore { return &userStore{s: s} }

// Leads returns the lead collection.
func (s *Store) Leads() store.LeadStore { return &leadStore{s: s} }

// Blog returns the blog collection.
func (s *Store) Blog() store.BlogStore { return &blogStore{s: s} }

// Mode reports local mode.
func (s *Store) Mode() store.Mode { return store.ModeLocal }

// Stats counts the dashboard aggregates.
func (s *Store) Stats(_ context.Context) (models.DashboardStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.DashboardStats{
		TotalProperties: len(s.properties),
		TotalUsers:      len(s.users),
	}
	for _, l := range s.leads {
		if l.Status == models.LeadNew {
			stats.ActiveLeads++
		}
	}
	for _, a := range s.agents {
		if a.Status == models.AgentActive {
			stats.TotalAgents++
		}
	}
	return stats, nil
}

// Ping checks the KV medium when it supports a liveness check.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.kv.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases the KV medium.
func (s *Store) Close() error {
	return s.kv.Close()
}

// countByAgent must be called with s.mu held.
func (s *Store) countByAgent(agentID string) int {
	n := 0
	for _, p := range s.properties {
		if p.AgentID == agentID {
			n++
		}
	}
	return n
}

// withListings must be called with s.mu held.
func (s *Store) withListings(a models.Agent) *models.Agent {
	a.ListingsCount = s.countByAgent(a.ID)
	return &a
}

type propertyStore struct{ s *Store }

func (ps *propertyStore) List(_ context.Context, filter store.PropertyFilter) ([]models.Property, error) {
	ps.s.mu.RLock()
	defer ps.s.mu.RUnlock()

	result := make([]models.Property, 0, len(ps.s.properties))
	for _, p := range ps.s.properties {
		if filter.Matches(p) {
			result = append(result, p.Clone())
		}
	}
	store.SortProperties(result, filter.SortBy)
	return result, nil
}

func (ps *propertyStore) GetBySlug(_ context.Context, slug string) (*models.Property, error) {
	ps.s.mu.RLock()
	defer ps.s.mu.RUnlock()

	i := indexOf(ps.s.properties, func(p models.Property) bool { return p.Slug == slug })
	if i < 0 {
		return nil, store.ErrNotFound
	}
	p := ps.s.properties[i].Clone()
	return &p, nil
}

func (ps *propertyStore) Get(_ context.Context, id string) (*models.Property, error) {
	ps.s.mu.RLock()
	defer ps.s.mu.RUnlock()

	i := indexOf(ps.s.properties, func(p models.Property) bool { return p.ID == id })
	if i < 0 {
		return nil, store.ErrNotFound
	}
	p := ps.s.properties[i].Clone()
	return &p, nil
}

// slugTaken must be called with s.mu held. exceptID lets an update keep
// checking against every other property.
func (ps *propertyStore) slugTaken(exceptID string) func(string) (bool, error) {
	return func(candidate string) (bool, error) {
		i := indexOf(ps.s.properties, func(p models.Property) bool {
			return p.Slug == candidate && p.ID != exceptID
		})
		return i >= 0, nil
	}
}

func (ps *propertyStore) Create(ctx context.Context, p models.Property) (*models.Property, error) {
	p.Normalize()
	if err := store.Validate(p); err != nil {
		return nil, err
	}

	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	slug, err := store.GenerateSlug(p.Title, ps.slugTaken(""))
	if err != nil {
		return nil, err
	}
	p.ID = uuid.NewString()
	p.Slug = slug
	p.CreatedAt = ps.s.now()

	next := prepended(ps.s.properties, p.Clone())
	if err := persist(ctx, ps.s.kv, KeyProperties, next); err != nil {
		return nil, err
	}
	ps.s.properties = next
	return &p, nil
}

func (ps *propertyStore) Update(ctx context.Context, id string, patch models.PropertyPatch) (*models.Property, error) {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	i := indexOf(ps.s.properties, func(p models.Property) bool { return p.ID == id })
	if i < 0 {
		return nil, store.ErrNotFound
	}

	p := ps.s.properties[i]
	if patch.Apply(&p) {
		slug, err := store.GenerateSlug(p.Title, ps.slugTaken(p.ID))
		if err != nil {
			return nil, err
		}
		p.Slug = slug
	}
	if err := store.Validate(p); err != nil {
		return nil, err
	}

	next := replaced(ps.s.properties, i, p)
	if err := persist(ctx, ps.s.kv, KeyProperties, next); err != nil {
		return nil, err
	}
	ps.s.properties = next
	out := p.Clone()
	return &out, nil
}

func (ps *propertyStore) Delete(ctx context.Context, id string) error {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	i := indexOf(ps.s.properties, func(p models.Property) bool { return p.ID == id })
	if i < 0 {
		return store.ErrNotFound
	}

	next := removed(ps.s.properties, i)
	if err := persist(ctx, ps.s.kv, KeyProperties, next); err != nil {
		return err
	}
	ps.s.properties = next
	return nil
}

func (ps *propertyStore) CountByAgent(_ context.Context, agentID string) (int, error) {
	ps.s.mu.RLock()
	defer ps.s.mu.RUnlock()
	return ps.s.countByAgent(agentID), nil
}

type agentStore struct{ s *Store }

func (as *agentStore) List(_ context.Context, filter store.AgentFilter) ([]models.Agent, error) {
	as.s.mu.RLock()
	defer as.s.mu.RUnlock()

	result := make([]models.Agent, 0, len(as.s.agents))
	for _, a := range as.s.agents {
		if filter.Matches(a) {
			result = append(result, *as.s.withListings(a))
		}
	}
	return result, nil
}

func (as *agentStore) Get(_ context.Context, id string) (*models.Agent, error) {
	as.s.mu.RLock()
	defer as.s.mu.RUnlock()

	i := indexOf(as.s.agents, func(a models.Agent) bool { return a.ID == id })
	if i < 0 {
		return nil, store.ErrNotFound
	}
	return as.s.withListings(as.s.agents[i]), nil
}

func (as *agentStore) GetByEmail(_ context.Context, email string) (*models.Agent, error) {
	as.s.mu.RLock()
	defer as.s.mu.RUnlock()

	i := indexOf(as.s.agents, func(a models.Agent) bool { return strings.EqualFold(a.Email, email) })
	if i < 0 {
		return nil, store.ErrNotFound
	}
	return as.s.withListings(as.s.agents[i]), nil
}

func (as *agentStore) Create(ctx context.Context, a models.Agent) (*models.Agent, error) {
	a.Normalize()
	a.ListingsCount = 0
	if err := store.Validate(a); err != nil {
		return nil, err
	}

	as.s.mu.Lock()
	defer as.s.mu.Unlock()

	a.ID = uuid.NewString()
	next := append(append(make([]models.Agent, 0, len(as.s.agents)+1), as.s.agents...), a)
	if err := persist(ctx, as.s.kv, KeyAgents, next); err != nil {
		return nil, err
	}
	as.s.agents = next
	return as.s.withListings(a), nil
}

func (as *agentStore) Update(ctx context.Context, id string, patch models.AgentPatch) (*models.Agent, error) {
	as.s.mu.Lock()
	defer as.s.mu.Unlock()

	i := indexOf(as.s.agents, func(a models.Agent) bool { return a.ID == id })
	if i < 0 {
		return nil, store.ErrNotFound
	}

	a := as.s.agents[i]
	patch.Apply(&a)
	if err := store.Validate(a); err != nil {
		return nil, err
	}

	next := replaced(as.s.agents, i, a)
	if err := persist(ctx, as.s.kv, KeyAgents, next); err != nil {
		return nil, err
	}
	as.s.agents = next
	return as.s.withListings(a), nil
}

func (as *agentStore) Delete(ctx context.Context, id string) error {
	as.s.mu.Lock()
	defer as.s.mu.Unlock()

	i := indexOf(as.s.agents, func(a models.Agent) bool { return a.ID == id })
	if i < 0 {
		return store.ErrNotFound
	}
	if n := as.s.countByAgent(id); n > 0 {
		return store.NewAgentConflict(n)
	}

	next := removed(as.s.agents, i)
	if err := persist(ctx, as.s.kv, KeyAgents, next); err != nil {
		return err
	}
	as.s.agents = next
	return nil
}

// Reassign is a single write of the property collection, so either every
// listing moves or none does.
func (as *agentStore) Reassign(ctx context.Context, from, to string) (int, error) {
	as.s.mu.Lock()
	defer as.s.mu.Unlock()

	moved := 0
	next := make([]models.Property, len(as.s.properties))
	for i, p := range as.s.properties {
		if p.AgentID == from {
			p.AgentID = to
			moved++
		}
		next[i] = p
	}
	if moved == 0 {
		return 0, nil
	}

	if err := persist(ctx, as.s.kv, KeyProperties, next); err != nil {
		return 0, err
	}
	as.s.properties = next
	return moved, nil
}

type userStore struct{ s *Store }

func (us *userStore) List(_ context.Context) ([]models.User, error) {
	us.s.mu.RLock()
	defer us.s.mu.RUnlock()

	result := make([]models.User, len(us.s.users))
	copy(result, us.s.users)
	return result, nil
}

func (us *userStore) Get(_ context.Context, id string) (*models.User, error) {
	us.s.mu.RLock()
	defer us.s.mu.RUnlock()

	i := indexOf(us.s.users, func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return nil, store.ErrNotFound
	}
	u := us.s.users[i]
	return &u, nil
}

func (us *userStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	us.s.mu.RLock()
	defer us.s.mu.RUnlock()

	i := indexOf(us.s.users, func(u models.User) bool { return strings.EqualFold(u.Email, email) })
	if i < 0 {
		return nil, store.ErrNotFound
	}
	u := us.s.users[i]
	return &u, nil
}

// emailTaken must be called with s.mu held.
func (us *userStore) emailTaken(email, exceptID string) bool {
	return indexOf(us.s.users, func(u models.User) bool {
		return strings.EqualFold(u.Email, email) && u.ID != exceptID
	}) >= 0
}

func (us *userStore) Create(ctx context.Context, u models.User) (*models.User, error) {
	u.Normalize()
	if err := store.Validate(u); err != nil {
		return nil, err
	}

	us.s.mu.Lock()
	defer us.s.mu.Unlock()

	if us.emailTaken(u.Email, "") {
		return nil, store.NewValidationError("email", "Email is already registered")
	}

	u.ID = uuid.NewString()
	next := append(append(make([]models.User, 0, len(us.s.users)+1), us.s.users...), u)
	if err := persist(ctx, us.s.kv, KeyUsers, next); err != nil {
		return nil, err
	}
	us.s.users = next
	return &u, nil
}

func (us *userStore) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()

	i := indexOf(us.s.users, func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return nil, store.ErrNotFound
	}

	u := us.s.users[i]
	patch.Apply(&u)
	if err := store.Validate(u); err != nil {
		return nil, err
	}
	if us.emailTaken(u.Email, u.ID) {
		return nil, store.NewValidationError("email", "Email is already registered")
	}

	return us.commit(ctx, i, u)
}

func (us *userStore) Delete(ctx context.Context, id string) error {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()

	i := indexOf(us.s.users, func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return store.ErrNotFound
	}

	next := removed(us.s.users, i)
	if err := persist(ctx, us.s.kv, KeyUsers, next); err != nil {
		return err
	}
	us.s.users = next
	return nil
}

func (us *userStore) ToggleBlock(ctx context.Context, id string) (*models.User, error) {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()

	i := indexOf(us.s.users, func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return nil, store.ErrNotFound
	}

	u := us.s.users[i]
	u.Blocked = !u.Blocked
	return us.commit(ctx, i, u)
}

// commit must be called with s.mu held.
func (us *userStore) commit(ctx context.Context, i int, u models.User) (*models.User, error) {
	next := replaced(us.s.users, i, u)
	if err := persist(ctx, us.s.kv, KeyUsers, next); err != nil {
		return nil, err
	}
	us.s.users = next
	return &u, nil
}

type leadStore struct{ s *Store }

func (ls *leadStore) List(_ context.Context, filter store.LeadFilter) ([]models.Lead, error) {
	ls.s.mu.RLock()
	defer ls.s.mu.RUnlock()

	result := make([]models.Lead, 0, len(ls.s.leads))
	for _, l := range ls.s.leads {
		if filter.Matches(l) {
			result = append(result, l)
		}
	}
	store.SortLeads(result)
	return result, nil
}

func (ls *leadStore) Get(_ context.Context, id string) (*models.Lead, error) {
	ls.s.mu.RLock()
	defer ls.s.mu.RUnlock()

	i := indexOf(ls.s.leads, func(l models.Lead) bool { return l.ID == id })
	if i < 0 {
		return nil, store.ErrNotFound
	}
	l := ls.s.leads[i]
	return &l, nil
}

func (ls *leadStore) Create(ctx context.Context, l models.Lead) (*models.Lead, error) {
	if l.Status == "" {
		l.Status = models.LeadNew
	}
	if err := store.Validate(l); err != nil {
		return nil, err
	}

	ls.s.mu.Lock()
	defer ls.s.mu.Unlock()

	l.ID = uuid.NewString()
	l.CreatedAt = ls.s.now()

	next := prepended(ls.s.leads, l)
	if err := persist(ctx, ls.s.kv, KeyLeads, next); err != nil {
		return nil, err
	}
	ls.s.leads = next
	return &l, nil
}

func (ls *leadStore) Update(ctx context.Context, id string, patch models.LeadPatch) (*models.Lead, error) {
	ls.s.mu.Lock()
	defer ls.s.mu.Unlock()

	i := indexOf(ls.s.leads, func(l models.Lead) bool { return l.ID == id })
	if i < 0 {
		return nil, store.ErrNotFound
	}

	l := ls.s.leads[i]
	patch.Apply(&l)
	if err := store.Validate(l); err != nil {
		return nil, err
	}

	next := replaced(ls.s.leads, i, l)
	if err := persist(ctx, ls.s.kv, KeyLeads, next); err != nil {
		return nil, err
	}
	ls.s.leads = next
	return &l, nil
}

func (ls *leadStore) Delete(ctx context.Context, id string) error {
	ls.s.mu.Lock()
	defer ls.s.mu.Unlock()

	i := indexOf(ls.s.leads, func(l models.Lead) bool { return l.ID == id })
	if i < 0 {
		return store.ErrNotFound
	}

	next := removed(ls.s.leads, i)
	if err := persist(ctx, ls.s.kv, KeyLeads, next); err != nil {
		return err
	}
	ls.s.leads = next
	return nil
}

type blogStore struct{ s *Store }

func (bs *blogStore) List(_ context.Context, filter store.BlogFilter) ([]models.BlogPost, error) {
	bs.s.mu.RLock()
	defer bs.s.mu.RUnlock()

	result := make([]models.BlogPost, 0, len(bs.s.blog))
	for _, b := range bs.s.blog {
		if filter.Matches(b) {
			result = append(result, b)
		}
	}
	store.SortBlogPosts(result)
	return result, nil
}

func (bs *blogStore) GetBySlug(_ context.Context, slug string) (*models.BlogPost, error) {
	bs.s.mu.RLock()
	defer bs.s.mu.RUnlock()

	i := indexOf(bs.s.blog, func(b models.BlogPost) bool { return b.Slug == slug })
	if i < 0 {
		return nil, store.ErrNotFound
	}
	b := bs.s.blog[i]
	return &b, nil
}

func (bs *blogStore) Get(_ context.Context, id string) (*models.BlogPost, error) {
	bs.s.mu.RLock()
	defer bs.s.mu.RUnlock()

	i := indexOf(bs.s.blog, func(b models.BlogPost) bool { return b.ID == id })
	if i < 0 {
		return nil, store.ErrNotFound
	}
	b := bs.s.blog[i]
	return &b, nil
}

func (bs *blogStore) slugTaken(exceptID string) func(string) (bool, error) {
	return func(candidate string) (bool, error) {
		i := indexOf(bs.s.blog, func(b models.BlogPost) bool {
			return b.Slug == candidate && b.ID != exceptID
		})
		return i >= 0, nil
	}
}

func (bs *blogStore) Create(ctx context.Context, b models.BlogPost) (*models.BlogPost, error) {
	if err := store.Validate(b); err != nil {
		return nil, err
	}

	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	slug, err := store.GenerateSlug(b.Title, bs.slugTaken(""))
	if err != nil {
		return nil, err
	}
	b.ID = uuid.NewString()
	b.Slug = slug
	b.CreatedAt = bs.s.now()

	next := prepended(bs.s.blog, b)
	if err := persist(ctx, bs.s.kv, KeyBlog, next); err != nil {
		return nil, err
	}
	bs.s.blog = next
	return &b, nil
}

func (bs *blogStore) Update(ctx context.Context, id string, patch models.BlogPostPatch) (*models.BlogPost, error) {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	i := indexOf(bs.s.blog, func(b models.BlogPost) bool { return b.ID == id })
	if i < 0 {
		return nil, store.ErrNotFound
	}

	b := bs.s.blog[i]
	if patch.Apply(&b) {
		slug, err := store.GenerateSlug(b.Title, bs.slugTaken(b.ID))
		if err != nil {
			return nil, err
		}
		b.Slug = slug
	}
	if err := store.Validate(b); err != nil {
		return nil, err
	}

	next := replaced(bs.s.blog, i, b)
	if err := persist(ctx, bs.s.kv, KeyBlog, next); err != nil {
		return nil, err
	}
	bs.s.blog = next
	return &b, nil
}

func (bs *blogStore) Delete(ctx context.Context, id string) error {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	i := indexOf(bs.s.blog, func(b models.BlogPost) bool { return b.ID == id })
	if i < 0 {
		return store.ErrNotFound
	}

	next := removed(bs.s.blog, i)
	if err := persist(ctx, bs.s.kv, KeyBlog, next); err != nil {
		return err
	}
	bs.s.blog = next
	return nil
}
