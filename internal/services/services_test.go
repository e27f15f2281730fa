package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stwalsh4118/luxeestate/internal/localstore"
	"github.com/stwalsh4118/luxeestate/internal/logger"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/security"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

func init() {
	security.Cost = bcrypt.MinCost
}

// MockAgentStore is a mock implementation of store.AgentStore for testing
type MockAgentStore struct {
	mock.Mock
}

func (m *MockAgentStore) List(ctx context.Context, filter store.AgentFilter) ([]models.Agent, error) {
	args := m.Called(ctx, filter)
	agents, _ := args.Get(0).([]models.Agent)
	return agents, args.Error(1)
}

func (m *MockAgentStore) Get(ctx context.Context, id string) (*models.Agent, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*models.Agent)
	return a, args.Error(1)
}

func (m *MockAgentStore) GetByEmail(ctx context.Context, email string) (*models.Agent, error) {
	args := m.Called(ctx, email)
	a, _ := args.Get(0).(*models.Agent)
	return a, args.Error(1)
}

func (m *MockAgentStore) Create(ctx context.Context, a models.Agent) (*models.Agent, error) {
	args := m.Called(ctx, a)
	created, _ := args.Get(0).(*models.Agent)
	return created, args.Error(1)
}

func (m *MockAgentStore) Update(ctx context.Context, id string, patch models.AgentPatch) (*models.Agent, error) {
	args := m.Called(ctx, id, patch)
	a, _ := args.Get(0).(*models.Agent)
	return a, args.Error(1)
}

func (m *MockAgentStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAgentStore) Reassign(ctx context.Context, from, to string) (int, error) {
	args := m.Called(ctx, from, to)
	return args.Int(0), args.Error(1)
}

// agentStub serves agents from a mock and everything else from the
// embedded store.
type agentStub struct {
	store.Store
	agents *MockAgentStore
}

func (s agentStub) Agents() store.AgentStore { return s.agents }

func tickingClock() func() time.Time {
	t := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func openLocal(t *testing.T) *localstore.Store {
	t.Helper()
	kv, err := localstore.NewFileKV(afero.NewMemMapFs(), "/data", 0)
	require.NoError(t, err)
	st, err := localstore.Open(context.Background(), kv, logger.Nop(), localstore.WithClock(tickingClock()))
	require.NoError(t, err)
	return st
}

func newServices(t *testing.T) *Services {
	t.Helper()
	return New(openLocal(t), logger.New("test"))
}

func asAgent(id string) context.Context {
	return models.WithActor(context.Background(), models.Actor{ID: id, Role: models.RoleAgent})
}

func TestPropertyService_CreateRequiresExistingAgent(t *testing.T) {
	svc := newServices(t)

	_, err := svc.Properties.Create(context.Background(), models.Property{
		Title: "Orphan", Price: 1, AgentID: "ghost", Type: models.TypeHouse,
	})

	var verr *store.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Agent does not exist", verr.Fields["agentId"])
}

func TestPropertyService_UpdateChecksNewAgent(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	ghost := "ghost"
	_, err := svc.Properties.Update(ctx, "1", models.PropertyPatch{AgentID: &ghost})
	assert.ErrorIs(t, err, store.ErrValidation)

	// Unchanged agent skips the lookup.
	same := "2"
	price := 2600000.0
	updated, err := svc.Properties.Update(ctx, "1", models.PropertyPatch{AgentID: &same, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, price, updated.Price)
}

func TestPropertyService_ListRejectsBadQuery(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	_, err := svc.Properties.List(ctx, store.PropertyFilter{SortBy: "cheapest"})
	assert.ErrorIs(t, err, store.ErrValidation)

	lo, hi := 5.0, 1.0
	_, err = svc.Properties.List(ctx, store.PropertyFilter{MinPrice: &lo, MaxPrice: &hi})
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestPropertyService_LookupFailure(t *testing.T) {
	agents := new(MockAgentStore)
	st := agentStub{Store: openLocal(t), agents: agents}
	svc := NewPropertyService(st, logger.New("test"))

	ctx := context.Background()
	agents.On("Get", ctx, "2").Return(nil, errors.New("connection reset"))

	_, err := svc.Create(ctx, models.Property{Title: "X", Price: 1, AgentID: "2", Type: models.TypeLand})

	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrValidation)
	assert.Contains(t, err.Error(), "connection reset")
	agents.AssertExpectations(t)
}

func TestAgentService_DeleteGuard(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	err := svc.Agents.Delete(ctx, "2")

	var conflict *store.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 2, conflict.Count)
	assert.Equal(t, "Cannot delete agent. They have 2 active listings. Reassign listings first.", conflict.Message)

	assert.ErrorIs(t, svc.Agents.Delete(ctx, "nope"), store.ErrNotFound)
}

func TestAgentService_ReassignThenDelete(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	before, err := svc.Agents.Get(ctx, "3")
	require.NoError(t, err)

	moved, err := svc.Agents.Reassign(ctx, "2", "3")
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	from, err := svc.Agents.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, 0, from.ListingsCount)

	to, err := svc.Agents.Get(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, before.ListingsCount+moved, to.ListingsCount)

	props, err := svc.Properties.List(ctx, store.PropertyFilter{AgentID: "2"})
	require.NoError(t, err)
	assert.Empty(t, props)

	require.NoError(t, svc.Agents.Delete(ctx, "2"))
}

func TestAgentService_ReassignValidation(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	_, err := svc.Agents.UpdateStatus(ctx, "3", models.AgentOnLeave)
	require.NoError(t, err)

	tests := []struct {
		name     string
		from, to string
		field    string
		wantErr  error
	}{
		{name: "same agent", from: "2", to: "2", field: "newAgentId", wantErr: store.ErrValidation},
		{name: "missing target", from: "2", to: "ghost", field: "newAgentId", wantErr: store.ErrValidation},
		{name: "inactive target", from: "2", to: "3", field: "newAgentId", wantErr: store.ErrValidation},
		{name: "empty source", from: "", to: "3", field: "oldAgentId", wantErr: store.ErrValidation},
		{name: "unknown source", from: "ghost", to: "2", wantErr: store.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			moved, err := svc.Agents.Reassign(ctx, tt.from, tt.to)
			assert.Zero(t, moved)
			require.ErrorIs(t, err, tt.wantErr)

			if tt.field != "" {
				var verr *store.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Contains(t, verr.Fields, tt.field)
			}
		})
	}

	props, err := svc.Properties.List(ctx, store.PropertyFilter{AgentID: "2"})
	require.NoError(t, err)
	assert.Len(t, props, 2, "failed reassignments must not move listings")
}

func TestAgentService_StatusAndPassword(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	_, err := svc.Agents.UpdateStatus(ctx, "2", "RETIRED")
	assert.ErrorIs(t, err, store.ErrValidation)

	a, err := svc.Agents.UpdateStatus(ctx, "2", models.AgentOnLeave)
	require.NoError(t, err)
	assert.Equal(t, models.AgentOnLeave, a.Status)
	assert.Equal(t, 2, a.ListingsCount)

	created, err := svc.Agents.Create(ctx, models.Agent{
		Name: "Nina Broker", Email: "nina@example.com", Password: "Secret123",
	})
	require.NoError(t, err)
	assert.True(t, security.IsHashed(created.Password))
	assert.True(t, security.CheckPassword(created.Password, "Secret123"))
	assert.Equal(t, models.AgentActive, created.Status)
}

func TestLeadService_Visibility(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	general, err := svc.Leads.Create(ctx, models.Lead{Name: "General", Email: "g@example.com"})
	require.NoError(t, err)

	all, err := svc.Leads.List(ctx, store.LeadFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Agent 2 owns property 1, which lead 1 is about.
	mine, err := svc.Leads.List(asAgent("2"), store.LeadFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "1", mine[0].ID)

	// General inquiries appear only once assigned.
	_, err = svc.Leads.Assign(ctx, general.ID, "2")
	require.NoError(t, err)

	mine, err = svc.Leads.List(asAgent("2"), store.LeadFilter{})
	require.NoError(t, err)
	ids := []string{}
	for _, l := range mine {
		ids = append(ids, l.ID)
	}
	assert.ElementsMatch(t, []string{"1", general.ID}, ids)

	theirs, err := svc.Leads.List(asAgent("3"), store.LeadFilter{})
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, "2", theirs[0].ID)

	admin := models.WithActor(ctx, models.Actor{ID: "1", Role: models.RoleAdmin})
	everything, err := svc.Leads.List(admin, store.LeadFilter{})
	require.NoError(t, err)
	assert.Len(t, everything, 3)

	_, err = svc.Leads.Get(asAgent("3"), "1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLeadService_WritesFollowVisibility(t *testing.T) {
	svc := newServices(t)
	john := asAgent("3")

	// Lead 1 is on agent 2's property, so agent 3 cannot touch it.
	status := models.LeadClosed
	_, err := svc.Leads.Update(john, "1", models.LeadPatch{Status: &status})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Leads.UpdateStatus(john, "1", models.LeadContacted)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Leads.Assign(john, "1", "3")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, svc.Leads.Delete(john, "1"), store.ErrNotFound)

	untouched, err := svc.Leads.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, models.LeadNew, untouched.Status)
	assert.Empty(t, untouched.AssignedAgentID)

	// Lead 2 is on agent 3's property.
	l, err := svc.Leads.UpdateStatus(john, "2", models.LeadClosed)
	require.NoError(t, err)
	assert.Equal(t, models.LeadClosed, l.Status)
	require.NoError(t, svc.Leads.Delete(john, "2"))
}

func TestLeadService_CreateForcesNew(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	l, err := svc.Leads.Create(ctx, models.Lead{Name: "Eve", PropertyID: "2", Status: models.LeadClosed})
	require.NoError(t, err)
	assert.Equal(t, models.LeadNew, l.Status)

	_, err = svc.Leads.Create(ctx, models.Lead{Name: "Eve", PropertyID: "404"})
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestLeadService_AssignAndStatus(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	_, err := svc.Leads.Assign(ctx, "1", "ghost")
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = svc.Leads.Assign(ctx, "404", "2")
	assert.ErrorIs(t, err, store.ErrNotFound)

	for _, status := range []models.LeadStatus{models.LeadClosed, models.LeadNew, models.LeadContacted} {
		l, err := svc.Leads.UpdateStatus(ctx, "1", status)
		require.NoError(t, err)
		assert.Equal(t, status, l.Status)
	}

	_, err = svc.Leads.UpdateStatus(ctx, "1", "LOST")
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestUserService_ToggleBlockTwice(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	original, err := svc.Users.Get(ctx, "3")
	require.NoError(t, err)

	blocked, err := svc.Users.ToggleBlock(ctx, "3")
	require.NoError(t, err)
	assert.True(t, blocked.Blocked)

	restored, err := svc.Users.ToggleBlock(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, *original, *restored)
}

func TestUserService_CreateHashesAndRejectsDuplicate(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	u, err := svc.Users.Create(ctx, models.User{Name: "Buyer", Email: "buyer@example.com", Password: "pw123456"})
	require.NoError(t, err)
	assert.True(t, security.CheckPassword(u.Password, "pw123456"))
	assert.Equal(t, models.RoleUser, u.Role)

	_, err = svc.Users.Create(ctx, models.User{Name: "Again", Email: "BUYER@example.com"})
	var verr *store.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
}

func TestAuthService_Authenticate(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	acct, err := svc.Auth.Authenticate(ctx, "admin@example.com", "Admin123")
	require.NoError(t, err)
	assert.Equal(t, "1", acct.ID)
	assert.Equal(t, models.RoleAdmin, acct.Role)

	_, err = svc.Auth.Authenticate(ctx, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Auth.Authenticate(ctx, "nobody@example.com", "Admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Users.ToggleBlock(ctx, "1")
	require.NoError(t, err)
	_, err = svc.Auth.Authenticate(ctx, "admin@example.com", "Admin123")
	assert.ErrorIs(t, err, ErrAccountBlocked)
}

func TestAuthService_AgentFallback(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	created, err := svc.Agents.Create(ctx, models.Agent{
		Name: "Solo Agent", Email: "solo@example.com", Password: "Agent123",
	})
	require.NoError(t, err)

	acct, err := svc.Auth.Authenticate(ctx, "solo@example.com", "Agent123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, acct.ID)
	assert.Equal(t, models.RoleAgent, acct.Role)

	_, err = svc.Agents.UpdateStatus(ctx, created.ID, models.AgentBlocked)
	require.NoError(t, err)
	_, err = svc.Auth.Authenticate(ctx, "solo@example.com", "Agent123")
	assert.ErrorIs(t, err, ErrAccountBlocked)
}

func TestDashboardService_Stats(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	stats, err := svc.Dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DashboardStats{TotalProperties: 4, ActiveLeads: 1, TotalAgents: 2, TotalUsers: 3}, stats)

	_, err = svc.Leads.Create(ctx, models.Lead{Name: "New"})
	require.NoError(t, err)
	stats, err = svc.Dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ActiveLeads)
}

// End to end: an agent lists a villa, a visitor asks about it, and the
// lead shows up for that agent only.
func TestScenario_ListingAndLead(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	villa, err := svc.Properties.Create(ctx, models.Property{
		Title:   "Test Villa",
		Price:   500000,
		AgentID: "3",
		Type:    models.TypeVilla,
	})
	require.NoError(t, err)
	assert.Regexp(t, `^test-villa-`, villa.Slug)

	got, err := svc.Properties.GetBySlug(ctx, villa.Slug)
	require.NoError(t, err)
	assert.Equal(t, villa.ID, got.ID)

	lead, err := svc.Leads.Create(ctx, models.Lead{Name: "Visitor", PropertyID: villa.ID})
	require.NoError(t, err)

	visible := func(agentID string) bool {
		leads, err := svc.Leads.List(asAgent(agentID), store.LeadFilter{})
		require.NoError(t, err)
		for _, l := range leads {
			if l.ID == lead.ID {
				return true
			}
		}
		return false
	}

	assert.True(t, visible("3"))
	assert.False(t, visible("2"))

	moved, err := svc.Agents.Reassign(ctx, "3", "2")
	require.NoError(t, err)
	assert.Equal(t, 3, moved)

	assert.True(t, visible("2"))
	assert.False(t, visible("3"))
}
