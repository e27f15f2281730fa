package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stwalsh4118/luxeestate/internal/logger"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/security"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

func init() {
	security.Cost = bcrypt.MinCost
}

// failingKV accepts reads and rejects every write.
type failingKV struct {
	KV
	err error
}

func (f *failingKV) Set(_ context.Context, _ string, _ []byte) error {
	return f.err
}

// tickingClock returns a strictly increasing time on each call.
func tickingClock() func() time.Time {
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestKV(t *testing.T, quota int64) *FileKV {
	t.Helper()
	kv, err := NewFileKV(afero.NewMemMapFs(), "/data", quota)
	require.NoError(t, err)
	return kv
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), newTestKV(t, 0), logger.New("test"), WithClock(tickingClock()))
	require.NoError(t, err)
	return s
}

func newProperty(title, agentID string, price float64) models.Property {
	return models.Property{
		Title:   title,
		AgentID: agentID,
		Price:   price,
		Type:    models.TypeHouse,
		Location: models.Location{
			City: "Denver",
		},
		Features: models.Features{Bedrooms: 3, Bathrooms: 2.5, Sqft: 2000},
	}
}

func TestOpen_SeedsEmptyStore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	props, err := s.Properties().List(ctx, store.PropertyFilter{})
	require.NoError(t, err)
	assert.Len(t, props, 4)

	agents, err := s.Agents().List(ctx, store.AgentFilter{})
	require.NoError(t, err)
	assert.Len(t, agents, 2)

	assert.Equal(t, store.ModeLocal, s.Mode())
}

func TestOpen_LoadsPersistedCollections(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t, 0)

	stored := []models.User{{ID: "u1", Name: "Old Timer (BLOCKED)", Email: "old@example.com", Role: models.RoleUser}}
	data, err := json.Marshal(stored)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, KeyUsers, data))

	s, err := Open(ctx, kv, logger.New("test"))
	require.NoError(t, err)

	users, err := s.Users().List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Old Timer", users[0].Name)
	assert.True(t, users[0].Blocked)
}

func TestOpen_CorruptValueFallsBackToSeed(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t, 0)
	require.NoError(t, kv.Set(ctx, KeyProperties, []byte("{not json")))

	s, err := Open(ctx, kv, logger.New("test"))
	require.NoError(t, err)

	props, err := s.Properties().List(ctx, store.PropertyFilter{})
	require.NoError(t, err)
	assert.Len(t, props, 4)
}

func TestPropertyStore_CreatePersistsAndSlugs(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t, 0)
	s, err := Open(ctx, kv, logger.New("test"), WithClock(tickingClock()))
	require.NoError(t, err)

	created, err := s.Properties().Create(ctx, newProperty("Test Villa", "2", 500000))
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Regexp(t, `^test-villa-[0-9a-z]+$`, created.Slug)
	assert.Equal(t, models.PropertyForSale, created.Status)
	assert.NotNil(t, created.Amenities)

	got, err := s.Properties().GetBySlug(ctx, created.Slug)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	// A fresh store over the same medium sees the write.
	reopened, err := Open(ctx, kv, logger.New("test"))
	require.NoError(t, err)
	props, err := reopened.Properties().List(ctx, store.PropertyFilter{})
	require.NoError(t, err)
	assert.Len(t, props, 5)
}

func TestPropertyStore_CreateRejectsInvalid(t *testing.T) {
	s := openTestStore(t)

	p := newProperty("", "2", -1)
	_, err := s.Properties().Create(context.Background(), p)

	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrValidation))

	var verr *store.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "price")
}

func TestPropertyStore_ListFiltersAndSorts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	maxPrice := 2000000.0
	props, err := s.Properties().List(ctx, store.PropertyFilter{MaxPrice: &maxPrice, SortBy: store.SortPriceAsc})
	require.NoError(t, err)
	require.Len(t, props, 2)
	assert.Equal(t, "3", props[0].ID)
	assert.Equal(t, "2", props[1].ID)

	props, err = s.Properties().List(ctx, store.PropertyFilter{Search: "villa"})
	require.NoError(t, err)
	require.Len(t, props, 2)
	assert.Equal(t, "1", props[0].ID, "newest first by default")

	props, err = s.Properties().List(ctx, store.PropertyFilter{Search: "nothing matches this"})
	require.NoError(t, err)
	assert.NotNil(t, props)
	assert.Empty(t, props)
}

func TestPropertyStore_UpdateRegeneratesSlugOnTitleChange(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	price := 999.0
	updated, err := s.Properties().Update(ctx, "3", models.PropertyPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "cozy-family-home", updated.Slug)

	title := "Cozy Cabin"
	updated, err = s.Properties().Update(ctx, "3", models.PropertyPatch{Title: &title})
	require.NoError(t, err)
	assert.Regexp(t, `^cozy-cabin-`, updated.Slug)
}

func TestPropertyStore_MissingIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Properties().Get(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Properties().Update(ctx, "nope", models.PropertyPatch{})
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.Properties().Delete(ctx, "nope"), store.ErrNotFound)
}

func TestAgentStore_ListingsCountIsComputed(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	agent, err := s.Agents().Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, 2, agent.ListingsCount)

	_, err = s.Properties().Create(ctx, newProperty("Another One", "2", 1000))
	require.NoError(t, err)

	agent, err = s.Agents().Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, 3, agent.ListingsCount)
}

func TestAgentStore_DeleteGuard(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Agents().Delete(ctx, "2")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrConflict)

	var conflict *store.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 2, conflict.Count)
	assert.Equal(t, "Cannot delete agent. They have 2 active listings. Reassign listings first.", conflict.Message)

	moved, err := s.Agents().Reassign(ctx, "2", "3")
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	require.NoError(t, s.Agents().Delete(ctx, "2"))

	remaining, err := s.Agents().Get(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, 4, remaining.ListingsCount)
}

func TestAgentStore_ListHidesBlocked(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	blocked := models.AgentBlocked
	_, err := s.Agents().Update(ctx, "3", models.AgentPatch{Status: &blocked})
	require.NoError(t, err)

	visible, err := s.Agents().List(ctx, store.AgentFilter{})
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	all, err := s.Agents().List(ctx, store.AgentFilter{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReassign_FailedWriteLeavesListingsUntouched(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t, 0)
	s, err := Open(ctx, &failingKV{KV: kv, err: errors.New("disk gone")}, logger.New("test"))
	require.NoError(t, err)

	_, err = s.Agents().Reassign(ctx, "2", "3")
	require.Error(t, err)

	count, err := s.Properties().CountByAgent(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestQuotaExceeded_RollsBack(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t, 0)

	s, err := Open(ctx, kv, logger.New("test"))
	require.NoError(t, err)
	_, err = s.Properties().Create(ctx, newProperty("Fits", "2", 1))
	require.NoError(t, err)

	// Shrink the quota to what is already on disk.
	kv.quota = 1

	_, err = s.Properties().Create(ctx, newProperty("Does Not Fit", "2", 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrQuotaExceeded)

	props, err := s.Properties().List(ctx, store.PropertyFilter{})
	require.NoError(t, err)
	assert.Len(t, props, 5)
}

func TestUserStore_EmailUniqueAndToggleBlock(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Users().Create(ctx, models.User{Name: "Dup", Email: "ADMIN@example.com"})
	assert.ErrorIs(t, err, store.ErrValidation)

	created, err := s.Users().Create(ctx, models.User{Name: "New", Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, created.Role)

	toggled, err := s.Users().ToggleBlock(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Blocked)

	toggled, err = s.Users().ToggleBlock(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Blocked)

	found, err := s.Users().GetByEmail(ctx, "NEW@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestLeadStore_CreateIsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	lead, err := s.Leads().Create(ctx, models.Lead{Name: "Carol", Email: "carol@test.com"})
	require.NoError(t, err)
	assert.Equal(t, models.LeadNew, lead.Status)

	leads, err := s.Leads().List(ctx, store.LeadFilter{})
	require.NoError(t, err)
	require.Len(t, leads, 3)
	assert.Equal(t, lead.ID, leads[0].ID)

	contacted, err := s.Leads().List(ctx, store.LeadFilter{Status: models.LeadContacted})
	require.NoError(t, err)
	require.Len(t, contacted, 1)
	assert.Equal(t, "2", contacted[0].ID)
}

func TestStats(t *testing.T) {
	s := openTestStore(t)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.DashboardStats{
		TotalProperties: 4,
		ActiveLeads:     1,
		TotalAgents:     2,
		TotalUsers:      3,
	}, stats)
}

func TestBlogStore_SlugsStayUnique(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.Blog().Create(ctx, models.BlogPost{Title: "Market Update"})
	require.NoError(t, err)
	second, err := s.Blog().Create(ctx, models.BlogPost{Title: "Market Update"})
	require.NoError(t, err)

	assert.NotEqual(t, first.Slug, second.Slug)

	posts, err := s.Blog().List(ctx, store.BlogFilter{})
	require.NoError(t, err)
	assert.Equal(t, second.ID, posts[0].ID)
}

func TestPropertyStore_ReturnsDetachedCopies(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	got, err := s.Properties().Get(ctx, "1")
	require.NoError(t, err)
	require.NotEmpty(t, got.Images)
	wantImage := got.Images[0]
	wantAmenity := got.Amenities[0]

	got.Images[0] = "overwritten.jpg"

	bySlug, err := s.Properties().GetBySlug(ctx, "modern-sunset-villa")
	require.NoError(t, err)
	bySlug.Amenities[0] = "Overwritten"

	listed, err := s.Properties().List(ctx, store.PropertyFilter{})
	require.NoError(t, err)
	for i := range listed {
		if len(listed[i].Images) > 0 {
			listed[i].Images[0] = "overwritten.jpg"
		}
	}

	again, err := s.Properties().Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, wantImage, again.Images[0])
	assert.Equal(t, wantAmenity, again.Amenities[0])
}

func TestPropertyStore_DoesNotKeepCallerSlices(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := newProperty("Detached Cottage", "2", 400000)
	in.Images = []string{"front.jpg"}
	created, err := s.Properties().Create(ctx, in)
	require.NoError(t, err)
	in.Images[0] = "changed.jpg"
	created.Images[0] = "changed.jpg"

	amenities := []string{"Gym"}
	updated, err := s.Properties().Update(ctx, created.ID, models.PropertyPatch{Amenities: amenities})
	require.NoError(t, err)
	amenities[0] = "Sauna"
	updated.Amenities[0] = "Sauna"

	stored, err := s.Properties().Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"front.jpg"}, stored.Images)
	assert.Equal(t, []string{"Gym"}, stored.Amenities)

	cleared, err := s.Properties().Update(ctx, created.ID, models.PropertyPatch{Amenities: []string{}})
	require.NoError(t, err)
	assert.Empty(t, cleared.Amenities)
	assert.Equal(t, []string{"front.jpg"}, cleared.Images)
}
