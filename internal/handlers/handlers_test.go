package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apierrors "github.com/stwalsh4118/luxeestate/internal/errors"
	"github.com/stwalsh4118/luxeestate/internal/localstore"
	"github.com/stwalsh4118/luxeestate/internal/logger"
	"github.com/stwalsh4118/luxeestate/internal/middleware"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/security"
	"github.com/stwalsh4118/luxeestate/internal/services"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
	security.Cost = bcrypt.MinCost
}

// setupAPI serves the full router over a freshly seeded in-memory store.
func setupAPI(t *testing.T) *gin.Engine {
	t.Helper()

	kv, err := localstore.NewFileKV(afero.NewMemMapFs(), "/data", 0)
	require.NoError(t, err)

	clock := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	st, err := localstore.Open(context.Background(), kv, logger.Nop(), localstore.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	require.NoError(t, err)

	log := logger.New("test")
	return NewRouter(services.New(st, log), log, "test", []string{"http://localhost:3000"})
}

type request struct {
	method  string
	path    string
	body    interface{}
	actorID string
	role    models.UserRole
}

func do(t *testing.T, router *gin.Engine, r request) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if r.body != nil {
		if raw, ok := r.body.(string); ok {
			body.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&body).Encode(r.body))
		}
	}

	req := httptest.NewRequest(r.method, r.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if r.actorID != "" {
		req.Header.Set(middleware.ActorIDHeader, r.actorID)
		req.Header.Set(middleware.ActorRoleHeader, string(r.role))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestPropertyRoutes_List(t *testing.T) {
	router := setupAPI(t)

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{name: "default newest first", query: "", wantIDs: []string{"1", "2", "3", "4"}},
		{name: "price ascending", query: "?sortBy=price_asc", wantIDs: []string{"3", "2", "1", "4"}},
		{name: "inclusive bounds", query: "?minPrice=650000&maxPrice=1800000", wantIDs: []string{"2", "3"}},
		{name: "search city", query: "?search=miami", wantIDs: []string{"4"}},
		{name: "status", query: "?status=PENDING", wantIDs: []string{"3"}},
		{name: "agent", query: "?agentId=3&sortBy=price_desc", wantIDs: []string{"4", "2"}},
		{name: "no match", query: "?search=castle", wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, request{method: http.MethodGet, path: "/api/properties" + tt.query})
			require.Equal(t, http.StatusOK, w.Code)

			props := decode[[]models.Property](t, w)
			ids := make([]string, 0, len(props))
			for _, p := range props {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestPropertyRoutes_BadQuery(t *testing.T) {
	router := setupAPI(t)

	w := do(t, router, request{method: http.MethodGet, path: "/api/properties?minPrice=cheap"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[apierrors.ErrorResponse](t, w)
	assert.Equal(t, apierrors.ErrValidation, resp.Code)
	assert.Contains(t, resp.Details, "minPrice")

	w = do(t, router, request{method: http.MethodGet, path: "/api/properties?sortBy=random"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[apierrors.ErrorResponse](t, w).Details, "sortBy")
}

func TestPropertyRoutes_CreateGetUpdateDelete(t *testing.T) {
	router := setupAPI(t)

	w := do(t, router, request{method: http.MethodPost, path: "/api/properties", body: map[string]interface{}{
		"title":   "Test Villa",
		"price":   500000,
		"agentId": "2",
		"type":    "Villa",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Property](t, w)
	assert.True(t, strings.HasPrefix(created.Slug, "test-villa-"), created.Slug)
	assert.Equal(t, models.PropertyForSale, created.Status)

	w = do(t, router, request{method: http.MethodGet, path: "/api/properties/" + created.Slug})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decode[models.Property](t, w).ID)

	w = do(t, router, request{method: http.MethodGet, path: "/api/properties/" + created.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.Slug, decode[models.Property](t, w).Slug)

	w = do(t, router, request{method: http.MethodPut, path: "/api/properties/" + created.ID, body: map[string]interface{}{"price": 550000}})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[models.Property](t, w)
	assert.Equal(t, 550000.0, updated.Price)
	assert.Equal(t, created.Slug, updated.Slug)

	w = do(t, router, request{method: http.MethodDelete, path: "/api/properties/" + created.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, SuccessResponse{Success: true}, decode[SuccessResponse](t, w))

	w = do(t, router, request{method: http.MethodGet, path: "/api/properties/" + created.Slug})
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode[apierrors.ErrorResponse](t, w)
	assert.Equal(t, "Property not found", resp.Error)
	assert.NotEmpty(t, resp.RequestID)
}

func TestPropertyRoutes_CreateInvalid(t *testing.T) {
	router := setupAPI(t)

	w := do(t, router, request{method: http.MethodPost, path: "/api/properties", body: map[string]interface{}{
		"title": "No Agent", "price": 10, "type": "Castle",
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierrors.ErrValidation, decode[apierrors.ErrorResponse](t, w).Code)

	w = do(t, router, request{method: http.MethodPost, path: "/api/properties", body: `{"title": `})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierrors.ErrBadRequest, decode[apierrors.ErrorResponse](t, w).Code)
}

func TestAgentRoutes_GuardReassignDelete(t *testing.T) {
	router := setupAPI(t)

	w := do(t, router, request{method: http.MethodDelete, path: "/api/agents/2"})
	require.Equal(t, http.StatusConflict, w.Code)
	resp := decode[apierrors.ErrorResponse](t, w)
	assert.Equal(t, apierrors.ErrConflict, resp.Code)
	assert.Equal(t, float64(2), resp.Details["count"])
	assert.Equal(t, "Cannot delete agent. They have 2 active listings. Reassign listings first.", resp.Error)

	w = do(t, router, request{method: http.MethodPost, path: "/api/agents/reassign", body: ReassignRequest{OldAgentID: "2", NewAgentID: "2"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, request{method: http.MethodPost, path: "/api/agents/reassign", body: ReassignRequest{OldAgentID: "2", NewAgentID: "3"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ReassignResponse{Success: true, Moved: 2}, decode[ReassignResponse](t, w))

	w = do(t, router, request{method: http.MethodGet, path: "/api/agents/3"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, decode[models.Agent](t, w).ListingsCount)

	w = do(t, router, request{method: http.MethodDelete, path: "/api/agents/2"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, request{method: http.MethodDelete, path: "/api/agents/2"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAgentRoutes_ListHidesPasswordsAndBlocked(t *testing.T) {
	router := setupAPI(t)

	w := do(t, router, request{method: http.MethodPut, path: "/api/agents/3", body: map[string]string{"status": "BLOCKED"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, request{method: http.MethodGet, path: "/api/agents"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"password"`)
	assert.Len(t, decode[[]models.Agent](t, w), 1)

	w = do(t, router, request{method: http.MethodGet, path: "/api/agents?includeInactive=true"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Agent](t, w), 2)

	w = do(t, router, request{method: http.MethodGet, path: "/api/agents?includeInactive=maybe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeadRoutes_VisibilityAndAssign(t *testing.T) {
	router := setupAPI(t)

	w := do(t, router, request{method: http.MethodPost, path: "/api/leads", body: map[string]string{
		"name": "Walk-in", "email": "walkin@example.com", "status": "CLOSED",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	general := decode[models.Lead](t, w)
	assert.Equal(t, models.LeadNew, general.Status)

	list := func(actorID string, role models.UserRole) []models.Lead {
		w := do(t, router, request{method: http.MethodGet, path: "/api/leads", actorID: actorID, role: role})
		require.Equal(t, http.StatusOK, w.Code)
		return decode[[]models.Lead](t, w)
	}

	assert.Len(t, list("", ""), 3)
	assert.Len(t, list("1", models.RoleAdmin), 3)
	assert.Len(t, list("3", models.RoleAgent), 1)

	w = do(t, router, request{method: http.MethodPut, path: "/api/leads/" + general.ID + "/assign", body: AssignRequest{AgentID: "3"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", decode[models.Lead](t, w).AssignedAgentID)
	assert.Len(t, list("3", models.RoleAgent), 2)
	assert.Len(t, list("2", models.RoleAgent), 1)

	w = do(t, router, request{method: http.MethodPut, path: "/api/leads/" + general.ID + "/assign", body: AssignRequest{AgentID: "ghost"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, request{method: http.MethodPut, path: "/api/leads/1", body: map[string]string{"status": "CONTACTED"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.LeadContacted, decode[models.Lead](t, w).Status)

	w = do(t, router, request{method: http.MethodGet, path: "/api/leads/1", actorID: "3", role: models.RoleAgent})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserRoutes_ToggleBlockAndLogin(t *testing.T) {
	router := setupAPI(t)

	login := func(email, password string) *httptest.ResponseRecorder {
		return do(t, router, request{method: http.MethodPost, path: "/api/auth/login", body: LoginRequest{Email: email, Password: password}})
	}

	w := login("john@example.com", "Agent123")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "3", decode[services.Account](t, w).ID)
	assert.NotContains(t, w.Body.String(), "password")

	w = login("john@example.com", "nope")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apierrors.ErrInvalidCredentials, decode[apierrors.ErrorResponse](t, w).Code)

	w = do(t, router, request{method: http.MethodPut, path: "/api/users/3/toggle-block"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[models.User](t, w).Blocked)

	w = login("john@example.com", "Agent123")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apierrors.ErrAccountBlocked, decode[apierrors.ErrorResponse](t, w).Code)

	w = do(t, router, request{method: http.MethodPut, path: "/api/users/3/toggle-block"})
	require.Equal(t, http.StatusOK, w.Code)
	restored := decode[models.User](t, w)
	assert.False(t, restored.Blocked)
	assert.Equal(t, "John Advisor", restored.Name)
	assert.Empty(t, restored.Password)
}

func TestUserRoutes_DuplicateEmail(t *testing.T) {
	router := setupAPI(t)

	w := do(t, router, request{method: http.MethodPost, path: "/api/users", body: map[string]string{
		"name": "Copy", "email": "ADMIN@example.com",
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[apierrors.ErrorResponse](t, w)
	assert.Equal(t, "Email is already registered", resp.Details["email"])
}

func TestBlogRoutes(t *testing.T) {
	router := setupAPI(t)

	w := do(t, router, request{method: http.MethodGet, path: "/api/blog?authorId=2"})
	require.Equal(t, http.StatusOK, w.Code)
	for _, b := range decode[[]models.BlogPost](t, w) {
		assert.Equal(t, "2", b.AuthorID)
	}

	w = do(t, router, request{method: http.MethodPost, path: "/api/blog", body: map[string]string{"title": "Market Update"}})
	require.Equal(t, http.StatusCreated, w.Code)
	post := decode[models.BlogPost](t, w)

	w = do(t, router, request{method: http.MethodGet, path: "/api/blog/" + post.Slug})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, request{method: http.MethodDelete, path: "/api/blog/" + post.ID})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, request{method: http.MethodGet, path: "/api/blog/" + post.Slug})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Blog post not found", decode[apierrors.ErrorResponse](t, w).Error)
}

func TestDashboardRoute(t *testing.T) {
	router := setupAPI(t)

	w := do(t, router, request{method: http.MethodGet, path: "/api/dashboard"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DashboardStats{TotalProperties: 4, ActiveLeads: 1, TotalAgents: 2, TotalUsers: 3},
		decode[models.DashboardStats](t, w))
}

func TestHealthRoutes_Mounted(t *testing.T) {
	router := setupAPI(t)

	for _, path := range []string{"/health", "/api/health", "/api/health/ready", "/api/info"} {
		w := do(t, router, request{method: http.MethodGet, path: path})
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := do(t, router, request{method: http.MethodGet, path: "/api/info"})
	assert.Equal(t, store.ModeLocal, decode[InfoResponse](t, w).Mode)
}

func TestBodyLimit_Mounted(t *testing.T) {
	router := setupAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/blog", strings.NewReader("{}"))
	req.ContentLength = middleware.DefaultBodyLimit + 1
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
