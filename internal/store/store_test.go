package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/luxeestate/internal/models"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Modern Sunset Villa", "modern-sunset-villa"},
		{"  Investing in Real Estate: A Beginner's Guide ", "investing-in-real-estate-a-beginner-s-guide"},
		{"Top 10 Trends!!", "top-10-trends"},
		{"---", ""},
		{"Café Déjà", "caf-d-j"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}

func withSlugSuffixes(t *testing.T, suffixes ...string) {
	t.Helper()
	orig := slugSuffix
	i := 0
	slugSuffix = func() string {
		s := suffixes[i%len(suffixes)]
		i++
		return s
	}
	t.Cleanup(func() { slugSuffix = orig })
}

func TestGenerateSlug_RetriesOnCollision(t *testing.T) {
	withSlugSuffixes(t, "7", "7", "42")
	taken := map[string]bool{"test-villa-7": true}

	slug, err := GenerateSlug("Test Villa", func(c string) (bool, error) { return taken[c], nil })

	require.NoError(t, err)
	assert.Equal(t, "test-villa-42", slug)
}

func TestGenerateSlug_FallsBackToUUIDFragment(t *testing.T) {
	withSlugSuffixes(t, "1")
	calls := 0

	slug, err := GenerateSlug("Test Villa", func(c string) (bool, error) {
		calls++
		return c == "test-villa-1", nil
	})

	require.NoError(t, err)
	assert.Equal(t, slugNumericAttempts+1, calls)
	assert.Regexp(t, `^test-villa-[0-9a-f]{8}$`, slug)
}

func TestGenerateSlug_GivesUp(t *testing.T) {
	_, err := GenerateSlug("x", func(string) (bool, error) { return true, nil })
	assert.Error(t, err)
}

func TestGenerateSlug_PropagatesLookupError(t *testing.T) {
	boom := errors.New("boom")
	_, err := GenerateSlug("x", func(string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}

func TestPropertyFilter_Matches(t *testing.T) {
	p := models.Property{
		Title:    "Downtown Penthouse",
		Price:    1800000,
		AgentID:  "3",
		Status:   models.PropertyForSale,
		Type:     models.TypeApartment,
		Location: models.Location{City: "New York"},
	}
	price := func(v float64) *float64 { return &v }

	tests := []struct {
		name   string
		filter PropertyFilter
		want   bool
	}{
		{"empty filter", PropertyFilter{}, true},
		{"min bound inclusive", PropertyFilter{MinPrice: price(1800000)}, true},
		{"max bound inclusive", PropertyFilter{MaxPrice: price(1800000)}, true},
		{"below min", PropertyFilter{MinPrice: price(1800001)}, false},
		{"search city", PropertyFilter{Search: "new york"}, true},
		{"search type", PropertyFilter{Search: "APART"}, true},
		{"search miss", PropertyFilter{Search: "villa"}, false},
		{"status mismatch", PropertyFilter{Status: models.PropertySold}, false},
		{"agent match", PropertyFilter{AgentID: "3"}, true},
		{"all keys must hold", PropertyFilter{AgentID: "3", Search: "villa"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(p))
		})
	}
}

func TestSortProperties(t *testing.T) {
	base := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	ps := []models.Property{
		{ID: "a", Price: 300, CreatedAt: base},
		{ID: "b", Price: 100, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "c", Price: 200, CreatedAt: base.Add(time.Hour)},
	}
	ids := func() string {
		out := ""
		for _, p := range ps {
			out += p.ID
		}
		return out
	}

	SortProperties(ps, SortPriceAsc)
	assert.Equal(t, "bca", ids())

	SortProperties(ps, SortPriceDesc)
	assert.Equal(t, "acb", ids())

	SortProperties(ps, "")
	assert.Equal(t, "bca", ids())
}

func TestValidSortOrder(t *testing.T) {
	assert.True(t, ValidSortOrder(""))
	assert.True(t, ValidSortOrder("price_desc"))
	assert.False(t, ValidSortOrder("cheapest"))
}

func TestValidate(t *testing.T) {
	p := models.Property{
		Title:    "Ok",
		AgentID:  "2",
		Price:    10,
		Status:   models.PropertyForSale,
		Type:     models.TypeVilla,
		Features: models.Features{Bathrooms: 4.5},
	}
	require.NoError(t, Validate(p))

	p.Features.Bathrooms = 2.25
	p.Location.Lat = 91
	err := Validate(p)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Must be a whole or half number", verr.Fields["features.bathrooms"])
	assert.Contains(t, verr.Fields, "location.lat")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestErrors(t *testing.T) {
	conflict := NewAgentConflict(3)
	wrapped := fmt.Errorf("delete agent: %w", conflict)
	assert.ErrorIs(t, wrapped, ErrConflict)
	assert.NotErrorIs(t, wrapped, ErrNotFound)

	verr := &ValidationError{Fields: map[string]string{"b": "two", "a": "one"}}
	assert.Equal(t, "validation failed: a: one; b: two", verr.Error())
}
