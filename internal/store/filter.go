package store

import (
	"sort"
	"strings"

	"github.com/stwalsh4118/luxeestate/internal/models"
)

// SortOrder selects the ordering of property listings.
type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
)

// PropertyFilter narrows a property listing. Zero-valued keys are ignored.
// All supplied keys must hold; Search matches title, city or type.
type PropertyFilter struct {
	MinPrice *float64
	MaxPrice *float64
	Search   string
	Status   models.PropertyStatus
	AgentID  string
	SortBy   SortOrder
}

// Matches reports whether p satisfies every supplied predicate.
// Price bounds are inclusive and Search is a case-insensitive substring.
func (f PropertyFilter) Matches(p models.Property) bool {
	if f.AgentID != "" && p.AgentID != f.AgentID {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Location.City), needle) &&
			!strings.Contains(strings.ToLower(string(p.Type)), needle) {
			return false
		}
	}
	return true
}

// SortProperties orders ps in place. Unknown orders fall back to newest.
func SortProperties(ps []models.Property, order SortOrder) {
	switch order {
	case SortPriceAsc:
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Price < ps[j].Price })
	case SortPriceDesc:
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Price > ps[j].Price })
	default:
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].CreatedAt.After(ps[j].CreatedAt) })
	}
}

// ValidSortOrder reports whether s names a known order. Empty is valid.
func ValidSortOrder(s string) bool {
	switch SortOrder(s) {
	case "", SortNewest, SortPriceAsc, SortPriceDesc:
		return true
	}
	return false
}

// AgentFilter narrows an agent listing.
type AgentFilter struct {
	// IncludeInactive also returns BLOCKED agents.
	IncludeInactive bool
}

// Matches reports whether a passes the filter.
func (f AgentFilter) Matches(a models.Agent) bool {
	return f.IncludeInactive || a.IsVisible()
}

// LeadFilter narrows a lead listing.
type LeadFilter struct {
	Status          models.LeadStatus
	PropertyID      string
	AssignedAgentID string
}

// Matches reports whether l passes the filter.
func (f LeadFilter) Matches(l models.Lead) bool {
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.PropertyID != "" && l.PropertyID != f.PropertyID {
		return false
	}
	if f.AssignedAgentID != "" && l.AssignedAgentID != f.AssignedAgentID {
		return false
	}
	return true
}

// SortLeads orders leads newest first.
func SortLeads(ls []models.Lead) {
	sort.SliceStable(ls, func(i, j int) bool { return ls[i].CreatedAt.After(ls[j].CreatedAt) })
}

// BlogFilter narrows a blog listing.
type BlogFilter struct {
	AuthorID string
}

// Matches reports whether b passes the filter.
func (f BlogFilter) Matches(b models.BlogPost) bool {
	return f.AuthorID == "" || b.AuthorID == f.AuthorID
}

// SortBlogPosts orders posts newest first.
func SortBlogPosts(bs []models.BlogPost) {
	sort.SliceStable(bs, func(i, j int) bool { return bs[i].CreatedAt.After(bs[j].CreatedAt) })
}
