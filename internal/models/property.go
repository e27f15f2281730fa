package models

import (
	"slices"
	"time"
)

// PropertyStatus is the market status of a listing.
type PropertyStatus string

const (
	PropertyForSale PropertyStatus = "FOR_SALE"
	PropertySold    PropertyStatus = "SOLD"
	PropertyPending PropertyStatus = "PENDING"
	PropertyForRent PropertyStatus = "FOR_RENT"
)

// PropertyType is the kind of building being listed.
type PropertyType string

const (
	TypeHouse     PropertyType = "House"
	TypeApartment PropertyType = "Apartment"
	TypeCondo     PropertyType = "Condo"
	TypeVilla     PropertyType = "Villa"
	TypeLand      PropertyType = "Land"
	TypePenthouse PropertyType = "Penthouse"
)

// Location is the postal address and map position of a listing.
type Location struct {
	Address string  `json:"address" yaml:"address"`
	City    string  `json:"city" yaml:"city"`
	State   string  `json:"state" yaml:"state"`
	Zip     string  `json:"zip" yaml:"zip"`
	Country string  `json:"country" yaml:"country"`
	Lat     float64 `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Lng     float64 `json:"lng" yaml:"lng" validate:"gte=-180,lte=180"`
}

// Features holds the physical characteristics of a listing.
// Bathrooms may be a half step (e.g. 4.5).
type Features struct {
	Bathrooms float64 `json:"bathrooms" yaml:"bathrooms" validate:"gte=0,halfstep"`
	Bedrooms  int     `json:"bedrooms" yaml:"bedrooms" validate:"gte=0"`
	Sqft      int     `json:"sqft" yaml:"sqft" validate:"gte=0"`
	YearBuilt int     `json:"yearBuilt" yaml:"yearBuilt" validate:"omitempty,gte=1000,lte=3000"`
}

// Property is a single real-estate listing owned by an agent.
// Slug is unique across all properties and is used for public lookups.
type Property struct {
	CreatedAt   time.Time      `json:"createdAt" yaml:"createdAt"`
	Location    Location       `json:"location" yaml:"location"`
	ID          string         `json:"id" yaml:"id"`
	Title       string         `json:"title" yaml:"title" validate:"required,max=200"`
	Slug        string         `json:"slug" yaml:"slug"`
	Description string         `json:"description" yaml:"description"`
	AgentID     string         `json:"agentId" yaml:"agentId" validate:"required"`
	Status      PropertyStatus `json:"status" yaml:"status" validate:"required,oneof=FOR_SALE SOLD PENDING FOR_RENT"`
	Type        PropertyType   `json:"type" yaml:"type" validate:"required,oneof=House Apartment Condo Villa Land Penthouse"`
	Amenities   []string       `json:"amenities" yaml:"amenities"`
	Images      []string       `json:"images" yaml:"images" validate:"dive,required"`
	Features    Features       `json:"features" yaml:"features"`
	Price       float64        `json:"price" yaml:"price" validate:"required,gt=0"`
}

// Normalize fills defaults that the store applies on create.
func (p *Property) Normalize() {
	if p.Status == "" {
		p.Status = PropertyForSale
	}
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
}

// Clone returns a copy of p that shares no slice storage with it.
func (p Property) Clone() Property {
	p.Amenities = slices.Clone(p.Amenities)
	p.Images = slices.Clone(p.Images)
	return p
}

// PropertyPatch is a partial update. Nil fields are left untouched;
// slices replace the stored value when non-nil, so an empty slice clears
// the list while null leaves it alone.
type PropertyPatch struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Price       *float64        `json:"price,omitempty"`
	Location    *Location       `json:"location,omitempty"`
	Features    *Features       `json:"features,omitempty"`
	AgentID     *string         `json:"agentId,omitempty"`
	Status      *PropertyStatus `json:"status,omitempty"`
	Type        *PropertyType   `json:"type,omitempty"`
	Amenities   []string        `json:"amenities"`
	Images      []string        `json:"images"`
}

// Apply merges the patch into p. It reports whether the title changed,
// which is the only case where the slug must be regenerated.
func (patch PropertyPatch) Apply(p *Property) (titleChanged bool) {
	if patch.Title != nil && *patch.Title != p.Title {
		p.Title = *patch.Title
		titleChanged = true
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.Features != nil {
		p.Features = *patch.Features
	}
	if patch.AgentID != nil {
		p.AgentID = *patch.AgentID
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Type != nil {
		p.Type = *patch.Type
	}
	if patch.Amenities != nil {
		p.Amenities = slices.Clone(patch.Amenities)
	}
	if patch.Images != nil {
		p.Images = slices.Clone(patch.Images)
	}
	return titleChanged
}
