package models

import "time"

// LeadStatus labels how far a lead has progressed. Any label may follow
// any other.
type LeadStatus string

const (
	LeadNew       LeadStatus = "NEW"
	LeadContacted LeadStatus = "CONTACTED"
	LeadClosed    LeadStatus = "CLOSED"
)

// Lead is a prospective-customer inquiry. Without a PropertyID it is a
// general inquiry, visible to an agent only once assigned.
type Lead struct {
	CreatedAt       time.Time  `json:"createdAt" yaml:"createdAt"`
	ID              string     `json:"id" yaml:"id"`
	PropertyID      string     `json:"propertyId,omitempty" yaml:"propertyId"`
	AssignedAgentID string     `json:"assignedAgentId,omitempty" yaml:"assignedAgentId"`
	Name            string     `json:"name" yaml:"name" validate:"required"`
	Email           string     `json:"email" yaml:"email" validate:"omitempty,email"`
	Phone           string     `json:"phone" yaml:"phone"`
	Message         string     `json:"message" yaml:"message"`
	Status          LeadStatus `json:"status" yaml:"status" validate:"required,oneof=NEW CONTACTED CLOSED"`
}

// VisibleTo reports whether a non-admin agent may see the lead, given
// the ids of the properties that agent owns.
func (l Lead) VisibleTo(agentID string, ownedProperties map[string]struct{}) bool {
	if l.PropertyID != "" {
		if _, ok := ownedProperties[l.PropertyID]; ok {
			return true
		}
	}
	return l.AssignedAgentID != "" && l.AssignedAgentID == agentID
}

// LeadPatch is a partial update for a lead.
type LeadPatch struct {
	PropertyID      *string     `json:"propertyId,omitempty"`
	AssignedAgentID *string     `json:"assignedAgentId,omitempty"`
	Name            *string     `json:"name,omitempty"`
	Email           *string     `json:"email,omitempty"`
	Phone           *string     `json:"phone,omitempty"`
	Message         *string     `json:"message,omitempty"`
	Status          *LeadStatus `json:"status,omitempty"`
}

// Apply merges the patch into l.
func (patch LeadPatch) Apply(l *Lead) {
	if patch.PropertyID != nil {
		l.PropertyID = *patch.PropertyID
	}
	if patch.AssignedAgentID != nil {
		l.AssignedAgentID = *patch.AssignedAgentID
	}
	if patch.Name != nil {
		l.Name = *patch.Name
	}
	if patch.Email != nil {
		l.Email = *patch.Email
	}
	if patch.Phone != nil {
		l.Phone = *patch.Phone
	}
	if patch.Message != nil {
		l.Message = *patch.Message
	}
	if patch.Status != nil {
		l.Status = *patch.Status
	}
}
