package models

// AgentStatus is the employment status of an agent.
type AgentStatus string

const (
	AgentActive  AgentStatus = "ACTIVE"
	AgentOnLeave AgentStatus = "ON_LEAVE"
	AgentBlocked AgentStatus = "BLOCKED"
)

// Agent is a listing agent.
//
// ListingsCount is derived: stores fill it on read by counting the
// properties that reference the agent, and any stored value is ignored.
// Password holds a bcrypt hash once persisted and is stripped by Public.
type Agent struct {
	ID            string      `json:"id" yaml:"id"`
	Name          string      `json:"name" yaml:"name" validate:"required"`
	Email         string      `json:"email" yaml:"email" validate:"required,email"`
	Role          UserRole    `json:"role" yaml:"role"`
	Avatar        string      `json:"avatar,omitempty" yaml:"avatar"`
	Phone         string      `json:"phone,omitempty" yaml:"phone"`
	Bio           string      `json:"bio" yaml:"bio"`
	LicenseNumber string      `json:"licenseNumber" yaml:"licenseNumber"`
	Status        AgentStatus `json:"status" yaml:"status" validate:"required,oneof=ACTIVE ON_LEAVE BLOCKED"`
	Password      string      `json:"password,omitempty" yaml:"password"`
	ListingsCount int         `json:"listingsCount" yaml:"-"`
}

// Normalize fills defaults that the store applies on create.
func (a *Agent) Normalize() {
	a.Role = RoleAgent
	if a.Status == "" {
		a.Status = AgentActive
	}
}

// Public returns a copy safe to hand to API consumers.
func (a Agent) Public() Agent {
	a.Password = ""
	return a
}

// IsVisible reports whether the agent appears in default listings.
func (a Agent) IsVisible() bool {
	return a.Status == AgentActive || a.Status == AgentOnLeave
}

// AgentPatch is a partial update for an agent.
type AgentPatch struct {
	Name          *string      `json:"name,omitempty"`
	Email         *string      `json:"email,omitempty"`
	Avatar        *string      `json:"avatar,omitempty"`
	Phone         *string      `json:"phone,omitempty"`
	Bio           *string      `json:"bio,omitempty"`
	LicenseNumber *string      `json:"licenseNumber,omitempty"`
	Status        *AgentStatus `json:"status,omitempty"`
	Password      *string      `json:"password,omitempty"`
}

// Apply merges the patch into a.
func (patch AgentPatch) Apply(a *Agent) {
	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.Email != nil {
		a.Email = *patch.Email
	}
	if patch.Avatar != nil {
		a.Avatar = *patch.Avatar
	}
	if patch.Phone != nil {
		a.Phone = *patch.Phone
	}
	if patch.Bio != nil {
		a.Bio = *patch.Bio
	}
	if patch.LicenseNumber != nil {
		a.LicenseNumber = *patch.LicenseNumber
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if patch.Password != nil {
		a.Password = *patch.Password
	}
}
