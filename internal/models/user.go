package models

import "strings"

// UserRole is the access level of an account.
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleAgent UserRole = "AGENT"
	RoleUser  UserRole = "USER"
)

// legacyBlockedSuffix is how older data marked blocked users.
const legacyBlockedSuffix = " (BLOCKED)"

// User is a site account. Email is unique, compared case-insensitively.
type User struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name" validate:"required"`
	Email    string   `json:"email" yaml:"email" validate:"required,email"`
	Role     UserRole `json:"role" yaml:"role" validate:"required,oneof=ADMIN AGENT USER"`
	Avatar   string   `json:"avatar,omitempty" yaml:"avatar"`
	Phone    string   `json:"phone,omitempty" yaml:"phone"`
	Password string   `json:"password,omitempty" yaml:"password"`
	Blocked  bool     `json:"blocked" yaml:"blocked"`
}

// Normalize fills defaults and converts the legacy name suffix into the
// Blocked flag.
func (u *User) Normalize() {
	if u.Role == "" {
		u.Role = RoleUser
	}
	if strings.HasSuffix(u.Name, legacyBlockedSuffix) {
		u.Name = strings.TrimSuffix(u.Name, legacyBlockedSuffix)
		u.Blocked = true
	}
}

// Public returns a copy safe to hand to API consumers.
func (u User) Public() User {
	u.Password = ""
	return u
}

// UserPatch is a partial update for a user.
type UserPatch struct {
	Name     *string   `json:"name,omitempty"`
	Email    *string   `json:"email,omitempty"`
	Role     *UserRole `json:"role,omitempty"`
	Avatar   *string   `json:"avatar,omitempty"`
	Phone    *string   `json:"phone,omitempty"`
	Password *string   `json:"password,omitempty"`
	Blocked  *bool     `json:"blocked,omitempty"`
}

// Apply merges the patch into u.
func (patch UserPatch) Apply(u *User) {
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.Avatar != nil {
		u.Avatar = *patch.Avatar
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	if patch.Password != nil {
		u.Password = *patch.Password
	}
	if patch.Blocked != nil {
		u.Blocked = *patch.Blocked
	}
}
