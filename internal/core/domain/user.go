package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of capabilities a user can hold.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// ParseRole accepts only the known roles.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleStudent:
		return RoleStudent, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }

// Toggled returns the opposite role.
func (r Role) Toggled() Role {
	if r == RoleAdmin {
		return RoleStudent
	}
	return RoleAdmin
}

// User models a registered patron or administrator.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName falls back to the username when either name part is missing.
func (u *User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}

// Actor returns the identity used when u performs an action.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Username: u.Username, Role: u.Role}
}

// Actor is the authenticated user on whose behalf a core operation runs.
type Actor struct {
	ID       int64
	Username string
	Role     Role
}

// IsAdmin reports whether the actor holds the admin capability.
func IsAdmin(a Actor) bool { return a.Role.IsAdmin() }
