package model

import (
	"fmt"
	"time"
)

// Role is the closed set of roles a user can hold. It is a declared type
// rather than a bare string so unknown values are rejected at the API and
// database boundaries instead of silently accepted.
type Role string

const (
	RoleUser     Role = "user"
	RoleSales    Role = "sales"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// ParseRole validates a raw role string against the known variants.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleSales, RoleManager, RoleAdmin, RoleCustomer:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User represents an application user record as stored in the `users`
// table. PasswordHash is never serialized; handlers return the Public view.
type User struct {
	ID           string    `json:"id"` // UUID primary key
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the wire representation of a user with credentials stripped.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public strips the password hash and server-only fields.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
