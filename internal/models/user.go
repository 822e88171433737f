package models

import (
	"strings"
	"time"
)

// AdminRoleName is the role that unlocks the administration console.
const AdminRoleName = "admin"

// Role is a named permission set owned by the backend.
type Role struct {
	ID        int       `json:"id"`
	Name      string    `json:"name" validate:"required,min=3,max=50"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the role name denotes an administrator.
func IsAdmin(roleName string) bool {
	return strings.EqualFold(strings.TrimSpace(roleName), AdminRoleName)
}

// User represents a user of the store.
type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name" validate:"required,min=3,max=100"`
	Email     string    `json:"email" validate:"required,email"`
	Phone     string    `json:"phone" validate:"omitempty,e164"`
	Password  string    `json:"password,omitempty" validate:"omitempty,min=6"` // write-only
	RoleID    int       `json:"roleId" validate:"required,gt=0"`
	Role      *Role     `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Credentials is the body of POST /auth.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is what the backend returns for valid credentials.
type AuthResult struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"role"`
}
