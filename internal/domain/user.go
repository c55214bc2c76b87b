package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role distinguishes student and faculty accounts.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
)

// ParseRole maps an arbitrary string to a Role; anything unknown is a student.
func ParseRole(s string) Role {
	if Role(s) == RoleFaculty {
		return RoleFaculty
	}
	return RoleStudent
}

// UserID is a value object for user identity.
type UserID struct{ uuid.UUID }

// NewUserID creates a new UserID from uuid.
func NewUserID(id uuid.UUID) UserID { return UserID{UUID: id} }

// String returns the canonical string form.
func (u UserID) String() string { return u.UUID.String() }

// User is a Milo account. The email is the principal identifier used for
// project ownership and collaborator grants; it is immutable once created.
type User struct {
	ID           UserID
	Email        string
	Username     string
	Name         string
	Role         Role
	PasswordHash string
	// OAuth identity, empty for local accounts.
	Provider   string
	ProviderID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
