package domain

import "time"

// Role classifies what a user may do within their society.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleResident Role = "RESIDENT"
	RoleGuard    Role = "GUARD"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleResident, RoleGuard:
		return true
	}
	return false
}

// User is a login principal. A user with RoleAdmin and no home society is a
// super admin: unscoped, allowed everywhere.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Role         Role
	SocietyID    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor is the authenticated principal threaded explicitly through every
// service call. It is derived from a verified token, never from ambient state.
type Actor struct {
	UserID    string
	Name      string
	Role      Role
	SocietyID string
}

// SuperAdmin reports whether the actor is an unscoped admin.
func (a Actor) SuperAdmin() bool {
	return a.Role == RoleAdmin && a.SocietyID == ""
}
