package domain

import "time"

// FlatMember is a resident's membership in a flat. The first member ever
// created for a flat is the owner and is auto-approved; every subsequent
// member starts unapproved and needs an admin's approval. There is no
// rejected state: removal is deletion.
type FlatMember struct {
	ID           string
	Name         string
	Phone        string
	Email        string
	Relationship string
	Owner        bool
	Approved     bool
	FlatID       string
	UserID       string // optional link to a login; empty means no account
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewFlatMember creates a membership record. Approval is decided by the
// caller: true only for the first member of the flat.
func NewFlatMember(id, name, phone, email, relationship string, owner, approved bool, flatID, userID string) FlatMember {
	now := time.Now().UTC()
	return FlatMember{
		ID:           id,
		Name:         name,
		Phone:        phone,
		Email:        email,
		Relationship: relationship,
		Owner:        owner,
		Approved:     approved,
		FlatID:       flatID,
		UserID:       userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
