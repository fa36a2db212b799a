package domain

import "time"

// Visitor is logged at the gate by a guard. It has two independent set-once
// axes rather than a single status: approval (set by a flat member, with
// timestamp and approver) and exit (set by a guard). The record is closed
// when both are set and stays open indefinitely otherwise.
type Visitor struct {
	ID           string
	Name         string
	Phone        string
	Purpose      string
	FlatID       string
	LoggedByID   string // guard user id
	EntryTime    time.Time
	ExitTime     *time.Time
	Approved     bool
	ApprovalTime *time.Time
	ApprovedByID string // flat member id
	CreatedAt    time.Time
}

// NewVisitor creates an unapproved visitor with the entry time stamped.
func NewVisitor(id, name, phone, purpose, flatID, loggedByID string) Visitor {
	now := time.Now().UTC()
	return Visitor{
		ID:         id,
		Name:       name,
		Phone:      phone,
		Purpose:    purpose,
		FlatID:     flatID,
		LoggedByID: loggedByID,
		EntryTime:  now,
		CreatedAt:  now,
	}
}
