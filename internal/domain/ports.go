package domain

import (
	"context"
	"time"
)

// SocietyRepository defines persistence for societies.
type SocietyRepository interface {
	Create(ctx context.Context, s Society) error
	GetByID(ctx context.Context, id string) (Society, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]Society, error)
}

// BuildingRepository defines persistence for buildings.
type BuildingRepository interface {
	Create(ctx context.Context, b Building) error
	GetByID(ctx context.Context, id string) (Building, error)
	ListBySociety(ctx context.Context, societyID string) ([]Building, error)
}

// FlatRepository defines persistence for flats. Flats are always loaded with
// their society resolved through the owning building. Occupancy is written by
// the allocation repository as part of the approval commit.
type FlatRepository interface {
	Create(ctx context.Context, f Flat) error
	GetByID(ctx context.Context, id string) (Flat, error)
	ListByBuilding(ctx context.Context, buildingID string) ([]Flat, error)
	ListBySociety(ctx context.Context, societyID string) ([]Flat, error)
}

// UserRepository defines persistence for users.
type UserRepository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ListBySociety(ctx context.Context, societyID string) ([]User, error)
}

// MemberRepository defines persistence for flat members. Approve is a guarded
// commit: it succeeds only against a currently unapproved row. CreateFirst
// claims first-member status: the insert only lands while the flat has no
// members, so exactly one of two concurrent claims wins and the loser sees
// Conflict.
type MemberRepository interface {
	Create(ctx context.Context, m FlatMember) error
	CreateFirst(ctx context.Context, m FlatMember) error
	GetByID(ctx context.Context, id string) (FlatMember, error)
	ListByFlat(ctx context.Context, flatID string) ([]FlatMember, error)
	ListOwnersByFlat(ctx context.Context, flatID string) ([]FlatMember, error)
	ListByUser(ctx context.Context, userID string) ([]FlatMember, error)
	ListPendingBySociety(ctx context.Context, societyID string) ([]FlatMember, error)
	Approve(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// AllocationRepository defines persistence for flat allocation requests.
// UpdateStatusIfPending is the single-writer commit for the allocation state
// machine: only one of two concurrent approvers can win. ApproveIfPending
// commits the approval together with the flat's occupancy flip; either both
// land or neither does.
type AllocationRepository interface {
	Create(ctx context.Context, a FlatAllocation) error
	GetByID(ctx context.Context, id string) (FlatAllocation, error)
	ListBySociety(ctx context.Context, societyID string) ([]FlatAllocation, error)
	ListByUser(ctx context.Context, userID string) ([]FlatAllocation, error)
	UpdateStatusIfPending(ctx context.Context, id string, status AllocationStatus) error
	ApproveIfPending(ctx context.Context, id, flatID string) error
}

// ComplaintRepository defines persistence for complaints. UpdateStatus is
// guarded on the expected current status.
type ComplaintRepository interface {
	Create(ctx context.Context, c Complaint) error
	GetByID(ctx context.Context, id string) (Complaint, error)
	ListByFlat(ctx context.Context, flatID string) ([]Complaint, error)
	ListBySociety(ctx context.Context, societyID string) ([]Complaint, error)
	ListBySocietyAndStatus(ctx context.Context, societyID string, status ComplaintStatus) ([]Complaint, error)
	UpdateStatus(ctx context.Context, id string, from, to ComplaintStatus, resolution string, resolvedAt *time.Time) error
}

// VisitorRepository defines persistence for visitors. Approve and RecordExit
// are guarded set-once commits on their respective axes.
type VisitorRepository interface {
	Create(ctx context.Context, v Visitor) error
	GetByID(ctx context.Context, id string) (Visitor, error)
	ListBySociety(ctx context.Context, societyID string) ([]Visitor, error)
	ListActiveBySociety(ctx context.Context, societyID string) ([]Visitor, error)
	ListPendingBySociety(ctx context.Context, societyID string) ([]Visitor, error)
	Approve(ctx context.Context, id, approvedByID string, at time.Time) error
	RecordExit(ctx context.Context, id string, at time.Time) error
}

// BillRepository defines persistence for maintenance bills. MarkPaid is a
// guarded commit against an unpaid row.
type BillRepository interface {
	Create(ctx context.Context, b MaintenanceBill) error
	GetByID(ctx context.Context, id string) (MaintenanceBill, error)
	ListByFlat(ctx context.Context, flatID string) ([]MaintenanceBill, error)
	ListBySociety(ctx context.Context, societyID string) ([]MaintenanceBill, error)
	ListPendingBySociety(ctx context.Context, societyID string) ([]MaintenanceBill, error)
	ListOverdue(ctx context.Context, before time.Time) ([]MaintenanceBill, error)
	MarkPaid(ctx context.Context, id, reference string, at time.Time) error
}

// NoticeRepository defines persistence for notices.
type NoticeRepository interface {
	Create(ctx context.Context, n Notice) error
	GetByID(ctx context.Context, id string) (Notice, error)
	ListBySociety(ctx context.Context, societyID string) ([]Notice, error)
	ListActiveBySociety(ctx context.Context, societyID string) ([]Notice, error)
	Update(ctx context.Context, n Notice) error
	Deactivate(ctx context.Context, id string) error
	DeactivateExpired(ctx context.Context, now time.Time) (int, error)
}

// EventPublisher defines the contract for emitting notification envelopes.
// Publishing happens only after the triggering mutation committed.
type EventPublisher interface {
	Publish(ctx context.Context, env Envelope) error
}

// Transport delivers envelopes to concrete addresses: a user's private
// channel or a named broadcast topic. Delivery is at-least-once and ordered
// per channel; the transport is assumed reliable.
type Transport interface {
	SendToUser(ctx context.Context, userID string, env Envelope) error
	SendToTopic(ctx context.Context, topic string, env Envelope) error
}

// TransitionValidator checks whether an event is valid from the current
// state and returns the destination state.
type TransitionValidator interface {
	Apply(ctx context.Context, current, event string) (string, error)
}
