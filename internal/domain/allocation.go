package domain

import "time"

// AllocationStatus is the lifecycle state of a flat allocation request.
// PENDING is the only non-terminal state.
type AllocationStatus string

const (
	AllocationPending  AllocationStatus = "PENDING"
	AllocationApproved AllocationStatus = "APPROVED"
	AllocationRejected AllocationStatus = "REJECTED"
)

// Events that move an allocation request through its lifecycle.
const (
	EventAllocationApprove = "approve"
	EventAllocationReject  = "reject"
)

// Transition defines a valid state change: an event moves a record from Src
// to Dst. Each workflow entity with a state machine publishes its table as
// domain knowledge consumed by the FSM adapter.
type Transition struct {
	Event string
	Src   string
	Dst   string
}

// AllocationTransitions defines all valid allocation state changes.
var AllocationTransitions = []Transition{
	{Event: EventAllocationApprove, Src: string(AllocationPending), Dst: string(AllocationApproved)},
	{Event: EventAllocationReject, Src: string(AllocationPending), Dst: string(AllocationRejected)},
}

// FlatAllocation is a resident's request to occupy a flat. Approval flips the
// target flat's occupied status as a silent side effect.
type FlatAllocation struct {
	ID            string
	FlatID        string
	UserID        string
	Status        AllocationStatus
	ResidentType  string
	Occupation    string
	FamilyMembers int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewFlatAllocation creates an allocation request in the pending state.
func NewFlatAllocation(id, flatID, userID, residentType, occupation string, familyMembers int) FlatAllocation {
	now := time.Now().UTC()
	return FlatAllocation{
		ID:            id,
		FlatID:        flatID,
		UserID:        userID,
		Status:        AllocationPending,
		ResidentType:  residentType,
		Occupation:    occupation,
		FamilyMembers: familyMembers,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
