package domain

import "time"

// ComplaintStatus is the lifecycle state of a complaint. RESOLVED is
// terminal: complaints are never reopened.
type ComplaintStatus string

const (
	ComplaintPending    ComplaintStatus = "PENDING"
	ComplaintInProgress ComplaintStatus = "IN_PROGRESS"
	ComplaintResolved   ComplaintStatus = "RESOLVED"
)

// Events that move a complaint through its lifecycle.
const (
	EventComplaintStart   = "start_progress"
	EventComplaintResolve = "resolve"
)

// ComplaintTransitions defines all valid complaint state changes.
var ComplaintTransitions = []Transition{
	{Event: EventComplaintStart, Src: string(ComplaintPending), Dst: string(ComplaintInProgress)},
	{Event: EventComplaintResolve, Src: string(ComplaintPending), Dst: string(ComplaintResolved)},
	{Event: EventComplaintResolve, Src: string(ComplaintInProgress), Dst: string(ComplaintResolved)},
}

// ComplaintEvent maps a target status to the event that reaches it.
// Returns the empty string for statuses no event leads to (e.g. PENDING).
func ComplaintEvent(target ComplaintStatus) string {
	switch target {
	case ComplaintInProgress:
		return EventComplaintStart
	case ComplaintResolved:
		return EventComplaintResolve
	}
	return ""
}

// Complaint is raised by a flat member and worked by society admins.
// Resolving stamps ResolvedAt and the resolution text.
type Complaint struct {
	ID          string
	Title       string
	Description string
	Status      ComplaintStatus
	FlatID      string
	RaisedByID  string // flat member id
	Resolution  string
	ResolvedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewComplaint creates a complaint in the pending state.
func NewComplaint(id, title, description, flatID, raisedByID string) Complaint {
	now := time.Now().UTC()
	return Complaint{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      ComplaintPending,
		FlatID:      flatID,
		RaisedByID:  raisedByID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
