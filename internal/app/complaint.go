package app

import (
	"context"
	"fmt"
	"time"

	"github.com/societyq/societyq/internal/domain"
)

// ComplaintService owns the complaint lifecycle: residents raise complaints,
// admins move them through IN_PROGRESS to RESOLVED.
type ComplaintService struct {
	complaints domain.ComplaintRepository
	flats      domain.FlatRepository
	members    domain.MemberRepository
	validator  domain.TransitionValidator
	notifier
}

// NewComplaintService creates a service with the given adapters.
func NewComplaintService(complaints domain.ComplaintRepository, flats domain.FlatRepository, members domain.MemberRepository, validator domain.TransitionValidator, publisher domain.EventPublisher) *ComplaintService {
	return &ComplaintService{
		complaints: complaints,
		flats:      flats,
		members:    members,
		validator:  validator,
		notifier:   notifier{publisher: publisher},
	}
}

// NewComplaintInput carries the fields needed to raise a complaint.
type NewComplaintInput struct {
	FlatID      string
	RaisedByID  string // flat member id
	Title       string
	Description string
}

// Create raises a pending complaint and notifies the society's admins.
func (s *ComplaintService) Create(ctx context.Context, actor domain.Actor, in NewComplaintInput) (domain.Complaint, error) {
	flat, err := s.flats.GetByID(ctx, in.FlatID)
	if err != nil {
		return domain.Complaint{}, err
	}

	if err := Authorize(actor, flat.SocietyID, domain.RoleResident); err != nil {
		return domain.Complaint{}, err
	}

	raisedBy, err := s.members.GetByID(ctx, in.RaisedByID)
	if err != nil {
		return domain.Complaint{}, err
	}
	if raisedBy.FlatID != flat.ID {
		return domain.Complaint{}, &domain.InvalidArgumentError{Reason: "raising member does not belong to the flat"}
	}

	id, err := generateID()
	if err != nil {
		return domain.Complaint{}, fmt.Errorf("generating complaint id: %w", err)
	}

	complaint := domain.NewComplaint(id, in.Title, in.Description, flat.ID, raisedBy.ID)

	if err := s.complaints.Create(ctx, complaint); err != nil {
		return domain.Complaint{}, fmt.Errorf("creating complaint: %w", err)
	}

	s.notify(ctx, domain.NewEnvelope(
		domain.EventNewComplaint,
		fmt.Sprintf("New complaint: %s", complaint.Title),
		complaint, actor, domain.AudienceAdmins, "", flat.SocietyID,
	))

	return complaint, nil
}

// UpdateStatus applies one status transition. Resolving additionally stamps
// ResolvedAt and the resolution text; the raiser is notified privately. Only
// an admin of the owning society may transition.
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor domain.Actor, id string, status domain.ComplaintStatus, resolution string) (domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return domain.Complaint{}, err
	}

	flat, err := s.flats.GetByID(ctx, complaint.FlatID)
	if err != nil {
		return domain.Complaint{}, err
	}

	if err := Authorize(actor, flat.SocietyID, domain.RoleAdmin); err != nil {
		return domain.Complaint{}, err
	}

	event := domain.ComplaintEvent(status)
	if event == "" {
		return domain.Complaint{}, &domain.InvalidArgumentError{Reason: fmt.Sprintf("no transition leads to status %q", status)}
	}
	if _, err := s.validator.Apply(ctx, string(complaint.Status), event); err != nil {
		return domain.Complaint{}, err
	}

	var resolvedAt *time.Time
	if status == domain.ComplaintResolved {
		now := time.Now().UTC()
		resolvedAt = &now
	} else {
		resolution = ""
	}

	if err := s.complaints.UpdateStatus(ctx, complaint.ID, complaint.Status, status, resolution, resolvedAt); err != nil {
		return domain.Complaint{}, err
	}
	complaint.Status = status
	complaint.Resolution = resolution
	complaint.ResolvedAt = resolvedAt

	// The raiser is a flat member; the private channel is keyed by their
	// linked login. No linked login means the envelope is dropped downstream.
	var recipientID string
	if raisedBy, err := s.members.GetByID(ctx, complaint.RaisedByID); err == nil {
		recipientID = raisedBy.UserID
	}

	s.notify(ctx, domain.NewEnvelope(
		domain.EventComplaintUpdated,
		fmt.Sprintf("Your complaint status has been updated to %s", status),
		complaint, actor, domain.AudiencePrivate, recipientID, flat.SocietyID,
	))

	return complaint, nil
}

// GetByID returns one complaint, scope-checked against its society.
func (s *ComplaintService) GetByID(ctx context.Context, actor domain.Actor, id string) (domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return domain.Complaint{}, err
	}
	flat, err := s.flats.GetByID(ctx, complaint.FlatID)
	if err != nil {
		return domain.Complaint{}, err
	}
	if err := Authorize(actor, flat.SocietyID); err != nil {
		return domain.Complaint{}, err
	}
	return complaint, nil
}

// ListByFlat returns a flat's complaints, scope-checked.
func (s *ComplaintService) ListByFlat(ctx context.Context, actor domain.Actor, flatID string) ([]domain.Complaint, error) {
	flat, err := s.flats.GetByID(ctx, flatID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, flat.SocietyID); err != nil {
		return nil, err
	}
	return s.complaints.ListByFlat(ctx, flat.ID)
}

// ListBySociety returns a society's complaints, optionally filtered by
// status. Admin-only.
func (s *ComplaintService) ListBySociety(ctx context.Context, actor domain.Actor, societyID string, status *domain.ComplaintStatus) ([]domain.Complaint, error) {
	if err := Authorize(actor, societyID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if status != nil {
		return s.complaints.ListBySocietyAndStatus(ctx, societyID, *status)
	}
	return s.complaints.ListBySociety(ctx, societyID)
}
