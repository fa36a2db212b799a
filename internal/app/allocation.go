package app

import (
	"context"
	"fmt"

	"github.com/societyq/societyq/internal/domain"
)

// AllocationService owns the flat-allocation lifecycle: residents request a
// flat, admins approve or reject, approval flips the flat's occupancy.
type AllocationService struct {
	allocations domain.AllocationRepository
	flats       domain.FlatRepository
	validator   domain.TransitionValidator
	notifier
}

// NewAllocationService creates a service with the given adapters.
func NewAllocationService(allocations domain.AllocationRepository, flats domain.FlatRepository, validator domain.TransitionValidator, publisher domain.EventPublisher) *AllocationService {
	return &AllocationService{
		allocations: allocations,
		flats:       flats,
		validator:   validator,
		notifier:    notifier{publisher: publisher},
	}
}

// NewAllocationInput carries the fields needed to request a flat.
type NewAllocationInput struct {
	FlatID        string
	ResidentType  string
	Occupation    string
	FamilyMembers int
}

// Create files a pending allocation request and notifies the society's
// admins. Only a resident of the flat's society may request.
func (s *AllocationService) Create(ctx context.Context, actor domain.Actor, in NewAllocationInput) (domain.FlatAllocation, error) {
	flat, err := s.flats.GetByID(ctx, in.FlatID)
	if err != nil {
		return domain.FlatAllocation{}, err
	}

	if err := Authorize(actor, flat.SocietyID, domain.RoleResident); err != nil {
		return domain.FlatAllocation{}, err
	}

	id, err := generateID()
	if err != nil {
		return domain.FlatAllocation{}, fmt.Errorf("generating allocation id: %w", err)
	}

	alloc := domain.NewFlatAllocation(id, flat.ID, actor.UserID, in.ResidentType, in.Occupation, in.FamilyMembers)

	if err := s.allocations.Create(ctx, alloc); err != nil {
		return domain.FlatAllocation{}, fmt.Errorf("creating allocation request: %w", err)
	}

	s.notify(ctx, domain.NewEnvelope(
		domain.EventNewAllocationRequest,
		fmt.Sprintf("New flat allocation request from %s for flat %s", actor.Name, flat.Number),
		alloc, actor, domain.AudienceAdmins, "", flat.SocietyID,
	))

	return alloc, nil
}

// Approve moves a pending request to APPROVED and flips the flat to
// OCCUPIED. The occupancy flip is a silent side effect: it emits no
// notification of its own. Of two concurrent approvers exactly one wins the
// guarded commit; the other observes Conflict.
func (s *AllocationService) Approve(ctx context.Context, actor domain.Actor, id string) (domain.FlatAllocation, error) {
	return s.transition(ctx, actor, id, domain.EventAllocationApprove)
}

// Reject moves a pending request to REJECTED.
func (s *AllocationService) Reject(ctx context.Context, actor domain.Actor, id string) (domain.FlatAllocation, error) {
	return s.transition(ctx, actor, id, domain.EventAllocationReject)
}

func (s *AllocationService) transition(ctx context.Context, actor domain.Actor, id, event string) (domain.FlatAllocation, error) {
	alloc, err := s.allocations.GetByID(ctx, id)
	if err != nil {
		return domain.FlatAllocation{}, err
	}

	flat, err := s.flats.GetByID(ctx, alloc.FlatID)
	if err != nil {
		return domain.FlatAllocation{}, err
	}

	if err := Authorize(actor, flat.SocietyID, domain.RoleAdmin); err != nil {
		return domain.FlatAllocation{}, err
	}

	next, err := s.validator.Apply(ctx, string(alloc.Status), event)
	if err != nil {
		return domain.FlatAllocation{}, err
	}
	status := domain.AllocationStatus(next)

	// Single-writer commit: only succeeds against a still-pending row, so
	// of two concurrent approvers exactly one wins. Approval carries the
	// flat's occupancy flip inside the same commit.
	if status == domain.AllocationApproved {
		err = s.allocations.ApproveIfPending(ctx, alloc.ID, flat.ID)
	} else {
		err = s.allocations.UpdateStatusIfPending(ctx, alloc.ID, status)
	}
	if err != nil {
		return domain.FlatAllocation{}, err
	}
	alloc.Status = status

	return alloc, nil
}

// ListBySociety returns a society's allocation requests, admin-only.
func (s *AllocationService) ListBySociety(ctx context.Context, actor domain.Actor, societyID string) ([]domain.FlatAllocation, error) {
	if err := Authorize(actor, societyID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.allocations.ListBySociety(ctx, societyID)
}

// ListMine returns the actor's own allocation requests.
func (s *AllocationService) ListMine(ctx context.Context, actor domain.Actor) ([]domain.FlatAllocation, error) {
	return s.allocations.ListByUser(ctx, actor.UserID)
}
