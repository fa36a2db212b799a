package app

import (
	"context"
	"fmt"
	"time"

	"github.com/societyq/societyq/internal/domain"
)

// VisitorService owns the visitor lifecycle: guards log entries, flat members
// approve, guards record exits. Approval and exit are independent set-once
// axes; neither implies the other.
type VisitorService struct {
	visitors domain.VisitorRepository
	flats    domain.FlatRepository
	members  domain.MemberRepository
	notifier
}

// NewVisitorService creates a service with the given adapters.
func NewVisitorService(visitors domain.VisitorRepository, flats domain.FlatRepository, members domain.MemberRepository, publisher domain.EventPublisher) *VisitorService {
	return &VisitorService{
		visitors: visitors,
		flats:    flats,
		members:  members,
		notifier: notifier{publisher: publisher},
	}
}

// NewVisitorInput carries the fields needed to log a visitor at the gate.
type NewVisitorInput struct {
	FlatID  string
	Name    string
	Phone   string
	Purpose string
}

// Create logs an unapproved visitor with the entry time stamped and asks the
// flat's owners for approval, one private notification each. Guards only.
func (s *VisitorService) Create(ctx context.Context, actor domain.Actor, in NewVisitorInput) (domain.Visitor, error) {
	flat, err := s.flats.GetByID(ctx, in.FlatID)
	if err != nil {
		return domain.Visitor{}, err
	}

	if err := Authorize(actor, flat.SocietyID, domain.RoleGuard); err != nil {
		return domain.Visitor{}, err
	}

	id, err := generateID()
	if err != nil {
		return domain.Visitor{}, fmt.Errorf("generating visitor id: %w", err)
	}

	visitor := domain.NewVisitor(id, in.Name, in.Phone, in.Purpose, flat.ID, actor.UserID)

	if err := s.visitors.Create(ctx, visitor); err != nil {
		return domain.Visitor{}, fmt.Errorf("creating visitor log: %w", err)
	}

	owners, err := s.members.ListOwnersByFlat(ctx, flat.ID)
	if err != nil {
		return domain.Visitor{}, fmt.Errorf("listing flat owners: %w", err)
	}
	for _, owner := range owners {
		if owner.UserID == "" {
			continue
		}
		s.notify(ctx, domain.NewEnvelope(
			domain.EventVisitorApprovalReq,
			fmt.Sprintf("Visitor %s is waiting for approval to visit flat %s", visitor.Name, flat.Number),
			visitor, actor, domain.AudiencePrivate, owner.UserID, flat.SocietyID,
		))
	}

	return visitor, nil
}

// Approve marks the visitor approved, stamping the approval time and the
// approving member, and notifies the society's guards. The actor must be an
// approved member of the visited flat. A second approval observes Conflict.
func (s *VisitorService) Approve(ctx context.Context, actor domain.Actor, visitorID string) (domain.Visitor, error) {
	visitor, err := s.visitors.GetByID(ctx, visitorID)
	if err != nil {
		return domain.Visitor{}, err
	}

	flat, err := s.flats.GetByID(ctx, visitor.FlatID)
	if err != nil {
		return domain.Visitor{}, err
	}

	if err := Authorize(actor, flat.SocietyID); err != nil {
		return domain.Visitor{}, err
	}

	approver, err := s.membershipOf(ctx, actor, flat.ID)
	if err != nil {
		return domain.Visitor{}, err
	}

	now := time.Now().UTC()
	if err := s.visitors.Approve(ctx, visitor.ID, approver.ID, now); err != nil {
		return domain.Visitor{}, err
	}
	visitor.Approved = true
	visitor.ApprovalTime = &now
	visitor.ApprovedByID = approver.ID

	s.notify(ctx, domain.NewEnvelope(
		domain.EventVisitorApproved,
		fmt.Sprintf("Visitor %s has been approved to visit flat %s", visitor.Name, flat.Number),
		visitor, actor, domain.AudienceGuards, "", flat.SocietyID,
	))

	return visitor, nil
}

// membershipOf finds the actor's approved membership of the given flat.
func (s *VisitorService) membershipOf(ctx context.Context, actor domain.Actor, flatID string) (domain.FlatMember, error) {
	memberships, err := s.members.ListByFlat(ctx, flatID)
	if err != nil {
		return domain.FlatMember{}, fmt.Errorf("listing flat members: %w", err)
	}
	for _, m := range memberships {
		if m.Approved && m.UserID != "" && m.UserID == actor.UserID {
			return m, nil
		}
	}
	return domain.FlatMember{}, &domain.ForbiddenError{Reason: "only a member of the visited flat may approve"}
}

// RecordExit stamps the exit time. Guards only; the approval axis is left
// untouched. A second exit observes Conflict.
func (s *VisitorService) RecordExit(ctx context.Context, actor domain.Actor, visitorID string) (domain.Visitor, error) {
	visitor, err := s.visitors.GetByID(ctx, visitorID)
	if err != nil {
		return domain.Visitor{}, err
	}

	flat, err := s.flats.GetByID(ctx, visitor.FlatID)
	if err != nil {
		return domain.Visitor{}, err
	}

	if err := Authorize(actor, flat.SocietyID, domain.RoleGuard); err != nil {
		return domain.Visitor{}, err
	}

	now := time.Now().UTC()
	if err := s.visitors.RecordExit(ctx, visitor.ID, now); err != nil {
		return domain.Visitor{}, err
	}
	visitor.ExitTime = &now

	return visitor, nil
}

// ListBySociety returns a society's visitor log.
func (s *VisitorService) ListBySociety(ctx context.Context, actor domain.Actor, societyID string) ([]domain.Visitor, error) {
	if err := Authorize(actor, societyID); err != nil {
		return nil, err
	}
	return s.visitors.ListBySociety(ctx, societyID)
}

// ListActiveBySociety returns visitors that have not exited yet.
func (s *VisitorService) ListActiveBySociety(ctx context.Context, actor domain.Actor, societyID string) ([]domain.Visitor, error) {
	if err := Authorize(actor, societyID); err != nil {
		return nil, err
	}
	return s.visitors.ListActiveBySociety(ctx, societyID)
}

// ListPendingBySociety returns visitors still awaiting approval.
func (s *VisitorService) ListPendingBySociety(ctx context.Context, actor domain.Actor, societyID string) ([]domain.Visitor, error) {
	if err := Authorize(actor, societyID); err != nil {
		return nil, err
	}
	return s.visitors.ListPendingBySociety(ctx, societyID)
}
