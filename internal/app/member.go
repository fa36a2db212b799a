package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/societyq/societyq/internal/domain"
)

// MemberService owns the flat-member lifecycle: creation (first member is the
// auto-approved owner, later members wait for admin approval) and approval.
type MemberService struct {
	members domain.MemberRepository
	flats   domain.FlatRepository
	users   domain.UserRepository
	notifier
}

// NewMemberService creates a service with the given adapters.
func NewMemberService(members domain.MemberRepository, flats domain.FlatRepository, users domain.UserRepository, publisher domain.EventPublisher) *MemberService {
	return &MemberService{
		members:  members,
		flats:    flats,
		users:    users,
		notifier: notifier{publisher: publisher},
	}
}

// NewMemberInput carries the fields needed to create a flat member.
type NewMemberInput struct {
	FlatID       string
	Name         string
	Phone        string
	Email        string
	Relationship string
	Owner        bool
	UserID       string
}

// Create adds a member to a flat. The first member of a flat is created as
// the owner and auto-approved; once a flat has members, only an approved
// owner of that flat or an admin of the society may add more, and the new
// member starts unapproved pending admin review.
func (s *MemberService) Create(ctx context.Context, actor domain.Actor, in NewMemberInput) (domain.FlatMember, error) {
	flat, err := s.flats.GetByID(ctx, in.FlatID)
	if err != nil {
		return domain.FlatMember{}, err
	}

	if err := Authorize(actor, flat.SocietyID); err != nil {
		return domain.FlatMember{}, err
	}

	if in.UserID != "" {
		if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
			return domain.FlatMember{}, err
		}
	}

	existing, err := s.members.ListByFlat(ctx, flat.ID)
	if err != nil {
		return domain.FlatMember{}, fmt.Errorf("listing flat members: %w", err)
	}

	if len(existing) == 0 {
		member, err := s.createFirst(ctx, in, flat)
		var conflict *domain.ConflictError
		switch {
		case err == nil:
			return member, nil
		case errors.As(err, &conflict):
			// Lost the first-member claim to a concurrent creation.
			// Re-read and fall through as a regular pending member.
			existing, err = s.members.ListByFlat(ctx, flat.ID)
			if err != nil {
				return domain.FlatMember{}, fmt.Errorf("listing flat members: %w", err)
			}
		default:
			return domain.FlatMember{}, err
		}
	}

	if err := s.authorizeAddition(actor, flat, existing); err != nil {
		return domain.FlatMember{}, err
	}

	id, err := generateID()
	if err != nil {
		return domain.FlatMember{}, fmt.Errorf("generating member id: %w", err)
	}

	member := domain.NewFlatMember(id, in.Name, in.Phone, in.Email, in.Relationship,
		in.Owner, false, flat.ID, in.UserID)

	if err := s.members.Create(ctx, member); err != nil {
		return domain.FlatMember{}, fmt.Errorf("creating flat member: %w", err)
	}

	s.notify(ctx, domain.NewEnvelope(
		domain.EventNewFlatMemberRequest,
		fmt.Sprintf("New flat member request for flat %s", flat.Number),
		member, actor, domain.AudienceAdmins, "", flat.SocietyID,
	))

	return member, nil
}

// createFirst claims first-member status: the repository insert only lands
// while the flat is still empty, so the auto-approved owner exists at most
// once per flat.
func (s *MemberService) createFirst(ctx context.Context, in NewMemberInput, flat domain.Flat) (domain.FlatMember, error) {
	id, err := generateID()
	if err != nil {
		return domain.FlatMember{}, fmt.Errorf("generating member id: %w", err)
	}

	member := domain.NewFlatMember(id, in.Name, in.Phone, in.Email, in.Relationship,
		true, true, flat.ID, in.UserID)

	if err := s.members.CreateFirst(ctx, member); err != nil {
		return domain.FlatMember{}, err
	}
	return member, nil
}

// authorizeAddition enforces the owner-only rule for non-first members: the
// actor must be an admin of the flat's society or an approved owner member
// of the flat itself.
func (s *MemberService) authorizeAddition(actor domain.Actor, flat domain.Flat, existing []domain.FlatMember) error {
	if Authorize(actor, flat.SocietyID, domain.RoleAdmin) == nil {
		return nil
	}
	for _, m := range existing {
		if m.Owner && m.Approved && m.UserID != "" && m.UserID == actor.UserID {
			return nil
		}
	}
	return &domain.ForbiddenError{Reason: "only an approved owner or an admin may add flat members"}
}

// Approve marks a pending member approved. Only an admin of the flat's
// society may approve; a member already approved surfaces Conflict.
func (s *MemberService) Approve(ctx context.Context, actor domain.Actor, memberID string) (domain.FlatMember, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return domain.FlatMember{}, err
	}

	flat, err := s.flats.GetByID(ctx, member.FlatID)
	if err != nil {
		return domain.FlatMember{}, err
	}

	if err := Authorize(actor, flat.SocietyID, domain.RoleAdmin); err != nil {
		return domain.FlatMember{}, err
	}

	if err := s.members.Approve(ctx, member.ID); err != nil {
		return domain.FlatMember{}, err
	}
	member.Approved = true

	if member.UserID != "" {
		s.notify(ctx, domain.NewEnvelope(
			domain.EventFlatMemberApproved,
			fmt.Sprintf("Your membership of flat %s has been approved", flat.Number),
			member, actor, domain.AudiencePrivate, member.UserID, flat.SocietyID,
		))
	}

	return member, nil
}

// ListByFlat returns the members of a flat, scope-checked against the flat's
// society.
func (s *MemberService) ListByFlat(ctx context.Context, actor domain.Actor, flatID string) ([]domain.FlatMember, error) {
	flat, err := s.flats.GetByID(ctx, flatID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, flat.SocietyID); err != nil {
		return nil, err
	}
	return s.members.ListByFlat(ctx, flat.ID)
}

// ListPendingBySociety returns members awaiting approval, admin-only.
func (s *MemberService) ListPendingBySociety(ctx context.Context, actor domain.Actor, societyID string) ([]domain.FlatMember, error) {
	if err := Authorize(actor, societyID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.members.ListPendingBySociety(ctx, societyID)
}

// Delete removes a member. Removal is the only way out for an unapproved
// request: there is no rejected state.
func (s *MemberService) Delete(ctx context.Context, actor domain.Actor, memberID string) error {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	flat, err := s.flats.GetByID(ctx, member.FlatID)
	if err != nil {
		return err
	}
	if err := Authorize(actor, flat.SocietyID, domain.RoleAdmin); err != nil {
		return err
	}
	return s.members.Delete(ctx, member.ID)
}
