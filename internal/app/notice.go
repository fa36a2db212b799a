package app

import (
	"context"
	"fmt"
	"time"

	"github.com/societyq/societyq/internal/domain"
)

// NoticeService owns society notices: admins publish and retire them, the
// daily sweep deactivates the expired ones.
type NoticeService struct {
	notices   domain.NoticeRepository
	societies domain.SocietyRepository
	notifier
}

// NewNoticeService creates a service with the given adapters.
func NewNoticeService(notices domain.NoticeRepository, societies domain.SocietyRepository, publisher domain.EventPublisher) *NoticeService {
	return &NoticeService{
		notices:   notices,
		societies: societies,
		notifier:  notifier{publisher: publisher},
	}
}

// NewNoticeInput carries the fields needed to publish a notice.
type NewNoticeInput struct {
	SocietyID string
	Title     string
	Content   string
	ExpiresAt *time.Time
}

// Create publishes an active notice to the whole society. Admin-only.
func (s *NoticeService) Create(ctx context.Context, actor domain.Actor, in NewNoticeInput) (domain.Notice, error) {
	ok, err := s.societies.Exists(ctx, in.SocietyID)
	if err != nil {
		return domain.Notice{}, fmt.Errorf("checking society: %w", err)
	}
	if !ok {
		return domain.Notice{}, &domain.NotFoundError{Resource: "society", ID: in.SocietyID}
	}

	if err := Authorize(actor, in.SocietyID, domain.RoleAdmin); err != nil {
		return domain.Notice{}, err
	}

	id, err := generateID()
	if err != nil {
		return domain.Notice{}, fmt.Errorf("generating notice id: %w", err)
	}

	notice := domain.NewNotice(id, in.Title, in.Content, in.SocietyID, actor.UserID, in.ExpiresAt)

	if err := s.notices.Create(ctx, notice); err != nil {
		return domain.Notice{}, fmt.Errorf("creating notice: %w", err)
	}

	s.notify(ctx, domain.NewEnvelope(
		domain.EventNewNotice,
		fmt.Sprintf("New notice: %s", notice.Title),
		notice, actor, domain.AudienceSociety, "", notice.SocietyID,
	))

	return notice, nil
}

// Update rewrites a notice's content and expiry. A still-active notice is
// re-announced to the society topic. Admin-only.
func (s *NoticeService) Update(ctx context.Context, actor domain.Actor, id, title, content string, expiresAt *time.Time, active bool) (domain.Notice, error) {
	notice, err := s.notices.GetByID(ctx, id)
	if err != nil {
		return domain.Notice{}, err
	}

	if err := Authorize(actor, notice.SocietyID, domain.RoleAdmin); err != nil {
		return domain.Notice{}, err
	}

	notice.Title = title
	notice.Content = content
	notice.ExpiresAt = expiresAt
	notice.Active = active
	notice.UpdatedAt = time.Now().UTC()

	if err := s.notices.Update(ctx, notice); err != nil {
		return domain.Notice{}, fmt.Errorf("updating notice: %w", err)
	}

	if notice.Active {
		s.notify(ctx, domain.NewEnvelope(
			domain.EventNoticeUpdated,
			fmt.Sprintf("Notice updated: %s", notice.Title),
			notice, actor, domain.AudienceSociety, "", notice.SocietyID,
		))
	}

	return notice, nil
}

// Deactivate retires a notice manually. Racing the expiry sweep is allowed:
// both write the same terminal state, last write wins.
func (s *NoticeService) Deactivate(ctx context.Context, actor domain.Actor, id string) (domain.Notice, error) {
	notice, err := s.notices.GetByID(ctx, id)
	if err != nil {
		return domain.Notice{}, err
	}

	if err := Authorize(actor, notice.SocietyID, domain.RoleAdmin); err != nil {
		return domain.Notice{}, err
	}

	if err := s.notices.Deactivate(ctx, notice.ID); err != nil {
		return domain.Notice{}, err
	}
	notice.Active = false

	return notice, nil
}

// DeactivateExpired retires every active notice past its expiry and reports
// how many were touched. Invoked by the daily sweep job.
func (s *NoticeService) DeactivateExpired(ctx context.Context) (int, error) {
	return s.notices.DeactivateExpired(ctx, time.Now().UTC())
}

// ListBySociety returns a society's notices, scope-checked. Pass activeOnly
// to restrict to notices still in force.
func (s *NoticeService) ListBySociety(ctx context.Context, actor domain.Actor, societyID string, activeOnly bool) ([]domain.Notice, error) {
	if err := Authorize(actor, societyID); err != nil {
		return nil, err
	}
	if activeOnly {
		return s.notices.ListActiveBySociety(ctx, societyID)
	}
	return s.notices.ListBySociety(ctx, societyID)
}
