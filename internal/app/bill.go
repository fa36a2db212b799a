package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/societyq/societyq/internal/domain"
)

// billNumberAttempts bounds the collision retries during bulk generation.
const billNumberAttempts = 3

// BillService owns the maintenance-bill lifecycle: admins issue bills
// (singly or in bulk for a whole society), flat owners pay them.
type BillService struct {
	bills   domain.BillRepository
	flats   domain.FlatRepository
	members domain.MemberRepository
	notifier
}

// NewBillService creates a service with the given adapters.
func NewBillService(bills domain.BillRepository, flats domain.FlatRepository, members domain.MemberRepository, publisher domain.EventPublisher) *BillService {
	return &BillService{
		bills:    bills,
		flats:    flats,
		members:  members,
		notifier: notifier{publisher: publisher},
	}
}

// NewBillInput carries the fields needed to issue a single bill.
type NewBillInput struct {
	FlatID      string
	BillDate    time.Time
	DueDate     time.Time
	Amount      float64
	Description string
}

// Create issues one unpaid bill and privately notifies each flat owner with
// a linked login. Admin-only. A bill-number collision surfaces AlreadyExists
// and the caller retries with a fresh number.
func (s *BillService) Create(ctx context.Context, actor domain.Actor, in NewBillInput) (domain.MaintenanceBill, error) {
	flat, err := s.flats.GetByID(ctx, in.FlatID)
	if err != nil {
		return domain.MaintenanceBill{}, err
	}

	if err := Authorize(actor, flat.SocietyID, domain.RoleAdmin); err != nil {
		return domain.MaintenanceBill{}, err
	}

	billDate := in.BillDate
	if billDate.IsZero() {
		billDate = time.Now().UTC()
	}

	id, err := generateID()
	if err != nil {
		return domain.MaintenanceBill{}, fmt.Errorf("generating bill id: %w", err)
	}

	bill := domain.NewMaintenanceBill(id, newBillNumber(), billDate, in.DueDate, in.Amount, in.Description, flat.ID)

	if err := s.bills.Create(ctx, bill); err != nil {
		return domain.MaintenanceBill{}, err
	}

	s.notifyOwners(ctx, actor, flat, bill)

	return bill, nil
}

func (s *BillService) notifyOwners(ctx context.Context, actor domain.Actor, flat domain.Flat, bill domain.MaintenanceBill) {
	owners, err := s.members.ListOwnersByFlat(ctx, flat.ID)
	if err != nil {
		// The bill is committed; owner lookup failing only costs the
		// notification, which is best-effort by contract.
		return
	}
	for _, owner := range owners {
		if owner.UserID == "" {
			continue
		}
		s.notify(ctx, domain.NewEnvelope(
			domain.EventNewMaintenanceBill,
			fmt.Sprintf("New maintenance bill generated for flat %s", flat.Number),
			bill, actor, domain.AudiencePrivate, owner.UserID, flat.SocietyID,
		))
	}
}

// MarkPaid settles a bill, stamping the payment date and reference, and
// notifies the society's admins. The actor must be an approved owner member
// of the billed flat. Paying twice observes Conflict.
func (s *BillService) MarkPaid(ctx context.Context, actor domain.Actor, billID, reference string) (domain.MaintenanceBill, error) {
	bill, err := s.bills.GetByID(ctx, billID)
	if err != nil {
		return domain.MaintenanceBill{}, err
	}

	flat, err := s.flats.GetByID(ctx, bill.FlatID)
	if err != nil {
		return domain.MaintenanceBill{}, err
	}

	if err := Authorize(actor, flat.SocietyID, domain.RoleResident); err != nil {
		return domain.MaintenanceBill{}, err
	}
	if err := s.requireOwner(ctx, actor, flat.ID); err != nil {
		return domain.MaintenanceBill{}, err
	}

	now := time.Now().UTC()
	if err := s.bills.MarkPaid(ctx, bill.ID, reference, now); err != nil {
		return domain.MaintenanceBill{}, err
	}
	bill.Paid = true
	bill.PaymentDate = &now
	bill.PaymentReference = reference

	s.notify(ctx, domain.NewEnvelope(
		domain.EventMaintenanceBillPaid,
		fmt.Sprintf("Maintenance bill %s has been paid", bill.BillNumber),
		bill, actor, domain.AudienceAdmins, "", flat.SocietyID,
	))

	return bill, nil
}

func (s *BillService) requireOwner(ctx context.Context, actor domain.Actor, flatID string) error {
	owners, err := s.members.ListOwnersByFlat(ctx, flatID)
	if err != nil {
		return fmt.Errorf("listing flat owners: %w", err)
	}
	for _, owner := range owners {
		if owner.Approved && owner.UserID != "" && owner.UserID == actor.UserID {
			return nil
		}
	}
	return &domain.ForbiddenError{Reason: "only an owner of the billed flat may pay"}
}

// BulkGenerateInput carries the fields for society-wide bill generation.
type BulkGenerateInput struct {
	SocietyID   string
	BillDate    time.Time
	DueDate     time.Time
	Description string
}

// BulkGenerate issues one bill per flat in the society, amount = flat area ×
// the fixed rate, and emits a single batch notification to the society's
// resident topic (one envelope for the whole batch, not one per bill).
func (s *BillService) BulkGenerate(ctx context.Context, actor domain.Actor, in BulkGenerateInput) ([]domain.MaintenanceBill, error) {
	if err := Authorize(actor, in.SocietyID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	flats, err := s.flats.ListBySociety(ctx, in.SocietyID)
	if err != nil {
		return nil, fmt.Errorf("listing society flats: %w", err)
	}

	bills := make([]domain.MaintenanceBill, 0, len(flats))
	for _, flat := range flats {
		bill, err := s.createWithRetry(ctx, flat, in)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}

	// A society without flats produces nothing to announce.
	if len(bills) > 0 {
		s.notify(ctx, domain.NewEnvelope(
			domain.EventBulkBillsGenerated,
			"New maintenance bills have been generated for all flats",
			bills, actor, domain.AudienceResidents, "", in.SocietyID,
		))
	}

	return bills, nil
}

// createWithRetry retries the uuid-derived bill number on the (unlikely)
// unique-index collision so a bulk run still yields exactly one bill per flat.
func (s *BillService) createWithRetry(ctx context.Context, flat domain.Flat, in BulkGenerateInput) (domain.MaintenanceBill, error) {
	var lastErr error
	for range billNumberAttempts {
		id, err := generateID()
		if err != nil {
			return domain.MaintenanceBill{}, fmt.Errorf("generating bill id: %w", err)
		}

		amount := flat.Area * domain.MaintenanceRatePerSqFt
		bill := domain.NewMaintenanceBill(id, newBillNumber(), in.BillDate, in.DueDate, amount, in.Description, flat.ID)

		err = s.bills.Create(ctx, bill)
		if err == nil {
			return bill, nil
		}

		var exists *domain.AlreadyExistsError
		if !errors.As(err, &exists) {
			return domain.MaintenanceBill{}, err
		}
		lastErr = err
	}
	return domain.MaintenanceBill{}, fmt.Errorf("generating unique bill number for flat %s: %w", flat.ID, lastErr)
}

// GetByID returns one bill, scope-checked against its society.
func (s *BillService) GetByID(ctx context.Context, actor domain.Actor, id string) (domain.MaintenanceBill, error) {
	bill, err := s.bills.GetByID(ctx, id)
	if err != nil {
		return domain.MaintenanceBill{}, err
	}
	flat, err := s.flats.GetByID(ctx, bill.FlatID)
	if err != nil {
		return domain.MaintenanceBill{}, err
	}
	if err := Authorize(actor, flat.SocietyID); err != nil {
		return domain.MaintenanceBill{}, err
	}
	return bill, nil
}

// ListByFlat returns a flat's bills, scope-checked.
func (s *BillService) ListByFlat(ctx context.Context, actor domain.Actor, flatID string) ([]domain.MaintenanceBill, error) {
	flat, err := s.flats.GetByID(ctx, flatID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, flat.SocietyID); err != nil {
		return nil, err
	}
	return s.bills.ListByFlat(ctx, flat.ID)
}

// ListBySociety returns a society's bills, admin-only. Pass pendingOnly to
// restrict to unpaid bills.
func (s *BillService) ListBySociety(ctx context.Context, actor domain.Actor, societyID string, pendingOnly bool) ([]domain.MaintenanceBill, error) {
	if err := Authorize(actor, societyID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if pendingOnly {
		return s.bills.ListPendingBySociety(ctx, societyID)
	}
	return s.bills.ListBySociety(ctx, societyID)
}

// ListOverdue returns unpaid bills past their due date. Super-admin only:
// the listing crosses society boundaries.
func (s *BillService) ListOverdue(ctx context.Context, actor domain.Actor) ([]domain.MaintenanceBill, error) {
	if !actor.SuperAdmin() {
		return nil, &domain.ForbiddenError{Reason: "overdue listing spans societies"}
	}
	return s.bills.ListOverdue(ctx, time.Now().UTC())
}
