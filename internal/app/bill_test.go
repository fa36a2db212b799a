package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/societyq/societyq/internal/domain"
)

type billFixture struct {
	svc       *BillService
	bills     *memBills
	flats     *memFlats
	members   *memMembers
	publisher *recordingPublisher
}

func newBillFixture(t *testing.T) *billFixture {
	t.Helper()
	bills := newMemBills()
	flats := newMemFlats()
	members := newMemMembers()
	publisher := &recordingPublisher{}

	flats.rows["flat-1"] = domain.Flat{ID: "flat-1", Number: "101", Area: 1000, BuildingID: "bld-1", SocietyID: "soc-1"}
	flats.rows["flat-2"] = domain.Flat{ID: "flat-2", Number: "102", Area: 800, BuildingID: "bld-1", SocietyID: "soc-1"}
	bills.society["flat-1"] = "soc-1"
	bills.society["flat-2"] = "soc-1"
	members.rows["m-1"] = domain.FlatMember{
		ID: "m-1", Name: "Asha", Owner: true, Approved: true, FlatID: "flat-1", UserID: "u-asha",
	}

	return &billFixture{
		svc:       NewBillService(bills, flats, members, publisher),
		bills:     bills,
		flats:     flats,
		members:   members,
		publisher: publisher,
	}
}

func TestBillCreate(t *testing.T) {
	f := newBillFixture(t)
	admin := domain.Actor{UserID: "u-admin", Role: domain.RoleAdmin, SocietyID: "soc-1"}

	bill, err := f.svc.Create(context.Background(), admin, NewBillInput{
		FlatID: "flat-1", DueDate: time.Now().Add(30 * 24 * time.Hour), Amount: 2500, Description: "monthly",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if bill.Paid {
		t.Fatal("new bill must be unpaid")
	}
	if !strings.HasPrefix(bill.BillNumber, "BILL-") {
		t.Fatalf("unexpected bill number %q", bill.BillNumber)
	}

	envs := f.publisher.published()
	if len(envs) != 1 {
		t.Fatalf("expected 1 owner notification, got %d", len(envs))
	}
	env := envs[0]
	if env.Type != domain.EventNewMaintenanceBill || env.RecipientID != "u-asha" {
		t.Fatalf("expected NEW_MAINTENANCE_BILL to u-asha, got %+v", env)
	}
}

func TestBillCreateByResidentForbidden(t *testing.T) {
	f := newBillFixture(t)
	resident := domain.Actor{UserID: "u-asha", Role: domain.RoleResident, SocietyID: "soc-1"}

	_, err := f.svc.Create(context.Background(), resident, NewBillInput{FlatID: "flat-1", Amount: 100})
	var forbidden *domain.ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
}

func TestBillMarkPaid(t *testing.T) {
	f := newBillFixture(t)
	admin := domain.Actor{UserID: "u-admin", Role: domain.RoleAdmin, SocietyID: "soc-1"}
	owner := domain.Actor{UserID: "u-asha", Role: domain.RoleResident, SocietyID: "soc-1"}

	bill, err := f.svc.Create(context.Background(), admin, NewBillInput{FlatID: "flat-1", Amount: 2500})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	paid, err := f.svc.MarkPaid(context.Background(), owner, bill.ID, "TXN-123")
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if !paid.Paid || paid.PaymentDate == nil || paid.PaymentReference != "TXN-123" {
		t.Fatalf("payment not stamped: %+v", paid)
	}

	envs := f.publisher.published()
	last := envs[len(envs)-1]
	if last.Type != domain.EventMaintenanceBillPaid || last.Audience != domain.AudienceAdmins {
		t.Fatalf("expected MAINTENANCE_BILL_PAID to admins, got %+v", last)
	}

	// Paid is terminal.
	_, err = f.svc.MarkPaid(context.Background(), owner, bill.ID, "TXN-456")
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestBillMarkPaidByNonOwnerForbidden(t *testing.T) {
	f := newBillFixture(t)
	admin := domain.Actor{UserID: "u-admin", Role: domain.RoleAdmin, SocietyID: "soc-1"}
	stranger := domain.Actor{UserID: "u-other", Role: domain.RoleResident, SocietyID: "soc-1"}

	bill, err := f.svc.Create(context.Background(), admin, NewBillInput{FlatID: "flat-1", Amount: 2500})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.svc.MarkPaid(context.Background(), stranger, bill.ID, "TXN-123")
	var forbidden *domain.ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
}

func TestBillBulkGenerate(t *testing.T) {
	f := newBillFixture(t)
	admin := domain.Actor{UserID: "u-admin", Role: domain.RoleAdmin, SocietyID: "soc-1"}

	bills, err := f.svc.BulkGenerate(context.Background(), admin, BulkGenerateInput{
		SocietyID: "soc-1",
		BillDate:  time.Now(),
		DueDate:   time.Now().Add(30 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("bulk generate: %v", err)
	}
	if len(bills) != 2 {
		t.Fatalf("expected 2 bills, got %d", len(bills))
	}

	// Amount derives from the flat's area; numbers are unique.
	amounts := map[string]float64{}
	numbers := map[string]bool{}
	for _, b := range bills {
		amounts[b.FlatID] = b.Amount
		if numbers[b.BillNumber] {
			t.Fatalf("duplicate bill number %s", b.BillNumber)
		}
		numbers[b.BillNumber] = true
	}
	if amounts["flat-1"] != 1000*domain.MaintenanceRatePerSqFt {
		t.Fatalf("flat-1 amount: got %v", amounts["flat-1"])
	}
	if amounts["flat-2"] != 800*domain.MaintenanceRatePerSqFt {
		t.Fatalf("flat-2 amount: got %v", amounts["flat-2"])
	}

	// Exactly one batch notification, to the resident topic.
	envs := f.publisher.published()
	if len(envs) != 1 {
		t.Fatalf("expected exactly 1 notification for the batch, got %d", len(envs))
	}
	env := envs[0]
	if env.Type != domain.EventBulkBillsGenerated || env.Audience != domain.AudienceResidents || env.SocietyID != "soc-1" {
		t.Fatalf("expected BULK_MAINTENANCE_BILLS_GENERATED to residents of soc-1, got %+v", env)
	}
}

func TestBillBulkGenerateEmptySocietyStaysQuiet(t *testing.T) {
	f := newBillFixture(t)
	superAdmin := domain.Actor{UserID: "u-root", Role: domain.RoleAdmin}

	bills, err := f.svc.BulkGenerate(context.Background(), superAdmin, BulkGenerateInput{
		SocietyID: "soc-empty",
		BillDate:  time.Now(),
		DueDate:   time.Now().Add(30 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("bulk generate: %v", err)
	}
	if len(bills) != 0 {
		t.Fatalf("expected no bills, got %d", len(bills))
	}
	if got := len(f.publisher.published()); got != 0 {
		t.Fatalf("an empty batch must not notify, got %d events", got)
	}
}

func TestBillBulkGenerateForeignAdminForbidden(t *testing.T) {
	f := newBillFixture(t)
	foreignAdmin := domain.Actor{UserID: "u-f", Role: domain.RoleAdmin, SocietyID: "soc-2"}

	_, err := f.svc.BulkGenerate(context.Background(), foreignAdmin, BulkGenerateInput{SocietyID: "soc-1"})
	var forbidden *domain.ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
	if got := len(f.publisher.published()); got != 0 {
		t.Fatalf("denied bulk run must not notify, got %d events", got)
	}
}

func TestBillListings(t *testing.T) {
	f := newBillFixture(t)
	admin := domain.Actor{UserID: "u-admin", Role: domain.RoleAdmin, SocietyID: "soc-1"}
	owner := domain.Actor{UserID: "u-asha", Role: domain.RoleResident, SocietyID: "soc-1"}

	overdueBill, err := f.svc.Create(context.Background(), admin, NewBillInput{
		FlatID: "flat-1", DueDate: time.Now().Add(-24 * time.Hour), Amount: 100,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	paidBill, err := f.svc.Create(context.Background(), admin, NewBillInput{
		FlatID: "flat-1", DueDate: time.Now().Add(-24 * time.Hour), Amount: 200,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.MarkPaid(context.Background(), owner, paidBill.ID, "TXN"); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	pending, err := f.svc.ListBySociety(context.Background(), admin, "soc-1", true)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != overdueBill.ID {
		t.Fatalf("expected only the unpaid bill, got %v", pending)
	}

	superAdmin := domain.Actor{UserID: "u-root", Role: domain.RoleAdmin}
	overdue, err := f.svc.ListOverdue(context.Background(), superAdmin)
	if err != nil {
		t.Fatalf("list overdue: %v", err)
	}
	if len(overdue) != 1 || overdue[0].ID != overdueBill.ID {
		t.Fatalf("expected only the unpaid overdue bill, got %v", overdue)
	}

	// A scoped admin may not run the cross-society overdue listing.
	_, err = f.svc.ListOverdue(context.Background(), admin)
	var forbidden *domain.ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
}
