package app

import (
	"context"
	"errors"
	"testing"

	"github.com/societyq/societyq/internal/domain"
)

type visitorFixture struct {
	svc       *VisitorService
	visitors  *memVisitors
	members   *memMembers
	publisher *recordingPublisher
}

func newVisitorFixture(t *testing.T) *visitorFixture {
	t.Helper()
	visitors := newMemVisitors()
	flats := newMemFlats()
	members := newMemMembers()
	publisher := &recordingPublisher{}

	flats.rows["flat-1"] = domain.Flat{ID: "flat-1", Number: "101", BuildingID: "bld-1", SocietyID: "soc-1"}
	visitors.society["flat-1"] = "soc-1"
	members.rows["m-1"] = domain.FlatMember{
		ID: "m-1", Name: "Asha", Owner: true, Approved: true, FlatID: "flat-1", UserID: "u-asha",
	}

	return &visitorFixture{
		svc:       NewVisitorService(visitors, flats, members, publisher),
		visitors:  visitors,
		members:   members,
		publisher: publisher,
	}
}

func TestVisitorCreateNotifiesOwners(t *testing.T) {
	f := newVisitorFixture(t)
	guard := domain.Actor{UserID: "u-guard", Role: domain.RoleGuard, SocietyID: "soc-1"}

	// A second owner without a linked login gets skipped.
	f.members.rows["m-2"] = domain.FlatMember{
		ID: "m-2", Name: "Ravi", Owner: true, Approved: true, FlatID: "flat-1",
	}

	visitor, err := f.svc.Create(context.Background(), guard, NewVisitorInput{
		FlatID: "flat-1", Name: "Courier", Purpose: "delivery",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if visitor.Approved || visitor.EntryTime.IsZero() {
		t.Fatalf("expected unapproved visitor with entry stamped, got %+v", visitor)
	}

	envs := f.publisher.published()
	if len(envs) != 1 {
		t.Fatalf("expected 1 owner notification, got %d", len(envs))
	}
	env := envs[0]
	if env.Type != domain.EventVisitorApprovalReq || env.RecipientID != "u-asha" {
		t.Fatalf("expected VISITOR_APPROVAL_REQUIRED to u-asha, got %+v", env)
	}
}

func TestVisitorCreateByResidentForbidden(t *testing.T) {
	f := newVisitorFixture(t)
	resident := domain.Actor{UserID: "u-asha", Role: domain.RoleResident, SocietyID: "soc-1"}

	_, err := f.svc.Create(context.Background(), resident, NewVisitorInput{FlatID: "flat-1", Name: "X"})
	var forbidden *domain.ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
}

func TestVisitorApprove(t *testing.T) {
	f := newVisitorFixture(t)
	guard := domain.Actor{UserID: "u-guard", Role: domain.RoleGuard, SocietyID: "soc-1"}
	resident := domain.Actor{UserID: "u-asha", Role: domain.RoleResident, SocietyID: "soc-1"}

	visitor, err := f.svc.Create(context.Background(), guard, NewVisitorInput{FlatID: "flat-1", Name: "Courier"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	approved, err := f.svc.Approve(context.Background(), resident, visitor.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !approved.Approved || approved.ApprovalTime == nil || approved.ApprovedByID != "m-1" {
		t.Fatalf("approval not stamped: %+v", approved)
	}

	envs := f.publisher.published()
	last := envs[len(envs)-1]
	if last.Type != domain.EventVisitorApproved || last.Audience != domain.AudienceGuards {
		t.Fatalf("expected VISITOR_APPROVED to guards, got %+v", last)
	}

	// Approval is set-once.
	_, err = f.svc.Approve(context.Background(), resident, visitor.ID)
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestVisitorApproveByNonMemberForbidden(t *testing.T) {
	f := newVisitorFixture(t)
	guard := domain.Actor{UserID: "u-guard", Role: domain.RoleGuard, SocietyID: "soc-1"}
	stranger := domain.Actor{UserID: "u-other", Role: domain.RoleResident, SocietyID: "soc-1"}

	visitor, err := f.svc.Create(context.Background(), guard, NewVisitorInput{FlatID: "flat-1", Name: "Courier"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.svc.Approve(context.Background(), stranger, visitor.ID)
	var forbidden *domain.ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
}

func TestVisitorExitIndependentOfApproval(t *testing.T) {
	f := newVisitorFixture(t)
	guard := domain.Actor{UserID: "u-guard", Role: domain.RoleGuard, SocietyID: "soc-1"}

	visitor, err := f.svc.Create(context.Background(), guard, NewVisitorInput{FlatID: "flat-1", Name: "Courier"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Exit without approval is fine and leaves approval untouched.
	exited, err := f.svc.RecordExit(context.Background(), guard, visitor.ID)
	if err != nil {
		t.Fatalf("record exit: %v", err)
	}
	if exited.ExitTime == nil {
		t.Fatal("exit time not stamped")
	}
	if exited.Approved {
		t.Fatal("exit must not set approved")
	}

	// Exit is set-once.
	_, err = f.svc.RecordExit(context.Background(), guard, visitor.ID)
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestVisitorListings(t *testing.T) {
	f := newVisitorFixture(t)
	guard := domain.Actor{UserID: "u-guard", Role: domain.RoleGuard, SocietyID: "soc-1"}
	resident := domain.Actor{UserID: "u-asha", Role: domain.RoleResident, SocietyID: "soc-1"}

	v1, err := f.svc.Create(context.Background(), guard, NewVisitorInput{FlatID: "flat-1", Name: "A"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	v2, err := f.svc.Create(context.Background(), guard, NewVisitorInput{FlatID: "flat-1", Name: "B"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.Approve(context.Background(), resident, v1.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.svc.RecordExit(context.Background(), guard, v2.ID); err != nil {
		t.Fatalf("exit: %v", err)
	}

	active, err := f.svc.ListActiveBySociety(context.Background(), guard, "soc-1")
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != v1.ID {
		t.Fatalf("expected only the non-exited visitor, got %v", active)
	}

	pending, err := f.svc.ListPendingBySociety(context.Background(), guard, "soc-1")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != v2.ID {
		t.Fatalf("expected only the unapproved visitor, got %v", pending)
	}
}
