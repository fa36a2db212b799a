package fsm_test

import (
	"context"
	"errors"
	"testing"

	adapter "github.com/societyq/societyq/internal/adapter/fsm"
	"github.com/societyq/societyq/internal/domain"
)

func TestValidator_AllTransitions(t *testing.T) {
	ctx := context.Background()

	tables := map[string][]domain.Transition{
		"allocation": domain.AllocationTransitions,
		"complaint":  domain.ComplaintTransitions,
	}

	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			v := adapter.New(table)
			for _, tr := range table {
				dst, err := v.Apply(ctx, tr.Src, tr.Event)
				if err != nil {
					t.Errorf("Apply(%q, %q) unexpected error: %v", tr.Src, tr.Event, err)
					continue
				}
				if dst != tr.Dst {
					t.Errorf("Apply(%q, %q) = %q, want %q", tr.Src, tr.Event, dst, tr.Dst)
				}
			}
		})
	}
}

func TestValidator_InvalidTransition(t *testing.T) {
	v := adapter.New(domain.AllocationTransitions)
	ctx := context.Background()

	// Can't approve an already-approved request.
	_, err := v.Apply(ctx, string(domain.AllocationApproved), domain.EventAllocationApprove)
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if trErr.Event != domain.EventAllocationApprove {
		t.Errorf("event = %q, want %q", trErr.Event, domain.EventAllocationApprove)
	}
	if trErr.Current != string(domain.AllocationApproved) {
		t.Errorf("current = %q, want %q", trErr.Current, domain.AllocationApproved)
	}
}

func TestValidator_ComplaintLifecycle(t *testing.T) {
	v := adapter.New(domain.ComplaintTransitions)
	ctx := context.Background()

	steps := []struct {
		from  domain.ComplaintStatus
		event string
		want  domain.ComplaintStatus
	}{
		{domain.ComplaintPending, domain.EventComplaintStart, domain.ComplaintInProgress},
		{domain.ComplaintInProgress, domain.EventComplaintResolve, domain.ComplaintResolved},
	}

	for _, step := range steps {
		got, err := v.Apply(ctx, string(step.from), step.event)
		if err != nil {
			t.Fatalf("Apply(%q, %q) error: %v", step.from, step.event, err)
		}
		if got != string(step.want) {
			t.Errorf("Apply(%q, %q) = %q, want %q", step.from, step.event, got, step.want)
		}
	}
}

func TestValidator_ResolveFromPending(t *testing.T) {
	v := adapter.New(domain.ComplaintTransitions)
	ctx := context.Background()

	// Resolve is valid from both PENDING and IN_PROGRESS.
	got, err := v.Apply(ctx, string(domain.ComplaintPending), domain.EventComplaintResolve)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != string(domain.ComplaintResolved) {
		t.Errorf("got %q, want %q", got, domain.ComplaintResolved)
	}
}

func TestValidator_ResolvedIsTerminal(t *testing.T) {
	v := adapter.New(domain.ComplaintTransitions)
	ctx := context.Background()

	for _, event := range []string{domain.EventComplaintStart, domain.EventComplaintResolve} {
		_, err := v.Apply(ctx, string(domain.ComplaintResolved), event)
		var trErr *domain.TransitionError
		if !errors.As(err, &trErr) {
			t.Fatalf("Apply(RESOLVED, %q): expected TransitionError, got %v", event, err)
		}
	}
}
