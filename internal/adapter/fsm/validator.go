package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/societyq/societyq/internal/domain"
)

// Compile-time check: Validator implements domain.TransitionValidator.
var _ domain.TransitionValidator = (*Validator)(nil)

// Validator implements domain.TransitionValidator over one entity's
// transition table using looplab/fsm. It creates a short-lived FSM instance
// per Apply call, initialized with the record's current state, because
// looplab/fsm is stateful (it tracks the current state internally).
type Validator struct {
	events []loopfsm.EventDesc
}

// New builds a validator for the given transition table. Transitions with
// the same event and destination are consolidated into a single EventDesc
// with multiple source states (e.g. the complaint "resolve" event from both
// PENDING and IN_PROGRESS).
func New(transitions []domain.Transition) *Validator {
	type key struct {
		event string
		dst   string
	}
	grouped := make(map[key][]string)
	order := make([]key, 0)

	for _, t := range transitions {
		k := key{event: t.Event, dst: t.Dst}
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], t.Src)
	}

	events := make([]loopfsm.EventDesc, 0, len(order))
	for _, k := range order {
		events = append(events, loopfsm.EventDesc{
			Name: k.event,
			Src:  grouped[k],
			Dst:  k.dst,
		})
	}
	return &Validator{events: events}
}

// Apply checks if the given event is valid from the current state and
// returns the destination state. Returns a domain.TransitionError if the
// transition is not allowed.
func (v *Validator) Apply(ctx context.Context, current, event string) (string, error) {
	machine := loopfsm.NewFSM(current, v.events, nil)

	if err := machine.Event(ctx, event); err != nil {
		var invalidEvent loopfsm.InvalidEventError
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &invalidEvent) || errors.As(err, &noTransition) {
			return "", &domain.TransitionError{
				Event:   event,
				Current: current,
			}
		}
		return "", err
	}

	return machine.Current(), nil
}
