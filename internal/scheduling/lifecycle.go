package scheduling

import "turnero/internal/model"

// lifecycle holds the reservation state machine. PENDING and CONFIRMED may
// branch to CANCELED; only CONFIRMED may be marked NO_SHOW; COMPLETED,
// CANCELED and NO_SHOW are terminal.
type lifecycle struct {
	transitions map[string][]string
}

func newLifecycle() *lifecycle {
	return &lifecycle{
		transitions: map[string][]string{
			model.StatusPending:    {model.StatusConfirmed, model.StatusCanceled},
			model.StatusConfirmed:  {model.StatusInProgress, model.StatusCanceled, model.StatusNoShow},
			model.StatusInProgress: {model.StatusCompleted},
			model.StatusCompleted:  {},
			model.StatusCanceled:   {},
			model.StatusNoShow:     {},
		},
	}
}

// CanTransition checks if the transition is allowed.
func (l *lifecycle) CanTransition(from, to string) bool {
	allowed, ok := l.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
