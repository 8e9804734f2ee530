package unit

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusAvailable          Status = "Available"
	StatusOccupied           Status = "Occupied"
	StatusCleaningInProgress Status = "Cleaning In Progress"
	StatusMaintenanceNeeded  Status = "Maintenance Needed"
)

// AllStatuses returns every status in declaration order.
func AllStatuses() []Status {
	return []Status{StatusAvailable, StatusOccupied, StatusCleaningInProgress, StatusMaintenanceNeeded}
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusAvailable, StatusOccupied, StatusCleaningInProgress, StatusMaintenanceNeeded:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

func (s Status) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// StatusValues joins the wire values for use in validation messages.
func StatusValues() string {
	all := AllStatuses()
	out := make([]string, 0, len(all))
	for _, s := range all {
		out = append(out, string(s))
	}
	return strings.Join(out, ", ")
}

type Kind string

const (
	KindCapsule Kind = "capsule"
	KindCabin   Kind = "cabin"
)

func AllKinds() []Kind {
	return []Kind{KindCapsule, KindCabin}
}

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCapsule, KindCabin:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

func (k Kind) Valid() bool {
	return k == KindCapsule || k == KindCabin
}

// allowedTransitions is the single source of truth for the status machine.
// Every status must have an entry, even if it has no successors.
var allowedTransitions = map[Status][]Status{
	StatusAvailable:          {StatusOccupied, StatusMaintenanceNeeded},
	StatusOccupied:           {StatusCleaningInProgress, StatusMaintenanceNeeded},
	StatusCleaningInProgress: {StatusAvailable, StatusMaintenanceNeeded},
	StatusMaintenanceNeeded:  {StatusAvailable},
}

// LegalNextStates returns the statuses reachable in one step from s.
// The returned slice is a copy.
func LegalNextStates(s Status) []Status {
	next := allowedTransitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

func CanTransition(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionTable returns a copy of the full table, keyed by current status.
func TransitionTable() map[Status][]Status {
	out := make(map[Status][]Status, len(allowedTransitions))
	for from := range allowedTransitions {
		out[from] = LegalNextStates(from)
	}
	return out
}

// requiredIntermediates returns the statuses that can reach `to` and are
// themselves reachable from `from`, i.e. the one-hop detours for an illegal edge.
func requiredIntermediates(from, to Status) []Status {
	var out []Status
	for _, mid := range allowedTransitions[from] {
		if CanTransition(mid, to) {
			out = append(out, mid)
		}
	}
	return out
}
