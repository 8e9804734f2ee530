package unit

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("unit not found")
	ErrInvalidName       = errors.New("unit name is required")
	ErrInvalidKind       = errors.New("invalid unit type")
	ErrInvalidStatus     = errors.New("invalid unit status")
	ErrIllegalTransition = errors.New("illegal status transition")
)

// IllegalTransitionError is returned when the requested status is not a legal
// successor of the unit's current status. Reason is safe to show to end users.
type IllegalTransitionError struct {
	From    Status
	To      Status
	Allowed []Status
	Reason  string
}

func (e *IllegalTransitionError) Error() string {
	return e.Reason
}

func (e *IllegalTransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

func newIllegalTransition(from, to Status) *IllegalTransitionError {
	allowed := LegalNextStates(from)
	var reason string
	switch mids := requiredIntermediates(from, to); {
	case from == to:
		reason = fmt.Sprintf("Unit is already %s. Valid next statuses: %s.", from, joinStatuses(allowed, ", "))
	case len(mids) > 0:
		reason = fmt.Sprintf(
			"Cannot change status directly from %s to %s. Unit must first be set to %s.",
			from, to, joinStatuses(mids, " or "),
		)
	case len(allowed) > 0:
		reason = fmt.Sprintf("Cannot change status from %s to %s. Valid next statuses: %s.", from, to, joinStatuses(allowed, ", "))
	default:
		reason = fmt.Sprintf("Cannot change status from %s: no transitions are allowed.", from)
	}
	return &IllegalTransitionError{From: from, To: to, Allowed: allowed, Reason: reason}
}

func joinStatuses(ss []Status, sep string) string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, s.DisplayName())
	}
	return strings.Join(out, sep)
}
