package unit

import "context"

// EventSink is notified after a change has been committed to the store.
type EventSink interface {
	UnitCreated(ctx context.Context, u Unit)
	StatusChanged(ctx context.Context, tr Transition)
}

const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeNotFound = "not_found"
)

type TransitionRecorder interface {
	RecordTransition(from, to Status, outcome string)
}
