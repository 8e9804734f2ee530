package unit

import "time"

// Unit is a lodging unit (capsule or cabin). Values handed out by the Store are
// copies; mutating them has no effect on stored state.
type Unit struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Kind        Kind      `json:"type"`
	Status      Status    `json:"status"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Transition is the before/after pair of an accepted status change.
type Transition struct {
	Before Unit
	After  Unit
}
