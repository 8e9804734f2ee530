package unit

// Engine is the only component allowed to change a unit's status. Legality is
// decided by the transition table; the check and the write happen under the
// unit's lock so concurrent requests for one unit never act on stale state.
type Engine struct {
	store *Store
}

func NewEngine(store *Store) *Engine {
	return &Engine{store: store}
}

// RequestTransition moves unit id to target and returns the updated record.
// It fails with ErrNotFound, ErrInvalidStatus or an *IllegalTransitionError.
func (e *Engine) RequestTransition(id string, target Status) (Unit, error) {
	tr, err := e.Apply(id, target)
	if err != nil {
		return Unit{}, err
	}
	return tr.After, nil
}

// Apply is RequestTransition that also reports the record as it was before
// the change.
func (e *Engine) Apply(id string, target Status) (Transition, error) {
	if !target.Valid() {
		return Transition{}, ErrInvalidStatus
	}
	// Unknown ids never get a lock entry.
	if _, err := e.store.Get(id); err != nil {
		return Transition{}, err
	}

	unlock := e.store.lock(id)
	defer unlock()

	cur, err := e.store.Get(id)
	if err != nil {
		return Transition{}, err
	}
	if !CanTransition(cur.Status, target) {
		return Transition{Before: cur, After: cur}, newIllegalTransition(cur.Status, target)
	}

	next := cur
	next.Status = target
	next.LastUpdated = e.store.stamp(cur.LastUpdated)
	if err := e.store.replace(id, next); err != nil {
		return Transition{}, err
	}
	return Transition{Before: cur, After: next}, nil
}

func (e *Engine) LegalNextStates(s Status) []Status {
	return LegalNextStates(s)
}
