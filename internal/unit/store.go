package unit

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the authoritative in-memory holder of unit records.
//
// The collection is guarded by mu. Status changes additionally hold a
// per-unit lock (see lock) so the read-check-write done by Engine is
// serialized per id while different units proceed in parallel.
type Store struct {
	mu    sync.RWMutex
	order []string
	units map[string]Unit

	// operations mutex per unit id
	opMu sync.Map

	now   func() time.Time
	newID func() string
}

type Option func(*Store)

// WithClock overrides the time source used to stamp LastUpdated.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides uuid generation. Generated ids that collide with an
// existing unit are discarded and regenerated.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		units: make(map[string]Unit),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create adds a unit in status Available and returns a copy of it.
func (s *Store) Create(name string, kind Kind) (Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Unit{}, ErrInvalidName
	}
	if !kind.Valid() {
		return Unit{}, ErrInvalidKind
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for s.takenLocked(id) {
		id = s.newID()
	}

	u := Unit{
		ID:          id,
		Name:        name,
		Kind:        kind,
		Status:      StatusAvailable,
		LastUpdated: s.now().UTC(),
	}
	s.units[id] = u
	s.order = append(s.order, id)
	return u, nil
}

func (s *Store) Get(id string) (Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.units[id]
	if !ok {
		return Unit{}, ErrNotFound
	}
	return u, nil
}

// List returns a snapshot of all units in insertion order. A non-empty filter
// keeps only units whose status equals it.
func (s *Store) List(filter Status) []Unit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Unit, 0, len(s.order))
	for _, id := range s.order {
		u := s.units[id]
		if filter != "" && u.Status != filter {
			continue
		}
		out = append(out, u)
	}
	return out
}

// CountByStatus reports how many units are in each status. Every status is
// present in the result, including those with zero units.
func (s *Store) CountByStatus() map[Status]int {
	out := make(map[Status]int, len(allowedTransitions))
	for _, st := range AllStatuses() {
		out[st] = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.units {
		out[u.Status]++
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *Store) takenLocked(id string) bool {
	if id == "" {
		return true
	}
	_, ok := s.units[id]
	return ok
}

// replace swaps the stored record for id. Callers must hold lock(id).
func (s *Store) replace(id string, u Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.units[id]; !ok {
		return ErrNotFound
	}
	u.ID = id
	s.units[id] = u
	return nil
}

// lock ensures only one status change per unit at a time.
func (s *Store) lock(id string) (unlock func()) {
	v, _ := s.opMu.LoadOrStore(id, &sync.Mutex{})
	mtx := v.(*sync.Mutex)
	mtx.Lock()
	return mtx.Unlock
}

// stamp returns the next LastUpdated value for a record last touched at prev.
// The result is strictly after prev even when the clock has not advanced.
func (s *Store) stamp(prev time.Time) time.Time {
	t := s.now().UTC()
	if !t.After(prev) {
		t = prev.Add(time.Nanosecond)
	}
	return t
}
