package unit

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, opts ...Option) (*Store, *Engine) {
	t.Helper()
	s := NewStore(opts...)
	return s, NewEngine(s)
}

func unitIn(t *testing.T, s *Store, e *Engine, status Status) Unit {
	t.Helper()
	u, err := s.Create("Test-Unit", KindCapsule)
	require.NoError(t, err)
	path, ok := pathTo(u.Status, status)
	require.True(t, ok)
	for _, step := range path {
		u, err = e.RequestTransition(u.ID, step)
		require.NoError(t, err)
	}
	return u
}

func TestRequestTransition_OccupiedToAvailableRejected(t *testing.T) {
	s, e := newTestEngine(t)
	u := unitIn(t, s, e, StatusOccupied)

	_, err := e.RequestTransition(u.ID, StatusAvailable)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	var illegal *IllegalTransitionError
	require.True(t, errors.As(err, &illegal))
	assert.Equal(t, StatusOccupied, illegal.From)
	assert.Equal(t, StatusAvailable, illegal.To)
	assert.ElementsMatch(t, []Status{StatusCleaningInProgress, StatusMaintenanceNeeded}, illegal.Allowed)
	assert.Equal(t,
		"Cannot change status directly from Occupied to Available. Unit must first be set to Cleaning In Progress or Maintenance Needed.",
		illegal.Reason)

	got, err := s.Get(u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, got, "rejected transition must not touch the record")
}

func TestRequestTransition_ThroughCleaningToAvailable(t *testing.T) {
	s, e := newTestEngine(t)
	u := unitIn(t, s, e, StatusOccupied)

	cleaning, err := e.RequestTransition(u.ID, StatusCleaningInProgress)
	require.NoError(t, err)
	assert.Equal(t, StatusCleaningInProgress, cleaning.Status)

	avail, err := e.RequestTransition(u.ID, StatusAvailable)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, avail.Status)
	assert.Equal(t, u.ID, avail.ID)
	assert.Equal(t, u.Name, avail.Name)
	assert.Equal(t, u.Kind, avail.Kind)
}

func TestRequestTransition_ThroughMaintenanceToAvailable(t *testing.T) {
	s, e := newTestEngine(t)
	u := unitIn(t, s, e, StatusOccupied)

	_, err := e.RequestTransition(u.ID, StatusMaintenanceNeeded)
	require.NoError(t, err)
	avail, err := e.RequestTransition(u.ID, StatusAvailable)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, avail.Status)
}

func TestRequestTransition_NotFound(t *testing.T) {
	s, e := newTestEngine(t)

	_, err := e.RequestTransition("does-not-exist", StatusOccupied)
	assert.ErrorIs(t, err, ErrNotFound)

	_, loaded := s.opMu.Load("does-not-exist")
	assert.False(t, loaded, "unknown ids must not allocate a lock")
}

func TestRequestTransition_InvalidTarget(t *testing.T) {
	s, e := newTestEngine(t)
	u := unitIn(t, s, e, StatusAvailable)

	_, err := e.RequestTransition(u.ID, Status("Closed"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestRequestTransition_SameStatusRejected(t *testing.T) {
	s, e := newTestEngine(t)
	for _, st := range AllStatuses() {
		u := unitIn(t, s, e, st)
		_, err := e.RequestTransition(u.ID, st)

		var illegal *IllegalTransitionError
		require.True(t, errors.As(err, &illegal), "same-status request on %s", st)
		assert.Contains(t, illegal.Reason, "already "+string(st))
	}
}

// Exhaustive check of every (from, to) pair against the table.
func TestRequestTransition_AllPairs(t *testing.T) {
	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			t.Run(fmt.Sprintf("%s->%s", from, to), func(t *testing.T) {
				s, e := newTestEngine(t)
				u := unitIn(t, s, e, from)

				got, err := e.RequestTransition(u.ID, to)
				if CanTransition(from, to) {
					require.NoError(t, err)
					assert.Equal(t, to, got.Status)
					return
				}
				assert.ErrorIs(t, err, ErrIllegalTransition)
				if to == StatusAvailable {
					assert.NotContains(t, []Status{StatusCleaningInProgress, StatusMaintenanceNeeded}, from)
				}
			})
		}
	}
}

func TestIllegalTransition_ReasonsNameAlternatives(t *testing.T) {
	cases := []struct {
		from, to Status
		want     string
	}{
		{StatusAvailable, StatusCleaningInProgress, "Unit must first be set to Occupied."},
		{StatusMaintenanceNeeded, StatusOccupied, "Unit must first be set to Available."},
		{StatusMaintenanceNeeded, StatusCleaningInProgress, "Valid next statuses: Available."},
	}
	for _, tc := range cases {
		err := newIllegalTransition(tc.from, tc.to)
		assert.Contains(t, err.Reason, tc.want, "%s -> %s", tc.from, tc.to)
		assert.Equal(t, err.Reason, err.Error())
	}
}

func TestRequestTransition_LastUpdatedStrictlyIncreases(t *testing.T) {
	frozen := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s, e := newTestEngine(t, WithClock(func() time.Time { return frozen }))

	u, err := s.Create("Capsule-A01", KindCapsule)
	require.NoError(t, err)

	prev := u.LastUpdated
	for _, st := range []Status{StatusOccupied, StatusCleaningInProgress, StatusAvailable, StatusMaintenanceNeeded, StatusAvailable} {
		u, err = e.RequestTransition(u.ID, st)
		require.NoError(t, err)
		assert.True(t, u.LastUpdated.After(prev), "lastUpdated must advance on %s", st)
		prev = u.LastUpdated
	}
}

func TestApply_ReportsBeforeAndAfter(t *testing.T) {
	s, e := newTestEngine(t)
	u := unitIn(t, s, e, StatusOccupied)

	tr, err := e.Apply(u.ID, StatusCleaningInProgress)
	require.NoError(t, err)
	assert.Equal(t, u, tr.Before)
	assert.Equal(t, StatusCleaningInProgress, tr.After.Status)
}

// Concurrent requests for the same target: only the first can succeed, the
// rest must observe the new state and be rejected as same-status requests.
func TestRequestTransition_SerializedPerUnit(t *testing.T) {
	s, e := newTestEngine(t)
	u := unitIn(t, s, e, StatusOccupied)

	const n = 64
	var ok atomic.Int32
	var rejected atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := e.RequestTransition(u.ID, StatusCleaningInProgress)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrIllegalTransition):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, n-1, rejected.Load())
}

// Mixed targets from Cleaning In Progress: whatever order the requests run in,
// each accepted transition must be legal from the record it actually read and
// no two may act on the same record version.
func TestRequestTransition_ConcurrentMixedTargets(t *testing.T) {
	s, e := newTestEngine(t)
	u := unitIn(t, s, e, StatusCleaningInProgress)

	targets := []Status{StatusAvailable, StatusMaintenanceNeeded, StatusOccupied, StatusAvailable}
	var wg sync.WaitGroup
	var mu sync.Mutex
	var applied []Transition
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(target Status) {
			defer wg.Done()
			tr, err := e.Apply(u.ID, target)
			if err != nil {
				assert.ErrorIs(t, err, ErrIllegalTransition)
				return
			}
			mu.Lock()
			applied = append(applied, tr)
			mu.Unlock()
		}(targets[i%len(targets)])
	}
	wg.Wait()

	// Each accepted transition was legal from the state it actually read.
	for _, tr := range applied {
		assert.True(t, CanTransition(tr.Before.Status, tr.After.Status), "%s -> %s", tr.Before.Status, tr.After.Status)
		assert.False(t, tr.Before.Status == StatusOccupied && tr.After.Status == StatusAvailable)
	}

	byStamp := map[time.Time]Transition{}
	for _, tr := range applied {
		_, dup := byStamp[tr.Before.LastUpdated]
		assert.False(t, dup, "two transitions acted on the same record version")
		byStamp[tr.Before.LastUpdated] = tr
	}
}

func TestRequestTransition_DifferentUnitsInParallel(t *testing.T) {
	s, e := newTestEngine(t)
	const n = 32
	ids := make([]string, n)
	for i := range ids {
		ids[i] = unitIn(t, s, e, StatusAvailable).ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for _, st := range []Status{StatusOccupied, StatusCleaningInProgress, StatusAvailable} {
				_, err := e.RequestTransition(id, st)
				assert.NoError(t, err)
			}
		}(id)
	}
	wg.Wait()

	assert.Len(t, s.List(StatusAvailable), n)
}

func TestEngine_LegalNextStates(t *testing.T) {
	_, e := newTestEngine(t)
	for _, st := range AllStatuses() {
		assert.Equal(t, LegalNextStates(st), e.LegalNextStates(st))
	}
}
