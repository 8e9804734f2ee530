package unit

import "fmt"

type seedUnit struct {
	name   string
	kind   Kind
	status Status
}

var demoUnits = []seedUnit{
	{name: "Capsule-A01", kind: KindCapsule, status: StatusAvailable},
	{name: "Capsule-A02", kind: KindCapsule, status: StatusOccupied},
	{name: "Forest-Cabin-1", kind: KindCabin, status: StatusAvailable},
	{name: "Forest-Cabin-2", kind: KindCabin, status: StatusCleaningInProgress},
	{name: "Capsule-B01", kind: KindCapsule, status: StatusMaintenanceNeeded},
}

// Seed loads the demo units. Units whose demo status is not Available are
// walked there through the engine, so seeded state is always reachable.
func Seed(store *Store, engine *Engine) ([]Unit, error) {
	out := make([]Unit, 0, len(demoUnits))
	for _, d := range demoUnits {
		u, err := store.Create(d.name, d.kind)
		if err != nil {
			return out, fmt.Errorf("seed %s: %w", d.name, err)
		}
		path, ok := pathTo(u.Status, d.status)
		if !ok {
			return out, fmt.Errorf("seed %s: %s is unreachable from %s", d.name, d.status, u.Status)
		}
		for _, step := range path {
			if u, err = engine.RequestTransition(u.ID, step); err != nil {
				return out, fmt.Errorf("seed %s: %w", d.name, err)
			}
		}
		out = append(out, u)
	}
	return out, nil
}

// pathTo finds the shortest sequence of legal transitions leading from one
// status to another. The path excludes the starting status.
func pathTo(from, to Status) ([]Status, bool) {
	if from == to {
		return nil, true
	}
	prev := map[Status]Status{from: from}
	queue := []Status{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range allowedTransitions[cur] {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = cur
			if next == to {
				var path []Status
				for s := to; s != from; s = prev[s] {
					path = append([]Status{s}, path...)
				}
				return path, true
			}
			queue = append(queue, next)
		}
	}
	return nil, false
}
