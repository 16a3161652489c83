// Package reconcile keeps locally owned render objects in line with the
// authoritative snapshots held by the state store.
package reconcile

import "sort"

// Plan is the set of operations turning one key set into another.
// Every list is sorted.
type Plan struct {
	Create  []string
	Update  []string
	Destroy []string
}

// Empty reports whether the plan touches nothing.
func (p Plan) Empty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Destroy) == 0
}

// Diff compares the ids of local objects with the wanted ids.
// Ids only in wanted are created, ids in both are updated and ids only in
// local are destroyed.
func Diff[L, W any](local map[string]L, wanted map[string]W) Plan {
	plan := Plan{
		Create:  []string{},
		Update:  []string{},
		Destroy: []string{},
	}
	for id := range wanted {
		if _, ok := local[id]; ok {
			plan.Update = append(plan.Update, id)
		} else {
			plan.Create = append(plan.Create, id)
		}
	}
	for id := range local {
		if _, ok := wanted[id]; !ok {
			plan.Destroy = append(plan.Destroy, id)
		}
	}
	sort.Strings(plan.Create)
	sort.Strings(plan.Update)
	sort.Strings(plan.Destroy)
	return plan
}
