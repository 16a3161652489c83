package reconcile

import (
	"sort"
	"sync"

	"github.com/cbodonnell/skirmish/client/state"
	"github.com/cbodonnell/skirmish/pkg/messages"
)

// MaxRenderedProjectiles caps the number of projectiles on screen.
// The newest projectiles win.
const MaxRenderedProjectiles = 500

// ProjectileObject is a rendered projectile owned by the reconciler.
type ProjectileObject interface {
	// Apply stores the snapshot and resets the predicted position to it.
	Apply(snapshot messages.ProjectileSnapshot)
	Destroy()
}

// ProjectileFactory creates a rendered projectile at its snapshot position.
type ProjectileFactory func(snapshot messages.ProjectileSnapshot) ProjectileObject

// Projectiles reconciles rendered projectiles with the store synchronously,
// on the goroutine that changed the store.
type Projectiles struct {
	store   *state.Store
	factory ProjectileFactory
	limit   int

	lock    sync.Mutex
	objects map[string]ProjectileObject

	unsubscribe func()
}

type NewProjectilesOptions struct {
	Store   *state.Store
	Factory ProjectileFactory
	// Limit defaults to MaxRenderedProjectiles.
	Limit int
}

func NewProjectiles(opts NewProjectilesOptions) *Projectiles {
	if opts.Limit <= 0 {
		opts.Limit = MaxRenderedProjectiles
	}
	p := &Projectiles{
		store:   opts.Store,
		factory: opts.Factory,
		limit:   opts.Limit,
		objects: make(map[string]ProjectileObject),
	}
	p.unsubscribe = opts.Store.Subscribe(func(changed state.Slice) {
		if changed.Any(state.SliceProjectiles) {
			p.Sync()
		}
	})
	return p
}

// Sync runs one pass and returns its plan.
func (p *Projectiles) Sync() Plan {
	wanted := newest(p.store.Projectiles(), p.limit)

	p.lock.Lock()
	defer p.lock.Unlock()

	plan := Diff(p.objects, wanted)
	for _, id := range plan.Destroy {
		p.objects[id].Destroy()
		delete(p.objects, id)
	}
	for _, id := range plan.Update {
		p.objects[id].Apply(wanted[id])
	}
	for _, id := range plan.Create {
		p.objects[id] = p.factory(wanted[id])
	}
	return plan
}

// newest keeps at most limit projectiles, preferring the latest createdAt.
func newest(all map[string]messages.ProjectileSnapshot, limit int) map[string]messages.ProjectileSnapshot {
	if len(all) <= limit {
		return all
	}
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := all[ids[i]], all[ids[j]]
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt > b.CreatedAt
		}
		return ids[i] < ids[j]
	})
	kept := make(map[string]messages.ProjectileSnapshot, limit)
	for _, id := range ids[:limit] {
		kept[id] = all[id]
	}
	return kept
}

// Len returns the number of rendered projectiles.
func (p *Projectiles) Len() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.objects)
}

// Close destroys every projectile and stops listening to the store.
func (p *Projectiles) Close() {
	p.unsubscribe()
	p.lock.Lock()
	defer p.lock.Unlock()
	for id, obj := range p.objects {
		obj.Destroy()
		delete(p.objects, id)
	}
}
