package reconcile

import (
	"context"
	"sort"
	"sync"

	"github.com/cbodonnell/skirmish/client/state"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/messages"
	"golang.org/x/sync/errgroup"
)

// ShipObject is a rendered ship owned by the reconciler.
type ShipObject interface {
	// Apply overwrites the transform, texture and labels of the ship.
	Apply(snapshot messages.ShipSnapshot, textureKey string)
	// Size returns the displayed size of the ship sprite.
	Size() (width, height float64)
	Destroy()
}

// ShipFactory creates rendered ships.
type ShipFactory interface {
	NewShip(id string, snapshot messages.ShipSnapshot, textureKey string) ShipObject
}

// TextureResolver maps an image URL to a texture key.
// It must return promptly once ctx is done.
type TextureResolver interface {
	Resolve(ctx context.Context, url string) string
}

// ShipHUD keeps the per-ship overlay bookkeeping.
type ShipHUD interface {
	Upsert(id string, snapshot messages.ShipSnapshot, width, height float64)
	Remove(id string)
}

// Pass describes a completed ship reconciliation pass.
type Pass struct {
	Plan Plan
	// Superseded lists ids whose resolution was cancelled because they left
	// the store while the pass was running. They were neither created nor updated.
	Superseded []string
}

// Ships reconciles rendered ships with the ships in the store.
//
// A pass runs on its own goroutine. Sync while a pass is running does not
// start another one: it marks the reconciler pending and, when the running
// pass ends, exactly one more pass runs against the latest store contents.
type Ships struct {
	store    *state.Store
	factory  ShipFactory
	resolver TextureResolver
	hud      ShipHUD

	ctx    context.Context
	cancel context.CancelFunc

	lock     sync.Mutex
	idle     *sync.Cond
	running  bool
	pending  bool
	closed   bool
	tokens   map[string]context.CancelFunc
	passes   int
	lastPass Pass

	objectsLock sync.Mutex
	objects     map[string]ShipObject
	keys        map[string]string

	unsubscribe func()
	logger      *log.Logger
}

type NewShipsOptions struct {
	Store    *state.Store
	Factory  ShipFactory
	Resolver TextureResolver
	// HUD is optional.
	HUD ShipHUD
}

// NewShips creates a ship reconciler that runs a pass whenever the ships
// in the store change.
func NewShips(opts NewShipsOptions) *Ships {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Ships{
		store:    opts.Store,
		factory:  opts.Factory,
		resolver: opts.Resolver,
		hud:      opts.HUD,
		ctx:      ctx,
		cancel:   cancel,
		tokens:   make(map[string]context.CancelFunc),
		objects:  make(map[string]ShipObject),
		keys:     make(map[string]string),
		logger:   log.With("ships"),
	}
	s.idle = sync.NewCond(&s.lock)
	s.unsubscribe = opts.Store.Subscribe(func(changed state.Slice) {
		if changed.Any(state.SliceShips) {
			s.Sync()
		}
	})
	return s
}

// Sync requests a pass. While a pass is running, ships that are already
// rendered are updated at once and the pass is marked pending.
func (s *Ships) Sync() {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return
	}
	if s.running {
		s.pending = true
		s.cancelSupersededLocked()
		s.lock.Unlock()
		s.applyExisting()
		return
	}
	s.running = true
	s.lock.Unlock()
	go s.run()
}

// cancelSupersededLocked cancels in-flight resolutions of ids that are no
// longer in the store.
func (s *Ships) cancelSupersededLocked() {
	if len(s.tokens) == 0 {
		return
	}
	current := s.store.Ships()
	for id, cancel := range s.tokens {
		if _, ok := current[id]; !ok {
			s.logger.Debug("Cancelling superseded resolution of %s", id)
			cancel()
		}
	}
}

func (s *Ships) run() {
	for {
		s.pass()

		s.lock.Lock()
		if !s.pending || s.closed {
			s.running = false
			s.pending = false
			s.idle.Broadcast()
			s.lock.Unlock()
			return
		}
		s.pending = false
		s.lock.Unlock()
	}
}

type resolution struct {
	id  string
	ctx context.Context
}

func (s *Ships) pass() {
	wanted := s.store.Ships()

	s.objectsLock.Lock()
	plan := Diff(s.objects, wanted)
	for _, id := range plan.Destroy {
		s.objects[id].Destroy()
		delete(s.objects, id)
		delete(s.keys, id)
		if s.hud != nil {
			s.hud.Remove(id)
		}
	}
	s.objectsLock.Unlock()

	ids := make([]string, 0, len(wanted))
	for id := range wanted {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	resolutions := make([]resolution, len(ids))
	s.lock.Lock()
	for i, id := range ids {
		ctx, cancel := context.WithCancel(s.ctx)
		s.tokens[id] = cancel
		resolutions[i] = resolution{id: id, ctx: ctx}
	}
	// Ids removed between the snapshot read and token registration.
	if s.pending {
		s.cancelSupersededLocked()
	}
	s.lock.Unlock()

	var (
		g              errgroup.Group
		supersededLock sync.Mutex
		superseded     []string
	)
	for i := range resolutions {
		r := resolutions[i]
		g.Go(func() error {
			// Existing ships move now with the texture they have.
			key, exists := s.currentKey(r.id)
			if exists {
				s.apply(r.ctx, r.id, key)
			}
			resolved := s.resolver.Resolve(r.ctx, s.imageURL(r.id, wanted[r.id]))
			if exists && resolved == key {
				return nil
			}
			if !s.apply(r.ctx, r.id, resolved) {
				supersededLock.Lock()
				superseded = append(superseded, r.id)
				supersededLock.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	sort.Strings(superseded)

	s.lock.Lock()
	for _, r := range resolutions {
		s.tokens[r.id]()
		delete(s.tokens, r.id)
	}
	s.passes++
	s.lastPass = Pass{Plan: plan, Superseded: superseded}
	s.lock.Unlock()

	s.logger.Trace("Pass complete: %d created, %d updated, %d destroyed, %d superseded",
		len(plan.Create), len(plan.Update), len(plan.Destroy), len(superseded))
}

// imageURL returns the image of a ship. The local ship uses the image
// chosen before starting until the server sends one.
func (s *Ships) imageURL(id string, snapshot messages.ShipSnapshot) string {
	if url := snapshot.Appearance.ShipImageURL; url != "" {
		return url
	}
	if id == s.store.ClientID() {
		return s.store.LocalShipImageURL()
	}
	return ""
}

func (s *Ships) currentKey(id string) (string, bool) {
	s.objectsLock.Lock()
	defer s.objectsLock.Unlock()
	if _, ok := s.objects[id]; !ok {
		return "", false
	}
	return s.keys[id], true
}

// apply creates or updates the ship for id from the current store snapshot.
// It returns false when the resolution was cancelled or the id left the store.
func (s *Ships) apply(ctx context.Context, id, key string) bool {
	s.objectsLock.Lock()
	defer s.objectsLock.Unlock()
	if ctx.Err() != nil {
		return false
	}
	snapshot, ok := s.store.Ships()[id]
	if !ok {
		return false
	}
	obj, ok := s.objects[id]
	if ok {
		obj.Apply(snapshot, key)
	} else {
		obj = s.factory.NewShip(id, snapshot, key)
		s.objects[id] = obj
	}
	s.keys[id] = key
	if s.hud != nil {
		w, h := obj.Size()
		s.hud.Upsert(id, snapshot, w, h)
	}
	return true
}

// applyExisting moves the ships already rendered to their current snapshot
// without waiting for the running pass.
func (s *Ships) applyExisting() {
	current := s.store.Ships()

	s.objectsLock.Lock()
	defer s.objectsLock.Unlock()
	for id, obj := range s.objects {
		snapshot, ok := current[id]
		if !ok {
			continue
		}
		obj.Apply(snapshot, s.keys[id])
		if s.hud != nil {
			w, h := obj.Size()
			s.hud.Upsert(id, snapshot, w, h)
		}
	}
}

// Wait blocks until no pass is running.
func (s *Ships) Wait() {
	s.lock.Lock()
	defer s.lock.Unlock()
	for s.running {
		s.idle.Wait()
	}
}

// Passes returns the number of completed passes.
func (s *Ships) Passes() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.passes
}

// LastPass returns the result of the most recent pass.
func (s *Ships) LastPass() Pass {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.lastPass
}

// IDs returns the ids of the rendered ships, sorted.
func (s *Ships) IDs() []string {
	s.objectsLock.Lock()
	defer s.objectsLock.Unlock()
	ids := make([]string, 0, len(s.objects))
	for id := range s.objects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Object returns the rendered ship for id.
func (s *Ships) Object(id string) (ShipObject, bool) {
	s.objectsLock.Lock()
	defer s.objectsLock.Unlock()
	obj, ok := s.objects[id]
	return obj, ok
}

// Close stops reconciling, cancels in-flight resolutions and destroys
// every ship.
func (s *Ships) Close() {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return
	}
	s.closed = true
	s.lock.Unlock()

	s.unsubscribe()
	s.cancel()
	s.Wait()

	s.objectsLock.Lock()
	defer s.objectsLock.Unlock()
	for id, obj := range s.objects {
		obj.Destroy()
		if s.hud != nil {
			s.hud.Remove(id)
		}
		delete(s.objects, id)
		delete(s.keys, id)
	}
}
