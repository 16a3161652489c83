// Package extrapolate predicts projectile motion between snapshots.
//
// Predicted positions are visual only: they are never written back to the
// store, and the next snapshot of a projectile resets its prediction.
package extrapolate

import (
	"sort"
	"sync"
	"time"

	"github.com/cbodonnell/skirmish/pkg/kinematic"
	"github.com/cbodonnell/skirmish/pkg/messages"
)

const (
	DefaultLifetime   = 3000 * time.Millisecond
	DefaultAlphaFloor = 0.1
	// DefaultViewMargin extends the view so bodies do not pop at the edges.
	DefaultViewMargin = 40.0
)

// Alpha fades from 1 to floor over lifetime. Once age reaches lifetime
// it stays at floor. The result is never negative.
func Alpha(age, lifetime time.Duration, floor float64) float64 {
	floor = kinematic.Clamp(floor, 0, 1)
	if lifetime <= 0 || age >= lifetime {
		return floor
	}
	if age < 0 {
		age = 0
	}
	return kinematic.Clamp(1-float64(age)/float64(lifetime), floor, 1)
}

// View is the visible world rectangle.
type View struct {
	X, Y          float64
	Width, Height float64
}

// Contains reports whether p is inside v expanded by margin on every side.
func (v View) Contains(p kinematic.Vector, margin float64) bool {
	return p.X >= v.X-margin &&
		p.X <= v.X+v.Width+margin &&
		p.Y >= v.Y-margin &&
		p.Y <= v.Y+v.Height+margin
}

// Sprite is the drawable state of a body for one frame.
type Sprite struct {
	ID       string
	Position kinematic.Vector
	Rotation float64
	Alpha    float64
}

// Body is a tracked projectile.
type Body struct {
	owner    *Extrapolator
	snapshot messages.ProjectileSnapshot
	position kinematic.Vector
}

// Apply stores a new authoritative snapshot and resets the prediction to it.
func (b *Body) Apply(snapshot messages.ProjectileSnapshot) {
	b.owner.lock.Lock()
	defer b.owner.lock.Unlock()
	b.snapshot = snapshot
	b.position = snapshot.Position
}

// Destroy stops tracking the body.
func (b *Body) Destroy() {
	b.owner.lock.Lock()
	defer b.owner.lock.Unlock()
	if b.owner.bodies[b.snapshot.ID] == b {
		delete(b.owner.bodies, b.snapshot.ID)
	}
}

// Position returns the predicted position.
func (b *Body) Position() kinematic.Vector {
	b.owner.lock.RLock()
	defer b.owner.lock.RUnlock()
	return b.position
}

// Extrapolator owns the bodies of every rendered projectile.
type Extrapolator struct {
	lock   sync.RWMutex
	bodies map[string]*Body

	lifetime time.Duration
	floor    float64
	margin   float64
	now      func() time.Time
}

type NewExtrapolatorOptions struct {
	Lifetime   time.Duration
	AlphaFloor float64
	ViewMargin float64
	Now        func() time.Time
}

func New(opts NewExtrapolatorOptions) *Extrapolator {
	if opts.Lifetime <= 0 {
		opts.Lifetime = DefaultLifetime
	}
	if opts.AlphaFloor <= 0 {
		opts.AlphaFloor = DefaultAlphaFloor
	}
	if opts.ViewMargin <= 0 {
		opts.ViewMargin = DefaultViewMargin
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Extrapolator{
		bodies:   make(map[string]*Body),
		lifetime: opts.Lifetime,
		floor:    opts.AlphaFloor,
		margin:   opts.ViewMargin,
		now:      opts.Now,
	}
}

// Track starts predicting a projectile from its snapshot position.
// Tracking an id again replaces the previous body.
func (e *Extrapolator) Track(snapshot messages.ProjectileSnapshot) *Body {
	b := &Body{
		owner:    e,
		snapshot: snapshot,
		position: snapshot.Position,
	}
	e.lock.Lock()
	e.bodies[snapshot.ID] = b
	e.lock.Unlock()
	return b
}

// Body returns the tracked body for id.
func (e *Extrapolator) Body(id string) (*Body, bool) {
	e.lock.RLock()
	defer e.lock.RUnlock()
	b, ok := e.bodies[id]
	return b, ok
}

func (e *Extrapolator) Len() int {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return len(e.bodies)
}

// Step advances every body by its last known velocity for dt seconds.
func (e *Extrapolator) Step(dt float64) {
	if dt <= 0 {
		return
	}
	e.lock.Lock()
	defer e.lock.Unlock()
	for _, b := range e.bodies {
		b.position = b.position.Add(kinematic.Displacement(b.snapshot.Velocity, dt))
	}
}

// Sprites returns the bodies inside view, oldest first.
func (e *Extrapolator) Sprites(view View) []Sprite {
	now := e.now().UnixMilli()

	e.lock.RLock()
	type aged struct {
		sprite    Sprite
		createdAt int64
	}
	visible := make([]aged, 0, len(e.bodies))
	for id, b := range e.bodies {
		if !view.Contains(b.position, e.margin) {
			continue
		}
		age := time.Duration(now-b.snapshot.CreatedAt) * time.Millisecond
		visible = append(visible, aged{
			sprite: Sprite{
				ID:       id,
				Position: b.position,
				Rotation: b.snapshot.Rotation,
				Alpha:    Alpha(age, e.lifetime, e.floor),
			},
			createdAt: b.snapshot.CreatedAt,
		})
	}
	e.lock.RUnlock()

	sort.Slice(visible, func(i, j int) bool {
		if visible[i].createdAt != visible[j].createdAt {
			return visible[i].createdAt < visible[j].createdAt
		}
		return visible[i].sprite.ID < visible[j].sprite.ID
	})
	sprites := make([]Sprite, len(visible))
	for i, v := range visible {
		sprites[i] = v.sprite
	}
	return sprites
}
