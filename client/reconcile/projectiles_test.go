package reconcile

import (
	"fmt"
	"testing"

	"github.com/cbodonnell/skirmish/client/state"
	"github.com/cbodonnell/skirmish/pkg/kinematic"
	"github.com/cbodonnell/skirmish/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProjectile struct {
	snapshot  messages.ProjectileSnapshot
	applies   int
	destroyed bool
}

func (p *fakeProjectile) Apply(snapshot messages.ProjectileSnapshot) {
	p.snapshot = snapshot
	p.applies++
}

func (p *fakeProjectile) Destroy() { p.destroyed = true }

type projectileRecorder struct {
	created map[string]*fakeProjectile
}

func (r *projectileRecorder) factory(snapshot messages.ProjectileSnapshot) ProjectileObject {
	p := &fakeProjectile{snapshot: snapshot}
	r.created[snapshot.ID] = p
	return p
}

func projectile(id string, createdAt int64) messages.ProjectileSnapshot {
	return messages.ProjectileSnapshot{ID: id, CreatedAt: createdAt, Position: kinematic.Vector{X: float64(createdAt)}}
}

func TestProjectiles_Sync(t *testing.T) {
	store := state.New()
	rec := &projectileRecorder{created: make(map[string]*fakeProjectile)}
	p := NewProjectiles(NewProjectilesOptions{Store: store, Factory: rec.factory})
	defer p.Close()

	store.ApplyGameState(nil, []messages.ProjectileSnapshot{projectile("a", 1), projectile("b", 2)})
	require.Equal(t, 2, p.Len())

	moved := projectile("b", 2)
	moved.Position = kinematic.Vector{X: 50, Y: 60}
	store.ApplyGameState(nil, []messages.ProjectileSnapshot{moved, projectile("c", 3)})

	assert.Equal(t, 2, p.Len())
	assert.True(t, rec.created["a"].destroyed)
	assert.Equal(t, 1, rec.created["b"].applies)
	assert.Equal(t, kinematic.Vector{X: 50, Y: 60}, rec.created["b"].snapshot.Position)
	assert.Contains(t, rec.created, "c")

	plan := p.Sync()
	assert.Empty(t, plan.Create)
	assert.Empty(t, plan.Destroy)
	assert.Equal(t, []string{"b", "c"}, plan.Update)
}

func TestProjectiles_capKeepsNewest(t *testing.T) {
	store := state.New()
	rec := &projectileRecorder{created: make(map[string]*fakeProjectile)}
	p := NewProjectiles(NewProjectilesOptions{Store: store, Factory: rec.factory, Limit: 3})
	defer p.Close()

	var snaps []messages.ProjectileSnapshot
	for i := 0; i < 6; i++ {
		snaps = append(snaps, projectile(fmt.Sprintf("p%d", i), int64(i)))
	}
	store.ApplyGameState(nil, snaps)

	assert.Equal(t, 3, p.Len())
	for _, id := range []string{"p3", "p4", "p5"} {
		assert.Contains(t, rec.created, id)
	}
	assert.NotContains(t, rec.created, "p0")
}

func TestProjectiles_defaultCap(t *testing.T) {
	store := state.New()
	rec := &projectileRecorder{created: make(map[string]*fakeProjectile)}
	p := NewProjectiles(NewProjectilesOptions{Store: store, Factory: rec.factory})
	defer p.Close()

	snaps := make([]messages.ProjectileSnapshot, 0, MaxRenderedProjectiles+20)
	for i := 0; i < MaxRenderedProjectiles+20; i++ {
		snaps = append(snaps, projectile(fmt.Sprintf("p%d", i), int64(i)))
	}
	store.ApplyGameState(nil, snaps)
	assert.Equal(t, MaxRenderedProjectiles, p.Len())
	assert.NotContains(t, rec.created, "p19")
	assert.Contains(t, rec.created, "p20")
}

func TestProjectiles_Close(t *testing.T) {
	store := state.New()
	rec := &projectileRecorder{created: make(map[string]*fakeProjectile)}
	p := NewProjectiles(NewProjectilesOptions{Store: store, Factory: rec.factory})

	store.ApplyGameState(nil, []messages.ProjectileSnapshot{projectile("a", 1)})
	p.Close()
	assert.True(t, rec.created["a"].destroyed)
	assert.Zero(t, p.Len())

	store.ApplyGameState(nil, []messages.ProjectileSnapshot{projectile("b", 1)})
	assert.Zero(t, p.Len())
}
