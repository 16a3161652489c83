package state

import (
	"testing"

	"github.com/cbodonnell/skirmish/pkg/kinematic"
	"github.com/cbodonnell/skirmish/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoutedStore() (*messages.Router, *Store) {
	r := messages.NewRouter()
	s := New()
	RegisterHandlers(r, s)
	return r, s
}

func TestRegisterHandlers_connected(t *testing.T) {
	r, s := newRoutedStore()
	calls := 0
	s.Subscribe(func(Slice) { calls++ })

	require.True(t, r.Route([]byte(`{"type":"connected","payload":{"id":"abc123"}}`)))
	assert.Equal(t, "abc123", s.ClientID())
	assert.Equal(t, 1, calls)
}

func TestRegisterHandlers_gameState(t *testing.T) {
	r, s := newRoutedStore()
	calls := 0
	s.Subscribe(func(Slice) { calls++ })

	require.True(t, r.Route([]byte(`{"type":"gameState","payload":{"ships":{"abc123":{"physics":{"position":{"x":10,"y":20},"rotation":0},"appearance":{"shipImageUrl":"http://x/y.png"},"health":80,"kills":2,"name":"Ace"}},"projectiles":[]}}`)))
	assert.Equal(t, 1, calls)
	ship, ok := s.Ship("abc123")
	require.True(t, ok)
	assert.Equal(t, kinematic.Vector{X: 10, Y: 20}, ship.Physics.Position)
	assert.Equal(t, 80.0, ship.Health)
}

func TestRegisterHandlers_invalidMessagesDoNotMutate(t *testing.T) {
	r, s := newRoutedStore()
	s.SetShips(map[string]messages.ShipSnapshot{"keep": {}})
	calls := 0
	s.Subscribe(func(Slice) { calls++ })

	assert.False(t, r.Route([]byte(`{"type":"gameState","payload":{"ships":{"x":{}}}}`)))
	assert.False(t, r.Route([]byte(`{"type":"connected","payload":{"id":""}}`)))
	assert.False(t, r.Route([]byte(`{{{`)))
	assert.Zero(t, calls)
	assert.Equal(t, []string{"keep"}, s.ShipIDs())
	assert.Empty(t, s.ClientID())
}

func TestRegisterHandlers_scoreboardAndQuota(t *testing.T) {
	r, s := newRoutedStore()
	require.True(t, r.Route([]byte(`{"type":"scoreboard","payload":{"items":[{"id":"a","name":"A","score":1}]}}`)))
	require.True(t, r.Route([]byte(`{"type":"shipQuota","payload":{"remaining":1,"cap":3}}`)))
	require.True(t, r.Route([]byte(`{"type":"info","payload":{"motd":"hi"}}`)))
	require.True(t, r.Route([]byte(`{"type":"error","payload":"bad prompt"}`)))

	assert.Len(t, s.Scoreboard(), 1)
	q, ok := s.Quota()
	assert.True(t, ok)
	assert.Equal(t, 3, q.Cap)
}
