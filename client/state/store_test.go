package state

import (
	"testing"

	"github.com/cbodonnell/skirmish/pkg/kinematic"
	"github.com/cbodonnell/skirmish/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetClientID(t *testing.T) {
	s := New()
	var calls []Slice
	s.Subscribe(func(changed Slice) { calls = append(calls, changed) })

	ok, err := s.SetClientID("abc123")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc123", s.ClientID())
	assert.Equal(t, []Slice{SliceClientID}, calls)

	ok, err = s.SetClientID("abc123")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, calls, 1)

	ok, err = s.SetClientID("other")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "abc123", s.ClientID())
	assert.Len(t, calls, 1)

	_, err = s.SetClientID("")
	assert.Error(t, err)
}

func TestStore_ApplyGameState_notifiesOnce(t *testing.T) {
	s := New()
	var calls []Slice
	s.Subscribe(func(changed Slice) { calls = append(calls, changed) })

	s.ApplyGameState(
		map[string]messages.ShipSnapshot{"a": {Health: 80}},
		[]messages.ProjectileSnapshot{{ID: "p1"}, {ID: "p2"}},
	)
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Has(SliceShips|SliceProjectiles))
	assert.Len(t, s.Ships(), 1)
	assert.Len(t, s.Projectiles(), 2)

	s.ApplyGameState(nil, nil)
	assert.Len(t, calls, 2)
	assert.NotNil(t, s.Ships())
	assert.Empty(t, s.Ships())
	assert.Empty(t, s.Projectiles())
}

func TestStore_replaceIsWholesale(t *testing.T) {
	s := New()
	s.SetShips(map[string]messages.ShipSnapshot{"a": {}, "b": {}})
	s.SetShips(map[string]messages.ShipSnapshot{"c": {}})
	assert.Equal(t, []string{"c"}, s.ShipIDs())
	_, ok := s.Ship("a")
	assert.False(t, ok)
}

func TestStore_reentrantReadSeesNewValue(t *testing.T) {
	s := New()
	var seen []string
	s.Subscribe(func(changed Slice) {
		if changed.Any(SliceShips) {
			seen = s.ShipIDs()
		}
	})
	s.SetShips(map[string]messages.ShipSnapshot{"x": {}, "y": {}})
	assert.Equal(t, []string{"x", "y"}, seen)
}

func TestStore_panickingListener(t *testing.T) {
	s := New()
	var order []int
	s.Subscribe(func(Slice) { order = append(order, 1) })
	s.Subscribe(func(Slice) { panic("boom") })
	s.Subscribe(func(Slice) { order = append(order, 3) })

	assert.NotPanics(t, func() {
		s.SetScoreboard([]messages.ScoreboardItem{{ID: "a"}})
	})
	assert.Equal(t, []int{1, 3}, order)
	assert.Len(t, s.Scoreboard(), 1)
}

func TestStore_Unsubscribe(t *testing.T) {
	s := New()
	calls := 0
	unsubscribe := s.Subscribe(func(Slice) { calls++ })

	s.SetQuota(messages.ShipQuota{Remaining: 1, Cap: 3})
	unsubscribe()
	unsubscribe()
	s.SetQuota(messages.ShipQuota{Remaining: 0, Cap: 3})
	assert.Equal(t, 1, calls)
}

func TestStore_subscribeDuringNotify(t *testing.T) {
	s := New()
	late := 0
	var unsubscribeSelf func()
	first := 0
	unsubscribeSelf = s.Subscribe(func(Slice) {
		first++
		unsubscribeSelf()
		s.Subscribe(func(Slice) { late++ })
	})

	s.SetInput(messages.NewInputSnapshot([]string{"W"}, kinematic.Vector{}))
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, late)

	s.SetInput(messages.NewInputSnapshot(nil, kinematic.Vector{}))
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, late)
}

func TestStore_RankedScoreboard(t *testing.T) {
	s := New()
	items := []messages.ScoreboardItem{
		{ID: "a", Score: 1},
		{ID: "b", Score: 5},
		{ID: "c", Score: 3},
		{ID: "d", Score: 5},
	}
	s.SetScoreboard(items)

	ids := func(items []messages.ScoreboardItem) []string {
		out := make([]string, 0, len(items))
		for _, i := range items {
			out = append(out, i.ID)
		}
		return out
	}
	assert.Equal(t, []string{"b", "d", "c", "a"}, ids(s.RankedScoreboard(0)))
	assert.Equal(t, []string{"b", "d"}, ids(s.RankedScoreboard(2)))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(s.Scoreboard()))
}

func TestStore_RankedScoreboard_top(t *testing.T) {
	s := New()
	var items []messages.ScoreboardItem
	for i := 0; i < 12; i++ {
		items = append(items, messages.ScoreboardItem{ID: string(rune('a' + i)), Score: float64(i)})
	}
	s.SetScoreboard(items)
	top := s.RankedScoreboard(ScoreboardSize)
	require.Len(t, top, ScoreboardSize)
	assert.Equal(t, "l", top[0].ID)
}

func TestStore_Quota(t *testing.T) {
	s := New()
	_, ok := s.Quota()
	assert.False(t, ok)

	s.SetQuota(messages.ShipQuota{Remaining: 2, Cap: 3})
	q, ok := s.Quota()
	assert.True(t, ok)
	assert.Equal(t, messages.ShipQuota{Remaining: 2, Cap: 3}, q)
}

func TestStore_LocalShip(t *testing.T) {
	s := New()
	s.SetShips(map[string]messages.ShipSnapshot{"me": {Name: "Ace"}})
	_, ok := s.LocalShip()
	assert.False(t, ok)

	_, err := s.SetClientID("me")
	require.NoError(t, err)
	ship, ok := s.LocalShip()
	assert.True(t, ok)
	assert.Equal(t, "Ace", ship.Name)

	s.SetLocalShipImageURL("http://x/me.png")
	assert.Equal(t, "http://x/me.png", s.LocalShipImageURL())
}

func TestSlice_String(t *testing.T) {
	assert.Equal(t, "ships|projectiles", (SliceShips | SliceProjectiles).String())
	assert.Equal(t, "none", Slice(0).String())
}
