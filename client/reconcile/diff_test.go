package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func set(ids ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name   string
		local  map[string]struct{}
		wanted map[string]struct{}
		want   Plan
	}{
		{
			name:   "replace one",
			local:  set("A", "B", "C"),
			wanted: set("B", "C", "D"),
			want:   Plan{Create: []string{"D"}, Update: []string{"B", "C"}, Destroy: []string{"A"}},
		},
		{
			name:   "from empty",
			local:  set(),
			wanted: set("b", "a"),
			want:   Plan{Create: []string{"a", "b"}, Update: []string{}, Destroy: []string{}},
		},
		{
			name:   "to empty",
			local:  set("a", "b"),
			wanted: nil,
			want:   Plan{Create: []string{}, Update: []string{}, Destroy: []string{"a", "b"}},
		},
		{
			name:   "same set",
			local:  set("a", "b"),
			wanted: set("a", "b"),
			want:   Plan{Create: []string{}, Update: []string{"a", "b"}, Destroy: []string{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Diff(tt.local, tt.wanted))
		})
	}
}

func TestDiff_orderIndependent(t *testing.T) {
	want := Diff(set("A", "B", "C"), set("B", "C", "D"))
	for i := 0; i < 50; i++ {
		assert.Equal(t, want, Diff(set("C", "A", "B"), set("D", "B", "C")))
	}
	assert.False(t, want.Empty())
	assert.True(t, Diff(set(), set()).Empty())
}
