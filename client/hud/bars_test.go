package hud

import (
	"image/color"
	"testing"

	"github.com/cbodonnell/skirmish/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBar(t *testing.T) {
	tests := []struct {
		name          string
		ship          messages.ShipSnapshot
		width, height float64
		want          Bar
	}{
		{
			name:  "healthy",
			ship:  messages.ShipSnapshot{Health: 80, Kills: 2, Name: "Ace"},
			width: 64, height: 48,
			want: Bar{Width: 64, Fill: 51, Color: color.RGBA{R: 51, G: 204, A: 0xf2}, OffsetY: -31.2, Kills: "2", Name: "Ace"},
		},
		{
			name: "default sprite size",
			ship: messages.ShipSnapshot{Health: 50},
			want: Bar{Width: 60, Fill: 30, Color: color.RGBA{R: 128, G: 128, A: 0xf2}, OffsetY: -52, Kills: "0"},
		},
		{
			name:  "narrow sprite and overflowing health",
			ship:  messages.ShipSnapshot{Health: 150},
			width: 30, height: 20,
			want: Bar{Width: 48, Fill: 48, Color: color.RGBA{G: 255, A: 0xf2}, OffsetY: -13, Kills: "0"},
		},
		{
			name:  "dead with negative kills",
			ship:  messages.ShipSnapshot{Health: -5, Kills: -3, Name: "   "},
			width: 100, height: 100,
			want: Bar{Width: 100, Fill: 0, Color: color.RGBA{R: 255, A: 0xf2}, OffsetY: -65, Kills: "0"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewBar(tt.ship, tt.width, tt.height)
			assert.Equal(t, tt.want.Width, got.Width)
			assert.Equal(t, tt.want.Fill, got.Fill)
			assert.Equal(t, tt.want.Color, got.Color)
			assert.InDelta(t, tt.want.OffsetY, got.OffsetY, 1e-9)
			assert.Equal(t, tt.want.Kills, got.Kills)
			assert.Equal(t, tt.want.Name, got.Name)
			assert.Equal(t, tt.want.Name != "", got.ShowName())
		})
	}
}

func TestTruncateName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "  Ace \t", want: "Ace"},
		{in: "exactlyeighteen!!!", want: "exactlyeighteen!!!"},
		{in: "abcdefghijklmnopqrst", want: "abcdefghijklmnopq…"},
		{in: "ééééééééééééééééééé", want: "ééééééééééééééééé…"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := TruncateName(tt.in)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len([]rune(got)), MaxNameChars)
		})
	}
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	tr.Upsert("b", messages.ShipSnapshot{Health: 10}, 0, 0)
	tr.Upsert("a", messages.ShipSnapshot{Health: 100}, 0, 0)
	assert.Equal(t, []string{"a", "b"}, tr.IDs())

	tr.Upsert("a", messages.ShipSnapshot{Health: 0}, 0, 0)
	bar, ok := tr.Bar("a")
	require.True(t, ok)
	assert.Zero(t, bar.Fill)

	tr.Remove("a")
	tr.Remove("missing")
	assert.Equal(t, []string{"b"}, tr.IDs())

	tr.Clear()
	assert.Empty(t, tr.IDs())
}
