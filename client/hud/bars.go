// Package hud derives the overlay values drawn around ships: health bars,
// kill counters, name labels and offscreen indicators.
package hud

import (
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/cbodonnell/skirmish/pkg/kinematic"
	"github.com/cbodonnell/skirmish/pkg/messages"
)

const (
	MinBarWidth         = 48.0
	BarHeight           = 6.0
	DefaultSpriteWidth  = 60.0
	DefaultSpriteHeight = 80.0
	// BarOffset places the bar above the sprite, as a fraction of its height.
	BarOffset    = 0.65
	MaxNameChars = 18
)

// Bar holds the derived values of one ship's health bar and labels.
type Bar struct {
	Width   float64
	Fill    float64
	Color   color.RGBA
	OffsetY float64
	Kills   string
	Name    string
}

// ShowName reports whether the name label is drawn.
func (b Bar) ShowName() bool {
	return b.Name != ""
}

// NewBar derives the bar of a ship drawn at the given sprite size.
// A zero size falls back to the default sprite size.
func NewBar(ship messages.ShipSnapshot, spriteWidth, spriteHeight float64) Bar {
	if spriteWidth <= 0 {
		spriteWidth = DefaultSpriteWidth
	}
	if spriteHeight <= 0 {
		spriteHeight = DefaultSpriteHeight
	}
	health := kinematic.Clamp(ship.Health, 0, 100)
	width := math.Max(MinBarWidth, math.Round(spriteWidth))
	t := health / 100
	return Bar{
		Width:   width,
		Fill:    math.Max(0, math.Round(width*health/100)),
		Color:   color.RGBA{R: uint8(math.Round(255 * (1 - t))), G: uint8(math.Round(255 * t)), A: 0xf2},
		OffsetY: -spriteHeight * BarOffset,
		Kills:   strconv.Itoa(max(0, ship.Kills)),
		Name:    TruncateName(ship.Name),
	}
}

// TruncateName trims name and shortens it to MaxNameChars characters,
// the last one being an ellipsis.
func TruncateName(name string) string {
	name = strings.TrimSpace(name)
	runes := []rune(name)
	if len(runes) <= MaxNameChars {
		return name
	}
	return string(runes[:MaxNameChars-1]) + "…"
}

// Tracker keeps the bar of every rendered ship.
type Tracker struct {
	lock sync.RWMutex
	bars map[string]Bar
}

func NewTracker() *Tracker {
	return &Tracker{bars: make(map[string]Bar)}
}

func (t *Tracker) Upsert(id string, ship messages.ShipSnapshot, width, height float64) {
	bar := NewBar(ship, width, height)
	t.lock.Lock()
	defer t.lock.Unlock()
	t.bars[id] = bar
}

func (t *Tracker) Remove(id string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	delete(t.bars, id)
}

func (t *Tracker) Bar(id string) (Bar, bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	bar, ok := t.bars[id]
	return bar, ok
}

// IDs returns the tracked ids, sorted.
func (t *Tracker) IDs() []string {
	t.lock.RLock()
	defer t.lock.RUnlock()
	ids := make([]string, 0, len(t.bars))
	for id := range t.bars {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (t *Tracker) Clear() {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.bars = make(map[string]Bar)
}
