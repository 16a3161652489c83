package hud

import (
	"math"
	"sort"

	"github.com/cbodonnell/skirmish/pkg/kinematic"
	"github.com/cbodonnell/skirmish/pkg/messages"
)

const (
	IndicatorMargin   = 28.0
	IndicatorNear     = 300.0
	IndicatorFar      = 4000.0
	IndicatorMinScale = 0.6
	IndicatorMaxScale = 1.8
)

// Camera describes the visible part of the world.
type Camera struct {
	// Center is the world position at the middle of the screen.
	Center kinematic.Vector
	// Width and Height are the screen size in pixels.
	Width, Height float64
	Zoom          float64
}

// Indicator points from the screen edge towards an offscreen ship.
type Indicator struct {
	ID       string
	Position kinematic.Vector
	Angle    float64
	Scale    float64
	Label    string
}

// Indicators returns an indicator for every living ship outside the
// camera's inner area, sorted by id. The local ship never gets one.
func Indicators(cam Camera, ships map[string]messages.ShipSnapshot, localID string) []Indicator {
	indicators := make([]Indicator, 0)
	for id, ship := range ships {
		if id == localID || ship.Health <= 0 {
			continue
		}
		if ind, ok := Indicate(cam, ship.Physics.Position); ok {
			ind.ID = id
			ind.Label = TruncateName(ship.Name)
			indicators = append(indicators, ind)
		}
	}
	sort.Slice(indicators, func(i, j int) bool {
		return indicators[i].ID < indicators[j].ID
	})
	return indicators
}

// Indicate places an indicator for a ship at pos. It returns false when
// the ship is inside the camera's inner area.
func Indicate(cam Camera, pos kinematic.Vector) (Indicator, bool) {
	zoom := cam.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	halfW, halfH := cam.Width/2, cam.Height/2
	innerW, innerH := halfW-IndicatorMargin, halfH-IndicatorMargin
	if innerW <= 0 || innerH <= 0 {
		return Indicator{}, false
	}

	world := pos.Sub(cam.Center)
	screen := world.Scale(zoom)
	absX, absY := math.Abs(screen.X), math.Abs(screen.Y)
	if absX <= innerW && absY <= innerH {
		return Indicator{}, false
	}

	denom := math.Max(absX/innerW, absY/innerH)
	edge := screen.Scale(1 / denom)

	t := kinematic.Clamp((world.Magnitude()-IndicatorNear)/(IndicatorFar-IndicatorNear), 0, 1)
	return Indicator{
		Position: kinematic.Vector{
			X: math.Round(halfW + edge.X),
			Y: math.Round(halfH + edge.Y),
		},
		Angle: math.Atan2(screen.Y, screen.X),
		Scale: IndicatorMaxScale - t*(IndicatorMaxScale-IndicatorMinScale),
	}, true
}
