package kinematic

// This package includes the vector math used for dead reckoning.

import (
	"math"
)

// Vector is a 2D vector in world units.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vector) Add(other Vector) Vector {
	return Vector{X: v.X + other.X, Y: v.Y + other.Y}
}

func (v Vector) Sub(other Vector) Vector {
	return Vector{X: v.X - other.X, Y: v.Y - other.Y}
}

func (v Vector) Scale(s float64) Vector {
	return Vector{X: v.X * s, Y: v.Y * s}
}

func (v Vector) Magnitude() float64 {
	return math.Hypot(v.X, v.Y)
}

// Clamp returns v with each component limited to [min, max].
func (v Vector) Clamp(min, max float64) Vector {
	return Vector{X: Clamp(v.X, min, max), Y: Clamp(v.Y, min, max)}
}

// Displacement returns the displacement of an object moving at constant velocity for dt seconds.
func Displacement(velocity Vector, dt float64) Vector {
	return velocity.Scale(dt)
}

// Clamp limits value to [min, max].
func Clamp(value, min, max float64) float64 {
	return math.Max(min, math.Min(max, value))
}
