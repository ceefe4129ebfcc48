package model

import "math"

// Vec2 is a position on the horizontal play plane.
type Vec2 struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Z + o.Z} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Z - o.Z} }

func (v Vec2) Scale(k float64) Vec2 { return Vec2{v.X * k, v.Z * k} }

func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Z) }

func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }

// Angle returns the polar angle of v in radians, in (-pi, pi].
func (v Vec2) Angle() float64 { return math.Atan2(v.Z, v.X) }

// AngleBetween returns the absolute angular separation of a and b
// around the origin, in [0, pi].
func AngleBetween(a, b Vec2) float64 {
	d := math.Abs(a.Angle() - b.Angle())
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

// Clamp limits both coordinates of v to [-bound, bound].
func (v Vec2) Clamp(bound float64) Vec2 {
	c := v
	if c.X > bound {
		c.X = bound
	}
	if c.X < -bound {
		c.X = -bound
	}
	if c.Z > bound {
		c.Z = bound
	}
	if c.Z < -bound {
		c.Z = -bound
	}
	return c
}
