package quant

import (
	"fmt"
	"math"
)

// normalizeEpsilon is the magnitude below which a vector normalizes to zero.
const normalizeEpsilon = 1e-5

// Vec3 is a three-component single-precision vector.
type Vec3 struct {
	X float32 `json:"x" yaml:"x"`
	Y float32 `json:"y" yaml:"y"`
	Z float32 `json:"z" yaml:"z"`
}

// Axis returns the component at index i (0 = X, 1 = Y, anything else = Z).
func (v Vec3) Axis(i int) float32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Scale multiplies every component by s.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Magnitude returns the Euclidean length, computed in double precision so
// tiny components do not underflow.
func (v Vec3) Magnitude() float32 {
	x, y, z := float64(v.X), float64(v.Y), float64(v.Z)
	return float32(math.Sqrt(x*x + y*y + z*z))
}

// Normalized returns the unit vector in the direction of v, or the zero
// vector when v is shorter than normalizeEpsilon.
func (v Vec3) Normalized() Vec3 {
	m := v.Magnitude()
	if m <= normalizeEpsilon {
		return Vec3{}
	}
	return Vec3{v.X / m, v.Y / m, v.Z / m}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
