package vmath

import (
	"math"
)

// Vec3F is a float64 3D vector for physics-heavy calculations
// Value type; all helpers return new vectors and never mutate inputs
type Vec3F struct {
	X, Y, Z float64
}

// V3F builds a vector from components
func V3F(x, y, z float64) Vec3F {
	return Vec3F{x, y, z}
}

// V3FSplat builds a vector with all components set to s
func V3FSplat(s float64) Vec3F {
	return Vec3F{s, s, s}
}

func V3FAdd(a, b Vec3F) Vec3F {
	return Vec3F{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func V3FSub(a, b Vec3F) Vec3F {
	return Vec3F{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func V3FScale(v Vec3F, s float64) Vec3F {
	return Vec3F{v.X * s, v.Y * s, v.Z * s}
}

// V3FDiv divides each component by s, caller guarantees s != 0
func V3FDiv(v Vec3F, s float64) Vec3F {
	return Vec3F{v.X / s, v.Y / s, v.Z / s}
}

func V3FDot(a, b Vec3F) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func V3FCross(a, b Vec3F) Vec3F {
	return Vec3F{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func V3FMagSq(v Vec3F) float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func V3FMag(v Vec3F) float64 {
	return math.Sqrt(V3FMagSq(v))
}

// V3FDistSq returns squared euclidean distance between a and b
func V3FDistSq(a, b Vec3F) float64 {
	return V3FMagSq(V3FSub(a, b))
}

// V3FNormalize returns the unit vector of v, zero vector for zero length input
func V3FNormalize(v Vec3F) Vec3F {
	mag := V3FMag(v)
	if mag == 0 {
		return Vec3F{}
	}
	inv := 1.0 / mag
	return Vec3F{v.X * inv, v.Y * inv, v.Z * inv}
}

// V3FClampMag rescales v to exactly maxMag when its length exceeds maxMag
// Direction is preserved; shorter vectors are returned unchanged
func V3FClampMag(v Vec3F, maxMag float64) Vec3F {
	mag := V3FMag(v)
	if mag <= maxMag {
		return v
	}
	return V3FScale(V3FDiv(v, mag), maxMag)
}

// V3FIsFinite reports whether no component is NaN or ±Inf
func V3FIsFinite(v Vec3F) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
