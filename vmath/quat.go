package vmath

import (
	"math"
)

// Quat is a rotation quaternion, W is the scalar part
type Quat struct {
	W, X, Y, Z float64
}

// QuatIdentity is the no-op rotation
var QuatIdentity = Quat{W: 1}

// quatParallelEps bounds the dot product considered (anti)parallel
const quatParallelEps = 1e-6

// QuatAxisAngle builds a rotation of angle radians around a unit axis
func QuatAxisAngle(axis Vec3F, angle float64) Quat {
	s, c := math.Sincos(angle * 0.5)
	return Quat{W: c, X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s}
}

// QuatFromTo returns the shortest rotation taking direction from onto direction to
// Inputs are normalized internally; a zero-length input yields identity
// Antiparallel inputs rotate half a turn around any axis perpendicular to from
func QuatFromTo(from, to Vec3F) Quat {
	f := V3FNormalize(from)
	t := V3FNormalize(to)
	if V3FMagSq(f) == 0 || V3FMagSq(t) == 0 {
		return QuatIdentity
	}

	cosTheta := V3FDot(f, t)
	if cosTheta >= 1-quatParallelEps {
		return QuatIdentity
	}

	if cosTheta < -1+quatParallelEps {
		axis := V3FCross(Vec3F{Z: 1}, f)
		if V3FMagSq(axis) < quatParallelEps {
			axis = V3FCross(Vec3F{X: 1}, f)
		}
		return QuatAxisAngle(V3FNormalize(axis), math.Pi)
	}

	axis := V3FCross(f, t)
	s := math.Sqrt((1 + cosTheta) * 2)
	inv := 1 / s
	return Quat{
		W: s * 0.5,
		X: axis.X * inv,
		Y: axis.Y * inv,
		Z: axis.Z * inv,
	}
}

// QuatMul composes rotations: the result applies b first, then a
func QuatMul(a, b Quat) Quat {
	return Quat{
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
	}
}

// QuatRotate applies q to v
func QuatRotate(q Quat, v Vec3F) Vec3F {
	// v' = v + 2w(u×v) + 2u×(u×v), u = vector part
	u := Vec3F{q.X, q.Y, q.Z}
	uv := V3FCross(u, v)
	uuv := V3FCross(u, uv)
	return V3FAdd(v, V3FAdd(V3FScale(uv, 2*q.W), V3FScale(uuv, 2)))
}

// QuatNorm returns the quaternion length, 1 for a valid rotation
func QuatNorm(q Quat) float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// QuatIsFinite reports whether no component is NaN or ±Inf
func QuatIsFinite(q Quat) bool {
	return isFinite(q.W) && isFinite(q.X) && isFinite(q.Y) && isFinite(q.Z)
}
