package math

import "math"

// Quaternion is a unit rotation (X, Y, Z imaginary, W real).
type Quaternion struct {
	X, Y, Z, W float32
}

// QuaternionFromAxisAngle builds a rotation of angle radians about axis.
func QuaternionFromAxisAngle(axis Vec3, angle float32) Quaternion {
	sin, cos := math.Sincos(float64(angle) / 2)
	axis = axis.Normalize()
	s := float32(sin)
	return Quaternion{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: float32(cos)}
}

// Mul composes rotations: the result applies other first, then q.
func (q Quaternion) Mul(other Quaternion) Quaternion {
	return Quaternion{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// RotateVector rotates v by q (q must be unit length).
func (q Quaternion) RotateVector(v Vec3) Vec3 {
	p := Quaternion{X: v.X, Y: v.Y, Z: v.Z}
	r := q.Mul(p).Mul(q.Conjugate())
	return Vec3{X: r.X, Y: r.Y, Z: r.Z}
}
