package math

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	s := math.Sin(angle / 2)
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: math.Cos(angle / 2),
	}
}

// QuatFromMat4 extracts the rotation of a pure rotation matrix.
func QuatFromMat4(m Mat4) Quat {
	q := mgl64.Mat4ToQuat(mgl64.Mat4(m))
	return Quat{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W}
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if length < 1e-10 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Mul multiplies two quaternions (combines rotations).
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// ToMat4 converts the quaternion to a 4x4 rotation matrix.
func (q Quat) ToMat4() Mat4 {
	q = q.Normalize()

	xx := q.X * q.X
	xy := q.X * q.Y
	xz := q.X * q.Z
	xw := q.X * q.W
	yy := q.Y * q.Y
	yz := q.Y * q.Z
	yw := q.Y * q.W
	zz := q.Z * q.Z
	zw := q.Z * q.W

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + zw), 2 * (xz - yw), 0,
		2 * (xy - zw), 1 - 2*(xx+zz), 2 * (yz + xw), 0,
		2 * (xz + yw), 2 * (yz - xw), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}

// ToEuler returns the XYZ Euler angles (radians) of the rotation.
// Of the two equivalent solutions the one with the smallest absolute
// sum is returned, so small rotations stay small.
func (q Quat) ToEuler() Vec3 {
	m := q.ToMat4()
	cy := math.Hypot(m[0], m[1])

	if cy <= 16*epsilon32 {
		return Vec3{
			X: math.Atan2(-m[9], m[5]),
			Y: math.Atan2(-m[2], cy),
			Z: 0,
		}
	}

	e1 := Vec3{
		X: math.Atan2(m[6], m[10]),
		Y: math.Atan2(-m[2], cy),
		Z: math.Atan2(m[1], m[0]),
	}
	e2 := Vec3{
		X: math.Atan2(-m[6], -m[10]),
		Y: math.Atan2(-m[2], -cy),
		Z: math.Atan2(-m[1], -m[0]),
	}
	if absSum(e1) > absSum(e2) {
		return e2
	}
	return e1
}

// epsilon32 is the float32 machine epsilon; scene data is authored in single precision.
const epsilon32 = 1.1920929e-07

func absSum(v Vec3) float64 {
	return math.Abs(v.X) + math.Abs(v.Y) + math.Abs(v.Z)
}
