// Package physics provides collision detection, distance and heading utilities.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Distance calculates the Euclidean distance between two points.
func Distance(a, b mgl64.Vec3) float64 {
	return b.Sub(a).Len()
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(a, b mgl64.Vec3) float64 {
	d := b.Sub(a)
	return d.Dot(d)
}

// PlanarDistanceSquared ignores the vertical axis.
func PlanarDistanceSquared(a, b mgl64.Vec3) float64 {
	dx := b[0] - a[0]
	dz := b[2] - a[2]
	return dx*dx + dz*dz
}

// PointInSphere checks if a point is within radius of a target position.
func PointInSphere(p, center mgl64.Vec3, radius float64) bool {
	return DistanceSquared(p, center) <= radius*radius
}

// Forward returns the unit direction a heading (yaw) faces on the ground plane.
// Yaw 0 faces +Z.
func Forward(yaw float64) mgl64.Vec3 {
	return mgl64.Vec3{math.Sin(yaw), 0, math.Cos(yaw)}
}

// NormalizeAngle wraps an angle into [-π, π].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// TurnToward steps from current toward target along the shortest angular
// path, moving at most maxStep radians. The result is normalized.
func TurnToward(current, target, maxStep float64) float64 {
	diff := NormalizeAngle(target - current)
	if diff > maxStep {
		diff = maxStep
	} else if diff < -maxStep {
		diff = -maxStep
	}
	return NormalizeAngle(current + diff)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ClampInt bounds v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
