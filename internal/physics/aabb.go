package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl64.Vec3
}

// BoxAround returns the box centered at center with the given half extents.
func BoxAround(center, half mgl64.Vec3) AABB {
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// BoxFromTransform computes the world AABB of a box of the given full size,
// centered at center and rotated yaw radians about the vertical axis.
func BoxFromTransform(center, size mgl64.Vec3, yaw float64) AABB {
	c := math.Abs(math.Cos(yaw))
	s := math.Abs(math.Sin(yaw))
	hx := size[0] / 2
	hz := size[2] / 2
	half := mgl64.Vec3{c*hx + s*hz, size[1] / 2, s*hx + c*hz}
	return BoxAround(center, half)
}

// Intersects reports whether the boxes overlap. Touching faces do not count.
func (b AABB) Intersects(o AABB) bool {
	return b.Min[0] < o.Max[0] && b.Max[0] > o.Min[0] &&
		b.Min[1] < o.Max[1] && b.Max[1] > o.Min[1] &&
		b.Min[2] < o.Max[2] && b.Max[2] > o.Min[2]
}

// Contains reports whether p lies inside or on the box.
func (b AABB) Contains(p mgl64.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Center returns the midpoint of the box.
func (b AABB) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the full extents of the box.
func (b AABB) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}
