package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestAABBIntersects(t *testing.T) {
	a := BoxAround(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})

	cases := []struct {
		name string
		b    AABB
		want bool
	}{
		{"overlapping", BoxAround(mgl64.Vec3{1.5, 0, 0}, mgl64.Vec3{1, 1, 1}), true},
		{"contained", BoxAround(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.1, 0.1, 0.1}), true},
		{"touching", BoxAround(mgl64.Vec3{2, 0, 0}, mgl64.Vec3{1, 1, 1}), false},
		{"apart on z", BoxAround(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{1, 1, 1}), false},
		{"apart on y", BoxAround(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{1, 1, 1}), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, a.Intersects(tc.b))
			assert.Equal(t, tc.want, tc.b.Intersects(a))
		})
	}
}

func TestBoxFromTransformRotation(t *testing.T) {
	size := mgl64.Vec3{4, 2, 10}

	straight := BoxFromTransform(mgl64.Vec3{}, size, 0)
	assert.InDelta(t, 4, straight.Size()[0], 1e-9)
	assert.InDelta(t, 10, straight.Size()[2], 1e-9)

	quarter := BoxFromTransform(mgl64.Vec3{}, size, math.Pi/2)
	assert.InDelta(t, 10, quarter.Size()[0], 1e-9)
	assert.InDelta(t, 4, quarter.Size()[2], 1e-9)
	assert.InDelta(t, 2, quarter.Size()[1], 1e-9)
}

func TestTurnTowardTakesShortestPath(t *testing.T) {
	// From just below +π to just above -π is a short hop across the seam.
	got := TurnToward(math.Pi-0.05, -math.Pi+0.05, 0.5)
	assert.InDelta(t, -math.Pi+0.05, got, 1e-9)

	// Large differences are clamped to the max step.
	got = TurnToward(0, 1, 0.05)
	assert.InDelta(t, 0.05, got, 1e-9)
	got = TurnToward(0, -1, 0.05)
	assert.InDelta(t, -0.05, got, 1e-9)
}

func TestForwardIsUnitLength(t *testing.T) {
	for _, yaw := range []float64{0, 1, -2, math.Pi} {
		assert.InDelta(t, 1, Forward(yaw).Len(), 1e-9)
	}
	assert.InDelta(t, 1, Forward(0)[2], 1e-9)
}
