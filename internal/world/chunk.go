// Package world owns the chunked procedural world: chunk generation, the
// chunk store, streaming around a viewer and the terrain height field.
package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tomz197/roadwar/internal/loop/config"
	"github.com/tomz197/roadwar/internal/physics"
)

// Key identifies a chunk on the integer grid.
type Key struct {
	X, Z int
}

// KeyAt returns the key of the chunk containing the world position.
func KeyAt(p mgl64.Vec3) Key {
	return Key{
		X: int(math.Floor(p[0] / config.ChunkSize)),
		Z: int(math.Floor(p[2] / config.ChunkSize)),
	}
}

// Chebyshev returns the chessboard distance between two keys.
func (k Key) Chebyshev(o Key) int {
	dx := k.X - o.X
	if dx < 0 {
		dx = -dx
	}
	dz := k.Z - o.Z
	if dz < 0 {
		dz = -dz
	}
	return max(dx, dz)
}

// Origin is the world position of the chunk's minimum corner.
func (k Key) Origin() mgl64.Vec3 {
	return mgl64.Vec3{float64(k.X) * config.ChunkSize, 0, float64(k.Z) * config.ChunkSize}
}

// Center is the world position of the middle of the chunk at ground level.
func (k Key) Center() mgl64.Vec3 {
	half := config.ChunkSize / 2
	return k.Origin().Add(mgl64.Vec3{half, 0, half})
}

// Ground describes the chunk's ground plane.
type Ground struct {
	Origin mgl64.Vec3
	Size   float64
	Tint   uint8 // shade variant for renderers
}

// Road is a straight segment on the ground plane.
type Road struct {
	From, To mgl64.Vec3
	Width    float64
}

// Building is a static box with a yaw rotation.
type Building struct {
	Center mgl64.Vec3
	Size   mgl64.Vec3 // full extents before rotation
	Yaw    float64
}

// Bounds recomputes the world AABB from the building's current transform.
func (b *Building) Bounds() physics.AABB {
	return physics.BoxFromTransform(b.Center, b.Size, b.Yaw)
}

// Feature is a terrain bump (mountain) whose height falls off linearly from
// Peak at Position to zero at Radius.
type Feature struct {
	Position mgl64.Vec3
	Peak     float64
	Radius   float64
}

// Contribution returns the feature's elevation at planar distance from its center.
func (f Feature) Contribution(p mgl64.Vec3) float64 {
	if f.Radius <= 0 {
		return 0
	}
	d := math.Sqrt(physics.PlanarDistanceSquared(f.Position, p))
	if d >= f.Radius {
		return 0
	}
	return f.Peak * (1 - d/f.Radius)
}

// Chunk holds all generated content of one grid cell.
type Chunk struct {
	Key       Key
	Ground    Ground
	Roads     []Road
	Buildings []Building
	Features  []Feature
}
