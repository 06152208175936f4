// Package collision answers movement-blocking and projectile hit queries
// against the buildings of the loaded world.
//
// The broad phase is the 3x3 chunk neighborhood of the query position; the
// narrow phase is exact AABB-AABB (or point-in-AABB) testing.
package collision

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tomz197/roadwar/internal/physics"
	"github.com/tomz197/roadwar/internal/world"
)

// Index is a read-only view over a chunk store.
type Index struct {
	store *world.Store
}

// NewIndex creates an index over store.
func NewIndex(store *world.Store) *Index {
	return &Index{store: store}
}

// Blocked reports whether a box centered at candidate with the given half
// extents intersects any building near candidate.
func (ix *Index) Blocked(candidate, footprint mgl64.Vec3) bool {
	box := physics.BoxAround(candidate, footprint)
	_, hit := ix.firstBuilding(candidate, func(b physics.AABB) bool {
		return b.Intersects(box)
	})
	return hit
}

// HitsBuilding reports whether the point lies inside a building near it.
func (ix *Index) HitsBuilding(p mgl64.Vec3) bool {
	_, hit := ix.firstBuilding(p, func(b physics.AABB) bool {
		return b.Contains(p)
	})
	return hit
}

// BuildingAt returns the first building whose box contains p.
func (ix *Index) BuildingAt(p mgl64.Vec3) (*world.Building, bool) {
	return ix.firstBuilding(p, func(b physics.AABB) bool {
		return b.Contains(p)
	})
}

// firstBuilding runs the narrow-phase test over the buildings of the 3x3
// neighborhood of p, recomputing each box from its transform before testing.
func (ix *Index) firstBuilding(p mgl64.Vec3, test func(physics.AABB) bool) (*world.Building, bool) {
	var found *world.Building
	ix.store.Neighborhood(p, func(c *world.Chunk) bool {
		for i := range c.Buildings {
			b := &c.Buildings[i]
			if test(b.Bounds()) {
				found = b
				return true
			}
		}
		return false
	})
	return found, found != nil
}
