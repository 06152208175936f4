package world

import "github.com/go-gl/mathgl/mgl64"

// HeightAt returns the terrain elevation at p: the largest contribution of
// any terrain feature in the 3x3 chunk neighborhood of p. Only the X and Z
// components of p are used.
func (s *Store) HeightAt(p mgl64.Vec3) float64 {
	height := 0.0
	s.Neighborhood(p, func(c *Chunk) bool {
		for _, f := range c.Features {
			if h := f.Contribution(p); h > height {
				height = h
			}
		}
		return false
	})
	return height
}
