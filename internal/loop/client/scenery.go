package client

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tomz197/roadwar/internal/draw"
	"github.com/tomz197/roadwar/internal/loop/config"
	"github.com/tomz197/roadwar/internal/world"
)

const contourSegments = 16

// rect is an axis-aligned ground rectangle in world space.
type rect struct {
	lo, hi mgl64.Vec3
	color  draw.Color
}

// chunkScenery holds the static shapes of one chunk in world space.
type chunkScenery struct {
	lo, hi   mgl64.Vec3
	contours [][]mgl64.Vec3
	rects    []rect // roads first, then buildings
}

// scenery caches chunk shapes between frames. It is the session's chunk
// lifecycle listener, so entries are built on load and dropped on eviction.
type scenery struct {
	chunks map[world.Key]*chunkScenery
}

var _ world.Listener = (*scenery)(nil)

func newScenery() *scenery {
	return &scenery{chunks: make(map[world.Key]*chunkScenery)}
}

func (s *scenery) ChunkLoaded(c *world.Chunk) {
	s.chunks[c.Key] = buildScenery(c)
}

func (s *scenery) ChunkEvicted(c *world.Chunk) {
	delete(s.chunks, c.Key)
}

func (s *scenery) get(k world.Key) (*chunkScenery, bool) {
	cs, ok := s.chunks[k]
	return cs, ok
}

func (s *scenery) len() int {
	return len(s.chunks)
}

func buildScenery(c *world.Chunk) *chunkScenery {
	o := c.Key.Origin()
	cs := &chunkScenery{
		lo: o,
		hi: o.Add(mgl64.Vec3{config.ChunkSize, 0, config.ChunkSize}),
	}
	for _, f := range c.Features {
		cs.contours = append(cs.contours, contour(f))
	}
	for _, r := range c.Roads {
		half := r.Width / 2
		cs.rects = append(cs.rects, rect{
			lo:    mgl64.Vec3{math.Min(r.From[0], r.To[0]) - half, 0, math.Min(r.From[2], r.To[2]) - half},
			hi:    mgl64.Vec3{math.Max(r.From[0], r.To[0]) + half, 0, math.Max(r.From[2], r.To[2]) + half},
			color: draw.ColorRoad,
		})
	}
	for i := range c.Buildings {
		b := &c.Buildings[i]
		box := b.Bounds()
		color := draw.ColorBuilding
		if b.Size[1] > config.MaxBuildingHeight*2/3 {
			color = draw.ColorTower
		}
		cs.rects = append(cs.rects, rect{lo: box.Min, hi: box.Max, color: color})
	}
	return cs
}

// contour outlines a terrain feature at half its peak height.
func contour(f world.Feature) []mgl64.Vec3 {
	r := f.Radius / 2
	ring := make([]mgl64.Vec3, 0, contourSegments+1)
	for i := 0; i <= contourSegments; i++ {
		a := 2 * math.Pi * float64(i) / contourSegments
		ring = append(ring, f.Position.Add(mgl64.Vec3{math.Sin(a) * r, 0, math.Cos(a) * r}))
	}
	return ring
}
