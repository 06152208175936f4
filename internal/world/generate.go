package world

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tomz197/roadwar/internal/loop/config"
	"github.com/tomz197/roadwar/internal/physics"
)

// Generator builds chunk content as a pure function of (seed, key), so every
// viewer sees the same buildings and mountains at the same key.
type Generator struct {
	Seed uint64
}

// NewGenerator returns a generator for the given world seed.
func NewGenerator(seed uint64) Generator {
	return Generator{Seed: seed}
}

// hash32 mixes 32-bit input into a well-distributed 32-bit output.
func hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

// chunkSeed derives a per-chunk stream seed from the world seed and key.
func chunkSeed(seed uint64, k Key) (uint64, uint64) {
	h := uint32(seed) ^ uint32(seed>>32)
	h ^= uint32(int32(k.X)) * 0x9e3779b1
	h ^= uint32(int32(k.Z)) * 0x85ebca6b
	lo := hash32(h)
	hi := hash32(lo ^ 0xc2b2ae35)
	return uint64(hi)<<32 | uint64(lo), seed
}

func between(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// Generate produces the content of the chunk at k.
func (g Generator) Generate(k Key) *Chunk {
	s1, s2 := chunkSeed(g.Seed, k)
	r := rand.New(rand.NewPCG(s1, s2))

	origin := k.Origin()
	size := config.ChunkSize
	ch := &Chunk{
		Key:    k,
		Ground: Ground{Origin: origin, Size: size, Tint: uint8(r.IntN(4))},
	}

	// Each chunk owns the roads on its minimum edges, so the grid lines form a
	// street network with intersections at chunk corners (the spawn point
	// included).
	ch.Roads = []Road{
		{From: origin, To: origin.Add(mgl64.Vec3{size, 0, 0}), Width: config.RoadWidth},
		{From: origin, To: origin.Add(mgl64.Vec3{0, 0, size}), Width: config.RoadWidth},
	}

	n := config.MinBuildings + r.IntN(config.MaxBuildings-config.MinBuildings+1)
	for i := 0; i < n; i++ {
		if b, ok := placeBuilding(r, ch); ok {
			ch.Buildings = append(ch.Buildings, b)
		}
	}

	// The spawn chunk stays flat and clear of mountains.
	if k == (Key{}) {
		return ch
	}
	nf := r.IntN(config.MaxFeatures + 1)
	for i := 0; i < nf; i++ {
		ch.Features = append(ch.Features, Feature{
			Position: mgl64.Vec3{origin[0] + r.Float64()*size, 0, origin[2] + r.Float64()*size},
			Peak:     between(r, config.MinFeatureHeight, config.MaxFeatureHeight),
			Radius:   between(r, config.MinFeatureRadius, config.MaxFeatureRadius),
		})
	}
	return ch
}

// placeBuilding picks a building inside the block enclosed by the roads, rotated by a multiple of 90 degrees. It returns false if the
// candidate would overlap a road or an existing building.
func placeBuilding(r *rand.Rand, ch *Chunk) (Building, bool) {
	w := between(r, config.MinBuildingSize, config.MaxBuildingSize)
	d := between(r, config.MinBuildingSize, config.MaxBuildingSize)
	h := between(r, config.MinBuildingHeight, config.MaxBuildingHeight)
	reach := math.Max(w, d) / 2

	origin := ch.Key.Origin()
	x := origin[0] + blockOffset(r, reach)
	z := origin[2] + blockOffset(r, reach)

	b := Building{
		Center: mgl64.Vec3{x, h / 2, z},
		Size:   mgl64.Vec3{w, h, d},
		Yaw:    float64(r.IntN(4)) * math.Pi / 2,
	}
	box := b.Bounds()
	for _, road := range ch.Roads {
		if roadBounds(road).Intersects(box) {
			return Building{}, false
		}
	}
	for i := range ch.Buildings {
		if ch.Buildings[i].Bounds().Intersects(box) {
			return Building{}, false
		}
	}
	return b, true
}

// blockOffset returns a coordinate within the chunk keeping reach units of
// clearance from the edge roads on both sides.
func blockOffset(r *rand.Rand, reach float64) float64 {
	margin := config.RoadWidth/2 + 1
	return between(r, margin+reach, config.ChunkSize-margin-reach)
}

// roadBounds is a tall box around a road segment, used to keep buildings off it.
func roadBounds(r Road) physics.AABB {
	half := r.Width / 2
	minV := mgl64.Vec3{math.Min(r.From[0], r.To[0]) - half, -1, math.Min(r.From[2], r.To[2]) - half}
	maxV := mgl64.Vec3{math.Max(r.From[0], r.To[0]) + half, 1000, math.Max(r.From[2], r.To[2]) + half}
	return physics.AABB{Min: minV, Max: maxV}
}
