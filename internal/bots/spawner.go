package bots

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tomz197/roadwar/internal/loop/config"
	"github.com/tomz197/roadwar/internal/object"
	"github.com/tomz197/roadwar/internal/physics"
)

// Spawner picks spawn points for bots around the player. Placement is a
// bounded synchronous retry: a fixed number of attempts, each rejected if it
// lands inside a building or too close to the player or another live bot.
// When every attempt fails the separation constraint is dropped and the last
// candidate is used.
type Spawner struct {
	rng      *rand.Rand
	blocked  func(candidate, footprint mgl64.Vec3) bool
	height   func(p mgl64.Vec3) float64
	attempts int
}

// NewSpawner creates a spawner. blocked and height may be nil for an empty world.
func NewSpawner(rng *rand.Rand, blocked func(candidate, footprint mgl64.Vec3) bool, height func(mgl64.Vec3) float64) *Spawner {
	if blocked == nil {
		blocked = func(mgl64.Vec3, mgl64.Vec3) bool { return false }
	}
	if height == nil {
		height = func(mgl64.Vec3) float64 { return 0 }
	}
	return &Spawner{
		rng:      rng,
		blocked:  blocked,
		height:   height,
		attempts: config.BotSpawnAttempts,
	}
}

// Place returns a spawn position around player. relaxed is true when no
// attempt satisfied every constraint.
func (s *Spawner) Place(player mgl64.Vec3, others []*object.Bot) (pos mgl64.Vec3, relaxed bool) {
	footprint := mgl64.Vec3{config.BotHalfExtent, config.BotHalfExtent, config.BotHalfExtent}
	var candidate mgl64.Vec3
	for range s.attempts {
		candidate = s.candidate(player)
		if s.blocked(candidate, footprint) {
			continue
		}
		if s.crowded(candidate, player, others) {
			continue
		}
		return candidate, false
	}
	return candidate, true
}

// candidate picks a point on a ring around player and settles it on the terrain.
func (s *Spawner) candidate(player mgl64.Vec3) mgl64.Vec3 {
	angle := s.rng.Float64() * 2 * math.Pi
	dist := config.BotSpawnMinDistance + s.rng.Float64()*(config.BotSpawnMaxDistance-config.BotSpawnMinDistance)
	p := player.Add(physics.Forward(angle).Mul(dist))
	p[1] = s.height(p) + config.VehicleRideHeight
	return p
}

func (s *Spawner) crowded(p, player mgl64.Vec3, others []*object.Bot) bool {
	min2 := config.BotSpawnSeparation * config.BotSpawnSeparation
	if physics.PlanarDistanceSquared(p, player) < min2 {
		return true
	}
	for _, b := range others {
		if !b.Alive() {
			continue
		}
		if physics.PlanarDistanceSquared(p, b.Position) < min2 {
			return true
		}
	}
	return false
}

// randomInterval returns a retarget interval in [BotMinRetarget, BotMaxRetarget].
func randomInterval(rng *rand.Rand) int {
	return config.BotMinRetarget + rng.IntN(config.BotMaxRetarget-config.BotMinRetarget+1)
}

// randomHeading returns a heading in [-π, π).
func randomHeading(rng *rand.Rand) float64 {
	return rng.Float64()*2*math.Pi - math.Pi
}
