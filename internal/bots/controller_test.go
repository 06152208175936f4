package bots

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomz197/roadwar/internal/collision"
	"github.com/tomz197/roadwar/internal/loop/config"
	"github.com/tomz197/roadwar/internal/object"
	"github.com/tomz197/roadwar/internal/physics"
	"github.com/tomz197/roadwar/internal/world"
)

func newController(t *testing.T, store *world.Store) *Controller {
	t.Helper()
	return NewController(store, collision.NewIndex(store), Options{
		Rand: rand.New(rand.NewPCG(1, 2)),
	})
}

// flatStore has chunk (0,0) loaded with one building and no terrain.
func flatStore() *world.Store {
	store := world.NewStore(world.NewGenerator(1))
	c, _ := store.GetOrCreate(world.Key{})
	c.Features = nil
	c.Buildings = []world.Building{{Center: mgl64.Vec3{50, 5, 55}, Size: mgl64.Vec3{10, 10, 10}}}
	return store
}

func TestSteerTurnsAtMostMaxStep(t *testing.T) {
	c := newController(t, world.NewStore(world.NewGenerator(1)))
	b := object.NewBot(1, mgl64.Vec3{0, 0.5, 0}, 0, 1000)
	b.TargetHeading = math.Pi / 2
	c.bots = append(c.bots, b)

	c.Step()
	assert.InDelta(t, config.BotMaxTurn, b.Heading, 1e-9)
	assert.Equal(t, 1, b.Timer)
	assert.Greater(t, b.Position[0], 0.0)

	// Shortest path across the ±π seam.
	b.Heading = math.Pi - 0.01
	b.TargetHeading = -math.Pi + 0.01
	c.Step()
	assert.InDelta(t, -math.Pi+0.01, b.Heading, 1e-9)
}

func TestSteerRetargetsWhenTimerExpires(t *testing.T) {
	c := newController(t, world.NewStore(world.NewGenerator(1)))
	b := object.NewBot(1, mgl64.Vec3{}, 0, 2)
	c.bots = append(c.bots, b)

	c.Step()
	c.Step()
	assert.Equal(t, 2, b.Timer)
	c.Step()
	assert.Zero(t, b.Timer)
	assert.GreaterOrEqual(t, b.Interval, config.BotMinRetarget)
	assert.LessOrEqual(t, b.Interval, config.BotMaxRetarget)
}

func TestSteerFollowsTerrain(t *testing.T) {
	store := flatStore()
	chunk, _ := store.Get(world.Key{})
	chunk.Buildings = nil
	chunk.Features = []world.Feature{{Position: mgl64.Vec3{20, 0, 20}, Peak: 10, Radius: 100}}

	c := newController(t, store)
	b := object.NewBot(1, mgl64.Vec3{20, 0, 10}, 0, 1000)
	c.bots = append(c.bots, b)
	c.Step()
	want := store.HeightAt(b.Position) + config.VehicleRideHeight
	assert.InDelta(t, want, b.Position[1], 1e-9)
	assert.Greater(t, b.Position[1], config.VehicleRideHeight)
}

func TestBlockedBotStaysAndTurnsAround(t *testing.T) {
	c := newController(t, flatStore())
	start := mgl64.Vec3{50, 0.5, 48.9}
	b := object.NewBot(1, start, 0, 1000)
	c.bots = append(c.bots, b)

	c.Step()
	assert.Equal(t, start, b.Position)
	assert.Zero(t, b.Timer)
	off := physics.NormalizeAngle(b.TargetHeading - math.Pi)
	assert.LessOrEqual(t, math.Abs(off), config.BotEscapeJitter+1e-9)

	// Turning away eventually frees the bot.
	for range 200 {
		c.Step()
	}
	assert.NotEqual(t, start, b.Position)
}

func TestResetSpawnsSeparatedPopulation(t *testing.T) {
	c := newController(t, world.NewStore(world.NewGenerator(1)))
	player := mgl64.Vec3{10, 0.5, -20}
	c.Reset(player)

	bots := c.Bots()
	require.Len(t, bots, config.BotCount)
	for i, b := range bots {
		d := math.Sqrt(physics.PlanarDistanceSquared(b.Position, player))
		assert.GreaterOrEqual(t, d, config.BotSpawnMinDistance-1e-9)
		assert.LessOrEqual(t, d, config.BotSpawnMaxDistance+1e-9)
		assert.Equal(t, config.MaxHealth, b.Health)
		for _, o := range bots[i+1:] {
			assert.GreaterOrEqual(t, physics.PlanarDistanceSquared(b.Position, o.Position),
				config.BotSpawnSeparation*config.BotSpawnSeparation)
		}
	}
}

func TestRespawnReplacesBot(t *testing.T) {
	c := newController(t, world.NewStore(world.NewGenerator(1)))
	c.Reset(mgl64.Vec3{})
	victim := c.Bots()[2]

	fresh := c.Respawn(victim, mgl64.Vec3{})
	assert.Len(t, c.Bots(), config.BotCount)
	assert.NotContains(t, c.Bots(), victim)
	assert.Contains(t, c.Bots(), fresh)
	assert.Greater(t, fresh.ID, config.BotCount)
}

func TestReplenishTopsUp(t *testing.T) {
	c := newController(t, world.NewStore(world.NewGenerator(1)))
	assert.Equal(t, config.BotCount, c.Replenish(mgl64.Vec3{}))
	assert.Zero(t, c.Replenish(mgl64.Vec3{}))
}

func TestSpawnerRelaxesAfterBoundedAttempts(t *testing.T) {
	calls := 0
	always := func(mgl64.Vec3, mgl64.Vec3) bool {
		calls++
		return true
	}
	s := NewSpawner(rand.New(rand.NewPCG(3, 4)), always, nil)

	pos, relaxed := s.Place(mgl64.Vec3{}, nil)
	assert.True(t, relaxed)
	assert.Equal(t, config.BotSpawnAttempts, calls)
	d := math.Sqrt(physics.PlanarDistanceSquared(pos, mgl64.Vec3{}))
	assert.GreaterOrEqual(t, d, config.BotSpawnMinDistance-1e-9)
}

func TestSpawnerRejectsCrowdedCandidates(t *testing.T) {
	s := NewSpawner(rand.New(rand.NewPCG(5, 6)), nil, nil)
	var others []*object.Bot
	for range 4 {
		pos, relaxed := s.Place(mgl64.Vec3{}, others)
		require.False(t, relaxed)
		for _, o := range others {
			assert.GreaterOrEqual(t, physics.PlanarDistanceSquared(pos, o.Position),
				config.BotSpawnSeparation*config.BotSpawnSeparation)
		}
		others = append(others, object.NewBot(len(others)+1, pos, 0, 60))
	}
}

func TestRecallRespawnsStrays(t *testing.T) {
	c := newController(t, world.NewStore(world.NewGenerator(1)))
	c.Reset(mgl64.Vec3{})
	stray := c.Bots()[0]
	stray.Position = mgl64.Vec3{1000, 0.5, 0}

	assert.Equal(t, 1, c.Recall(mgl64.Vec3{}, config.BotLeashDistance))
	assert.NotContains(t, c.Bots(), stray)
	assert.Len(t, c.Bots(), config.BotCount)
	assert.Zero(t, c.Recall(mgl64.Vec3{}, config.BotLeashDistance))
}
