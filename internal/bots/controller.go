// Package bots drives the scripted opponents: spawning around the player,
// wandering with periodic retargeting, and turning away from buildings.
package bots

import (
	"math"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tomz197/roadwar/internal/collision"
	"github.com/tomz197/roadwar/internal/loop/config"
	"github.com/tomz197/roadwar/internal/object"
	"github.com/tomz197/roadwar/internal/physics"
	"github.com/tomz197/roadwar/internal/world"
)

// Controller owns the live bot list.
type Controller struct {
	store   *world.Store
	index   *collision.Index
	rng     *rand.Rand
	spawner *Spawner
	target  int
	bots    []*object.Bot
	nextID  int
	logger  *log.Logger
}

// Options configures a Controller.
type Options struct {
	Count  int        // population to maintain; 0 means config.BotCount, negative means none
	Rand   *rand.Rand // randomness source, defaults to a fixed seed
	Logger *log.Logger
}

// NewController creates a controller whose bots live in store.
func NewController(store *world.Store, index *collision.Index, opts Options) *Controller {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(config.DefaultSeed, config.DefaultSeed))
	}
	count := opts.Count
	switch {
	case count == 0:
		count = config.BotCount
	case count < 0:
		count = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("bots")
	}
	return &Controller{
		store:   store,
		index:   index,
		rng:     rng,
		spawner: NewSpawner(rng, index.Blocked, store.HeightAt),
		target:  count,
		logger:  logger,
	}
}

// Bots returns the live bots. The slice is owned by the controller.
func (c *Controller) Bots() []*object.Bot {
	return c.bots
}

// Spawn adds one bot near player.
func (c *Controller) Spawn(player mgl64.Vec3) *object.Bot {
	pos, relaxed := c.spawner.Place(player, c.bots)
	if relaxed {
		c.logger.Debug("spawn separation relaxed", "x", pos[0], "z", pos[2])
	}
	c.nextID++
	b := object.NewBot(c.nextID, pos, randomHeading(c.rng), randomInterval(c.rng))
	c.bots = append(c.bots, b)
	return b
}

// Replenish spawns bots until the population is back at its target.
func (c *Controller) Replenish(player mgl64.Vec3) int {
	spawned := 0
	for c.live() < c.target {
		c.Spawn(player)
		spawned++
	}
	return spawned
}

// Respawn removes a destroyed bot and places a fresh one near player.
func (c *Controller) Respawn(b *object.Bot, player mgl64.Vec3) *object.Bot {
	b.MarkDestroyed()
	c.compact()
	return c.Spawn(player)
}

// Recall respawns every bot that has strayed farther than maxDist from the
// player. It returns the number of bots moved.
func (c *Controller) Recall(player mgl64.Vec3, maxDist float64) int {
	var strays []*object.Bot
	for _, b := range c.bots {
		if b.Alive() && physics.PlanarDistanceSquared(b.Position, player) > maxDist*maxDist {
			strays = append(strays, b)
		}
	}
	for _, b := range strays {
		c.Respawn(b, player)
	}
	return len(strays)
}

// Reset discards every bot and spawns a full population around player.
func (c *Controller) Reset(player mgl64.Vec3) {
	clear(c.bots)
	c.bots = c.bots[:0]
	c.Replenish(player)
}

// Step advances every live bot by one tick.
func (c *Controller) Step() {
	for _, b := range c.bots {
		if b.Alive() {
			c.steer(b)
		}
	}
}

// steer runs one tick of wandering for b: retarget on timer expiry, turn
// toward the target heading, then move unless a building is in the way.
func (c *Controller) steer(b *object.Bot) {
	b.Timer++
	if b.Timer > b.Interval {
		b.TargetHeading = randomHeading(c.rng)
		b.Timer = 0
		b.Interval = randomInterval(c.rng)
	}
	b.Heading = physics.TurnToward(b.Heading, b.TargetHeading, config.BotMaxTurn)

	candidate := b.Candidate()
	candidate[1] = c.store.HeightAt(candidate) + config.VehicleRideHeight
	if c.index.Blocked(candidate, b.Footprint()) {
		// Keep turning toward an escape heading already chosen; pick a new one
		// on the first blocked tick or once the old one is reached.
		if !b.Escaping || math.Abs(physics.NormalizeAngle(b.TargetHeading-b.Heading)) < 1e-9 {
			jitter := (c.rng.Float64()*2 - 1) * config.BotEscapeJitter
			b.TargetHeading = physics.NormalizeAngle(b.Heading + math.Pi + jitter)
			b.Escaping = true
		}
		b.Timer = 0
		return
	}
	b.Escaping = false
	b.Position = candidate
}

func (c *Controller) live() int {
	n := 0
	for _, b := range c.bots {
		if b.Alive() {
			n++
		}
	}
	return n
}

func (c *Controller) compact() {
	kept := c.bots[:0]
	for _, b := range c.bots {
		if !b.IsDestroyed() {
			kept = append(kept, b)
		}
	}
	clear(c.bots[len(kept):])
	c.bots = kept
}
