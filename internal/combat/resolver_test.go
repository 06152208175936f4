package combat

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomz197/roadwar/internal/bots"
	"github.com/tomz197/roadwar/internal/collision"
	"github.com/tomz197/roadwar/internal/loop/config"
	"github.com/tomz197/roadwar/internal/object"
	"github.com/tomz197/roadwar/internal/world"
)

type fixture struct {
	store    *world.Store
	bots     *bots.Controller
	resolver *Resolver
	bot      *object.Bot
}

// newFixture builds a resolver over an empty world with a single bot parked
// at (0, 0.5, 50).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := world.NewStore(world.NewGenerator(1))
	index := collision.NewIndex(store)
	ctl := bots.NewController(store, index, bots.Options{Count: 1, Rand: rand.New(rand.NewPCG(7, 8))})
	ctl.Replenish(mgl64.Vec3{})
	require.Len(t, ctl.Bots(), 1)
	b := ctl.Bots()[0]
	b.Position = mgl64.Vec3{0, 0.5, 50}

	r := NewResolver(index, ctl)
	r.SetLocalID("me")
	return &fixture{store: store, bots: ctl, resolver: r, bot: b}
}

// shootAtBot fires so the projectile reaches the bot on the next Step.
func (f *fixture) shootAtBot(owner string, now time.Time) {
	from := f.bot.Position.Sub(mgl64.Vec3{0, 0, 1})
	f.resolver.Add(owner, from, mgl64.Vec3{0, 0, 1}, now)
}

func TestThreeHitsKillBotAndAwardOnce(t *testing.T) {
	f := newFixture(t)
	now := time.Unix(1000, 0)
	victim := f.bot

	f.shootAtBot("me", now)
	events := f.resolver.Step(now, mgl64.Vec3{})
	require.Len(t, events, 1)
	assert.Equal(t, HitBot, events[0].Kind)
	assert.Equal(t, 66, victim.Health)

	f.shootAtBot("me", now)
	f.resolver.Step(now, mgl64.Vec3{})
	assert.Equal(t, 32, victim.Health)
	assert.Zero(t, f.resolver.Score())

	f.shootAtBot("me", now)
	events = f.resolver.Step(now, mgl64.Vec3{})
	require.Len(t, events, 1)
	assert.True(t, events[0].Killed)
	assert.Equal(t, config.KillBonus, events[0].Awarded)
	assert.Equal(t, 0, victim.Health)
	assert.Equal(t, config.KillBonus, f.resolver.Score())
	assert.Empty(t, f.resolver.Projectiles(), "hit projectiles are removed")

	// Exactly one replacement bot, at full health.
	require.Len(t, f.bots.Bots(), 1)
	fresh := f.bots.Bots()[0]
	assert.NotSame(t, victim, fresh)
	assert.Equal(t, config.MaxHealth, fresh.Health)

	// The dead bot cannot be hit again.
	f.resolver.Add("me", victim.Position.Sub(mgl64.Vec3{0, 0, 1}), mgl64.Vec3{0, 0, 1}, now)
	for _, ev := range f.resolver.Step(now, mgl64.Vec3{}) {
		assert.NotEqual(t, victim.ID, ev.BotID)
	}
	assert.Equal(t, config.KillBonus, f.resolver.Score())
}

func TestRemoteKillsDoNotScoreLocally(t *testing.T) {
	f := newFixture(t)
	now := time.Unix(1000, 0)
	f.bot.Health = 10

	f.shootAtBot("peer", now)
	events := f.resolver.Step(now, mgl64.Vec3{})
	require.Len(t, events, 1)
	assert.True(t, events[0].Killed)
	assert.Zero(t, events[0].Awarded)
	assert.Zero(t, f.resolver.Score())
}

func TestProjectileExpiresAtLifetime(t *testing.T) {
	f := newFixture(t)
	start := time.Unix(1000, 0)
	f.resolver.Fire(mgl64.Vec3{500, 0.5, 500}, mgl64.Vec3{1, 0, 0}, start)

	assert.Empty(t, f.resolver.Step(start.Add(1999*time.Millisecond), mgl64.Vec3{}))
	require.Len(t, f.resolver.Projectiles(), 1)

	events := f.resolver.Step(start.Add(config.ProjectileLifetime), mgl64.Vec3{})
	require.Len(t, events, 1)
	assert.Equal(t, HitExpired, events[0].Kind)
	assert.Empty(t, f.resolver.Projectiles())
}

func TestProjectileStopsAtBuilding(t *testing.T) {
	f := newFixture(t)
	c, _ := f.store.GetOrCreate(world.Key{X: 2, Z: 2})
	c.Buildings = []world.Building{{Center: mgl64.Vec3{250, 5, 250}, Size: mgl64.Vec3{10, 10, 10}}}

	now := time.Unix(1000, 0)
	f.resolver.Fire(mgl64.Vec3{243.5, 1, 250}, mgl64.Vec3{1, 0, 0}, now)
	events := f.resolver.Step(now, mgl64.Vec3{})
	require.Len(t, events, 1)
	assert.Equal(t, HitBuilding, events[0].Kind)
}

func TestBuildingShieldsBotBehindIt(t *testing.T) {
	f := newFixture(t)
	c, _ := f.store.GetOrCreate(world.Key{})
	c.Buildings = []world.Building{{Center: mgl64.Vec3{0, 5, 50}, Size: mgl64.Vec3{10, 10, 10}}}

	now := time.Unix(1000, 0)
	f.shootAtBot("me", now)
	events := f.resolver.Step(now, mgl64.Vec3{})
	require.Len(t, events, 1)
	assert.Equal(t, HitBuilding, events[0].Kind, "buildings are tested before bots")
	assert.Equal(t, config.MaxHealth, f.bot.Health)
}

func TestSetLocalIDRetagsPendingShots(t *testing.T) {
	store := world.NewStore(world.NewGenerator(1))
	index := collision.NewIndex(store)
	r := NewResolver(index, bots.NewController(store, index, bots.Options{}))

	p := r.Fire(mgl64.Vec3{}, mgl64.Vec3{0, 0, 1}, time.Now())
	remote := r.Add("peer", mgl64.Vec3{}, mgl64.Vec3{0, 0, 1}, time.Now())
	r.SetLocalID("me")
	assert.Equal(t, "me", p.OwnerID)
	assert.Equal(t, "peer", remote.OwnerID)
}

func TestRamIsSymmetricWithCooldown(t *testing.T) {
	f := newFixture(t)
	v := object.NewVehicle()
	v.Position = f.bot.Position.Add(mgl64.Vec3{0, 0, 1})
	now := time.Unix(1000, 0)

	require.True(t, f.resolver.Ram(v, now))
	assert.Equal(t, config.MaxHealth-config.RamDamage, v.Health)
	assert.Equal(t, config.MaxHealth-config.RamDamage, f.bot.Health)

	assert.False(t, f.resolver.Ram(v, now.Add(999*time.Millisecond)))
	assert.Equal(t, 500*time.Millisecond, f.resolver.RamCoolingDown(now.Add(500*time.Millisecond)))

	assert.True(t, f.resolver.Ram(v, now.Add(config.RamCooldown)))
	assert.Equal(t, config.MaxHealth-2*config.RamDamage, v.Health)
}

func TestRamMissesDistantBots(t *testing.T) {
	f := newFixture(t)
	v := object.NewVehicle()
	assert.False(t, f.resolver.Ram(v, time.Unix(1000, 0)))
	assert.Equal(t, config.MaxHealth, v.Health)
}

func TestWreckedVehicleDefeatsUntilReset(t *testing.T) {
	f := newFixture(t)
	v := object.NewVehicle()
	v.Position = f.bot.Position
	v.Health = config.RamDamage
	now := time.Unix(1000, 0)
	f.resolver.Fire(mgl64.Vec3{900, 0, 900}, mgl64.Vec3{1, 0, 0}, now)

	require.True(t, f.resolver.Ram(v, now))
	assert.Equal(t, 0, v.Health)
	assert.True(t, f.resolver.Defeated())
	assert.False(t, f.resolver.Ram(v, now.Add(time.Hour)), "no damage while defeated")

	f.resolver.Reset()
	assert.False(t, f.resolver.Defeated())
	assert.Empty(t, f.resolver.Projectiles())
	assert.Zero(t, f.resolver.Score())
	assert.Zero(t, f.resolver.RamCoolingDown(now))
}
