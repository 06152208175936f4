// Package combat owns projectiles and resolves hits, damage, kills, score and
// vehicle-versus-bot ramming for one client.
package combat

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tomz197/roadwar/internal/bots"
	"github.com/tomz197/roadwar/internal/collision"
	"github.com/tomz197/roadwar/internal/loop/config"
	"github.com/tomz197/roadwar/internal/object"
	"github.com/tomz197/roadwar/internal/physics"
)

// HitKind classifies how a projectile ended.
type HitKind int

const (
	HitNone HitKind = iota
	HitExpired
	HitBuilding
	HitBot
)

// Event describes one projectile outcome or kill during a Step.
type Event struct {
	Kind     HitKind
	OwnerID  string
	Position mgl64.Vec3
	BotID    int  // set for HitBot
	Killed   bool // the bot's health reached zero
	Awarded  int  // score added to the local participant
}

// Resolver owns the live projectiles of one client, its score and the
// ramming cooldown.
type Resolver struct {
	index       *collision.Index
	bots        *bots.Controller
	localID     string
	projectiles []*object.Projectile
	score       int
	lastRam     time.Time
	defeated    bool
}

// NewResolver creates a resolver testing against index and the bots of controller.
func NewResolver(index *collision.Index, controller *bots.Controller) *Resolver {
	return &Resolver{index: index, bots: controller}
}

// SetLocalID records the local participant id. Projectiles already fired
// locally are re-tagged so their kills still count.
func (r *Resolver) SetLocalID(id string) {
	for _, p := range r.projectiles {
		if p.OwnerID == r.localID {
			p.OwnerID = id
		}
	}
	r.localID = id
}

// LocalID returns the local participant id, empty before joining.
func (r *Resolver) LocalID() string {
	return r.localID
}

// Fire spawns a projectile owned by the local participant.
func (r *Resolver) Fire(pos, dir mgl64.Vec3, now time.Time) *object.Projectile {
	return r.Add(r.localID, pos, dir, now)
}

// Add spawns a projectile owned by ownerID, e.g. one relayed from a peer.
func (r *Resolver) Add(ownerID string, pos, dir mgl64.Vec3, now time.Time) *object.Projectile {
	p := object.NewProjectile(ownerID, pos, dir, now)
	r.projectiles = append(r.projectiles, p)
	return p
}

// Projectiles returns the live projectiles. The slice is owned by the resolver.
func (r *Resolver) Projectiles() []*object.Projectile {
	return r.projectiles
}

// Score returns the local participant's score.
func (r *Resolver) Score() int {
	return r.score
}

// Defeated reports whether the local vehicle has been wrecked.
func (r *Resolver) Defeated() bool {
	return r.defeated
}

// Step advances every projectile by one tick and resolves its outcome.
// player is where replacement bots spawn around.
func (r *Resolver) Step(now time.Time, player mgl64.Vec3) []Event {
	var events []Event
	for _, p := range r.projectiles {
		if p.IsDestroyed() {
			continue
		}
		if ev := r.resolve(p, now, player); ev.Kind != HitNone {
			p.MarkDestroyed()
			events = append(events, ev)
		}
	}
	r.compact()
	return events
}

// resolve runs the projectile state machine for one tick. The first match
// wins: expiry, then buildings, then bots.
func (r *Resolver) resolve(p *object.Projectile, now time.Time, player mgl64.Vec3) Event {
	p.Advance(config.ProjectileSpeed)
	ev := Event{OwnerID: p.OwnerID, Position: p.Position}

	if p.Expired(now) {
		ev.Kind = HitExpired
		return ev
	}
	if r.index.HitsBuilding(p.Position) {
		ev.Kind = HitBuilding
		return ev
	}

	radius2 := config.BotHitRadius * config.BotHitRadius
	for _, b := range r.bots.Bots() {
		if !b.Alive() || physics.PlanarDistanceSquared(p.Position, b.Position) > radius2 {
			continue
		}
		ev.Kind = HitBot
		ev.BotID = b.ID
		if b.Damage(config.ProjectileDamage) <= 0 {
			ev.Killed = true
			if p.OwnerID == r.localID {
				r.score += config.KillBonus
				ev.Awarded = config.KillBonus
			}
			r.bots.Respawn(b, player)
		}
		return ev
	}
	return ev
}

// Ram applies collision damage between the vehicle and any bot it overlaps.
// Damage is symmetric and gated by a single cooldown. It reports whether
// damage was applied.
func (r *Resolver) Ram(v *object.Vehicle, now time.Time) bool {
	if r.defeated {
		return false
	}
	if !r.lastRam.IsZero() && now.Sub(r.lastRam) < config.RamCooldown {
		return false
	}
	box := physics.BoxAround(v.Position, v.Footprint())
	for _, b := range r.bots.Bots() {
		if !b.Alive() || !box.Intersects(physics.BoxAround(b.Position, b.Footprint())) {
			continue
		}
		r.lastRam = now
		v.Damage(config.RamDamage)
		if b.Damage(config.RamDamage) <= 0 {
			r.bots.Respawn(b, v.Position)
		}
		if v.Wrecked() {
			r.defeated = true
		}
		return true
	}
	return false
}

// RamCoolingDown reports how much of the ram cooldown remains at now.
func (r *Resolver) RamCoolingDown(now time.Time) time.Duration {
	if r.lastRam.IsZero() {
		return 0
	}
	return max(0, config.RamCooldown-now.Sub(r.lastRam))
}

// Reset clears projectiles, score, cooldown and the defeated state.
func (r *Resolver) Reset() {
	clear(r.projectiles)
	r.projectiles = r.projectiles[:0]
	r.score = 0
	r.lastRam = time.Time{}
	r.defeated = false
}

func (r *Resolver) compact() {
	kept := r.projectiles[:0]
	for _, p := range r.projectiles {
		if !p.IsDestroyed() {
			kept = append(kept, p)
		}
	}
	clear(r.projectiles[len(kept):])
	r.projectiles = kept
}
