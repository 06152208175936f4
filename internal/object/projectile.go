package object

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tomz197/roadwar/internal/loop/config"
)

// Projectile is a bullet fired by a participant.
type Projectile struct {
	OwnerID   string     // participant that fired it, used for score attribution
	Position  mgl64.Vec3 // current position
	Direction mgl64.Vec3 // unit travel direction
	Created   time.Time
	destroyed bool
}

// NewProjectile creates a projectile at pos travelling along dir. The
// direction is normalised; a zero direction falls back to +Z.
func NewProjectile(ownerID string, pos, dir mgl64.Vec3, now time.Time) *Projectile {
	if dir.Len() == 0 {
		dir = mgl64.Vec3{0, 0, 1}
	} else {
		dir = dir.Normalize()
	}
	return &Projectile{
		OwnerID:   ownerID,
		Position:  pos,
		Direction: dir,
		Created:   now,
	}
}

// Advance moves the projectile one tick along its direction.
func (p *Projectile) Advance(speed float64) {
	p.Position = p.Position.Add(p.Direction.Mul(speed))
}

// Age returns how long the projectile has been alive at now.
func (p *Projectile) Age(now time.Time) time.Duration {
	return now.Sub(p.Created)
}

// Expired reports whether the projectile has reached its lifetime.
func (p *Projectile) Expired(now time.Time) bool {
	return p.Age(now) >= config.ProjectileLifetime
}

// MarkDestroyed marks the projectile for removal.
func (p *Projectile) MarkDestroyed() {
	p.destroyed = true
}

// IsDestroyed returns true if the projectile is marked for destruction.
func (p *Projectile) IsDestroyed() bool {
	return p.destroyed
}
