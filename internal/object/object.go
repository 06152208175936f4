// Package object holds the plain state records of the simulation: the
// player's vehicle, bots, projectiles and short-lived effect particles.
// Behavior that needs the world (collision, steering, damage resolution)
// lives in the packages that own those records.
package object

import "github.com/tomz197/roadwar/internal/loop/config"

// Destructible is implemented by objects that can be destroyed/marked for removal.
type Destructible interface {
	// MarkDestroyed marks the object for removal on next update cycle.
	MarkDestroyed()
	// IsDestroyed returns true if the object is marked for destruction.
	IsDestroyed() bool
}

var (
	_ Destructible = (*Projectile)(nil)
	_ Destructible = (*Bot)(nil)
	_ Releasable   = (*Particle)(nil)
)

// Releasable is implemented by pooled objects that can be returned to a pool.
type Releasable interface {
	// Release returns the object to its pool for reuse.
	Release()
}

// ReleaseObject releases an object back to its pool if it implements Releasable.
func ReleaseObject(obj any) {
	if r, ok := obj.(Releasable); ok {
		r.Release()
	}
}

// applyDamage subtracts amount from health, clamped to [0, MaxHealth].
func applyDamage(health, amount int) int {
	h := health - amount
	if h < 0 {
		return 0
	}
	if h > config.MaxHealth {
		return config.MaxHealth
	}
	return h
}

// ShouldRenderBlink returns true if an object with remaining protection/invincibility
// time should be rendered this frame (for blinking effect).
// Returns true always if remainingTime <= 0 (no protection).
func ShouldRenderBlink(remainingTime float64, frequency float64) bool {
	if remainingTime <= 0 {
		return true
	}
	phase := int(remainingTime * frequency)
	return phase%2 != 0
}
