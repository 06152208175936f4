package object

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tomz197/roadwar/internal/loop/config"
	"github.com/tomz197/roadwar/internal/physics"
)

// Bot is a scripted opponent vehicle.
type Bot struct {
	ID            int
	Position      mgl64.Vec3
	Heading       float64 // yaw, radians
	TargetHeading float64
	Speed         float64 // world units per tick
	Health        int
	Timer         int  // ticks since the last retarget
	Interval      int  // ticks between retargets
	Escaping      bool // turning away from a building that blocked it
	destroyed     bool
}

// NewBot creates a full-health bot at pos facing heading.
func NewBot(id int, pos mgl64.Vec3, heading float64, interval int) *Bot {
	return &Bot{
		ID:            id,
		Position:      pos,
		Heading:       heading,
		TargetHeading: heading,
		Speed:         config.BotSpeed,
		Health:        config.MaxHealth,
		Interval:      interval,
	}
}

// Candidate is the position one tick ahead along the current heading.
func (b *Bot) Candidate() mgl64.Vec3 {
	return b.Position.Add(physics.Forward(b.Heading).Mul(b.Speed))
}

// Footprint returns the half extents used for building collision.
func (b *Bot) Footprint() mgl64.Vec3 {
	return mgl64.Vec3{config.BotHalfExtent, config.BotHalfExtent, config.BotHalfExtent}
}

// Damage applies amount and returns the remaining health.
func (b *Bot) Damage(amount int) int {
	b.Health = applyDamage(b.Health, amount)
	return b.Health
}

// Alive reports whether the bot can still be hit.
func (b *Bot) Alive() bool {
	return !b.destroyed && b.Health > 0
}

// MarkDestroyed marks the bot for removal.
func (b *Bot) MarkDestroyed() {
	b.destroyed = true
}

// IsDestroyed returns true if the bot is marked for destruction.
func (b *Bot) IsDestroyed() bool {
	return b.destroyed
}
