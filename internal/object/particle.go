package object

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// particlePool is a sync.Pool for reusing Particle objects to reduce allocations.
var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

// Particle is a short-lived visual effect on the ground plane. Particles are
// purely cosmetic and never take part in collision or combat.
type Particle struct {
	Position    mgl64.Vec3
	Velocity    mgl64.Vec3 // world units per second
	Lifetime    float64    // seconds remaining
	MaxLifetime float64
	Drag        float64 // velocity decay (1.0 = no drag)
	Symbol      rune
}

// NewParticle creates a single particle from the pool.
func NewParticle(pos, vel mgl64.Vec3, lifetime float64, symbol rune) *Particle {
	p := particlePool.Get().(*Particle)
	p.Position = pos
	p.Velocity = vel
	p.Lifetime = lifetime
	p.MaxLifetime = lifetime
	p.Drag = 0.95
	p.Symbol = symbol
	return p
}

// Release returns the particle to the pool for reuse.
func (p *Particle) Release() {
	particlePool.Put(p)
}

// Update advances the particle by dt seconds. It returns true once the
// particle has burned out.
func (p *Particle) Update(dt float64) bool {
	p.Lifetime -= dt
	if p.Lifetime <= 0 {
		return true
	}
	drag := math.Pow(p.Drag, dt*60) // normalized to ~60fps
	p.Velocity = p.Velocity.Mul(drag)
	p.Position = p.Position.Add(p.Velocity.Mul(dt))
	return false
}

// Faded reports whether the particle is in the last quarter of its life.
func (p *Particle) Faded() bool {
	return p.MaxLifetime > 0 && p.Lifetime/p.MaxLifetime < 0.25
}

// Effects owns the live particles of one client.
type Effects struct {
	particles []*Particle
}

var explosionSymbols = []rune{'#', '@', '*', '%', 'X', 'O', '+'}

// Explosion spawns count particles bursting outward from pos on the XZ plane.
func (e *Effects) Explosion(pos mgl64.Vec3, count int, speed, lifetime float64) {
	for range count {
		angle := rand.Float64() * 2 * math.Pi
		spd := speed * (0.5 + rand.Float64())
		life := lifetime * (0.5 + rand.Float64()*0.5)
		vel := mgl64.Vec3{math.Sin(angle) * spd, 0, math.Cos(angle) * spd}
		symbol := explosionSymbols[rand.IntN(len(explosionSymbols))]
		e.particles = append(e.particles, NewParticle(pos, vel, life, symbol))
	}
}

// Update advances every particle and drops the burned out ones.
func (e *Effects) Update(dt float64) {
	kept := e.particles[:0]
	for _, p := range e.particles {
		if p.Update(dt) {
			ReleaseObject(p)
			continue
		}
		kept = append(kept, p)
	}
	clear(e.particles[len(kept):])
	e.particles = kept
}

// Particles returns the live particles. The slice is only valid until the
// next Update.
func (e *Effects) Particles() []*Particle {
	return e.particles
}

// Clear releases every particle.
func (e *Effects) Clear() {
	for _, p := range e.particles {
		ReleaseObject(p)
	}
	clear(e.particles)
	e.particles = e.particles[:0]
}
