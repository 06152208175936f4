package object

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tomz197/roadwar/internal/loop/config"
	"github.com/tomz197/roadwar/internal/physics"
)

// Spawn is where every vehicle starts and restarts.
var Spawn = mgl64.Vec3{0, config.VehicleRideHeight, 0}

// Control is one tick of driver input.
type Control struct {
	Throttle bool
	Reverse  bool
	Left     bool
	Right    bool
}

// Vehicle is the locally driven car. Speed and SteerRate carry momentum
// between ticks; Yaw 0 faces +Z.
type Vehicle struct {
	Position  mgl64.Vec3
	Yaw       float64
	Speed     float64 // world units per tick, negative when reversing
	SteerRate float64 // radians per tick
	Health    int
}

// NewVehicle creates a vehicle at rest at the spawn point with full health.
func NewVehicle() *Vehicle {
	return &Vehicle{Position: Spawn, Health: config.MaxHealth}
}

// Reset puts the vehicle back at spawn, facing +Z, at rest and fully healed.
func (v *Vehicle) Reset() {
	*v = Vehicle{Position: Spawn, Health: config.MaxHealth}
}

// Steer applies one tick of throttle and steering to speed and yaw. It does
// not move the vehicle; see Candidate and MoveTo.
func (v *Vehicle) Steer(ctl Control) {
	switch {
	case ctl.Throttle:
		v.Speed = math.Min(v.Speed+config.VehicleAcceleration, config.VehicleMaxSpeed)
	case ctl.Reverse:
		v.Speed = math.Max(v.Speed-config.VehicleAcceleration, -config.VehicleMaxSpeed*config.VehicleReverseFactor)
	default:
		v.Speed *= 1 - config.VehicleDeceleration
	}

	switch {
	case ctl.Left:
		v.SteerRate = math.Min(v.SteerRate+config.VehicleSteerAcceleration, config.VehicleMaxSteer)
	case ctl.Right:
		v.SteerRate = math.Max(v.SteerRate-config.VehicleSteerAcceleration, -config.VehicleMaxSteer)
	default:
		v.SteerRate *= config.VehicleSteerDecay
	}
	v.Yaw = physics.NormalizeAngle(v.Yaw + v.SteerRate)
}

// Candidate is the position the vehicle would reach this tick at its
// current speed and heading. Y is left for the caller to settle on terrain.
func (v *Vehicle) Candidate() mgl64.Vec3 {
	return v.Position.Add(physics.Forward(v.Yaw).Mul(v.Speed))
}

// MoveTo accepts a candidate position.
func (v *Vehicle) MoveTo(p mgl64.Vec3) {
	v.Position = p
}

// Stop kills forward momentum after a blocked move.
func (v *Vehicle) Stop() {
	v.Speed = 0
}

// Footprint returns the half extents of the vehicle's axis-aligned box at
// its current yaw.
func (v *Vehicle) Footprint() mgl64.Vec3 {
	size := mgl64.Vec3{2 * config.VehicleHalfWidth, 2 * config.VehicleHalfHeight, 2 * config.VehicleHalfLength}
	return physics.BoxFromTransform(mgl64.Vec3{}, size, v.Yaw).Max
}

// Rotation returns the Euler rotation sent over the wire. Only yaw is used.
func (v *Vehicle) Rotation() mgl64.Vec3 {
	return mgl64.Vec3{0, v.Yaw, 0}
}

// Heading returns the unit direction the vehicle faces.
func (v *Vehicle) Heading() mgl64.Vec3 {
	return physics.Forward(v.Yaw)
}

// Damage applies amount and returns the remaining health.
func (v *Vehicle) Damage(amount int) int {
	v.Health = applyDamage(v.Health, amount)
	return v.Health
}

// Wrecked reports whether the vehicle has no health left.
func (v *Vehicle) Wrecked() bool {
	return v.Health <= 0
}
