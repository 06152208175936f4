// Package config centralizes all tunable game parameters.
package config

import "time"

// World layout. Chunks are square, ChunkSize world units per side, keyed by
// floor(x/ChunkSize), floor(z/ChunkSize).
const (
	ChunkSize      = 100.0
	ViewRadius     = 2 // Chebyshev distance in chunks kept loaded around the viewer
	EvictionMargin = 1 // extra chunks of hysteresis before eviction
	DefaultSeed    = 1337
	RoadWidth      = 12.0
)

// Chunk content generation ranges.
const (
	MinBuildings      = 3
	MaxBuildings      = 7
	MinBuildingSize   = 8.0
	MaxBuildingSize   = 18.0
	MinBuildingHeight = 6.0
	MaxBuildingHeight = 30.0
	MaxFeatures       = 2
	MinFeatureHeight  = 4.0
	MaxFeatureHeight  = 20.0
	MinFeatureRadius  = 10.0
	MaxFeatureRadius  = 30.0
)

// Vehicle handling, per tick at ClientTickRate.
const (
	VehicleAcceleration      = 0.015
	VehicleMaxSpeed          = 0.8
	VehicleReverseFactor     = 0.7
	VehicleDeceleration      = 0.01
	VehicleSteerAcceleration = 0.003
	VehicleMaxSteer          = 0.1
	VehicleSteerDecay        = 0.95
	VehicleRideHeight        = 0.5
	VehicleHalfWidth         = 1.0
	VehicleHalfHeight        = 0.75
	VehicleHalfLength        = 2.0
)

// Combat.
const (
	ProjectileSpeed    = 2.0 // world units per tick
	ProjectileLifetime = 2000 * time.Millisecond
	ShootCooldown      = 250 * time.Millisecond
	BotHitRadius       = 2.5
	ProjectileDamage   = 34
	KillBonus          = 50
	RamDamage          = 10
	RamCooldown        = 1000 * time.Millisecond
	MaxHealth          = 100
)

// Bots.
const (
	BotCount            = 5
	BotSpeed            = 0.3
	BotMaxTurn          = 0.05 // radians per tick
	BotMinRetarget      = 60   // ticks
	BotMaxRetarget      = 180  // ticks
	BotEscapeJitter     = 0.5  // radians either side of the reverse heading
	BotSpawnMinDistance = 30.0
	BotSpawnMaxDistance = 80.0
	BotSpawnSeparation  = 20.0
	BotSpawnAttempts    = 10
	BotHalfExtent       = 1.0
	BotLeashDistance    = ViewRadius * ChunkSize // bots farther than this from the player are respawned near it
)

// Player
const (
	MaxUsernameLength = 16 // Maximum display length for player usernames
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTickRate        = 60
	ClientTargetFrameTime = time.Second / ClientTickRate
	ViewWidth             = 120 // logical viewport width in world units
	ViewHeight            = 80  // logical viewport height (sub-pixels)
	MaxTermWidth          = 160
	MaxTermHeight         = 50
	DamageBlinkFrequency  = 10.0 // blinks per second while the ram cooldown runs
	DisconnectDisplay     = 5 * time.Second
	RankingRows           = 5
)

// Relay
const (
	OutboundQueueSize = 64
	MaxMessageBytes   = 1 << 16
	DefaultMsgRate    = 120 // inbound messages per second per connection
	DefaultMsgBurst   = 240
	ShutdownTimeout   = 5 * time.Second
)
