// Package game runs one participant's simulation: the local vehicle, the
// streamed world around it, bots, projectiles and the replicas of remote
// participants. A Session is driven one tick at a time from a single
// goroutine and never touches the network itself; it produces outbound
// messages and consumes inbound ones.
package game

import (
	"math/rand/v2"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/roadwar/internal/bots"
	"github.com/tomz197/roadwar/internal/collision"
	"github.com/tomz197/roadwar/internal/combat"
	"github.com/tomz197/roadwar/internal/loop/config"
	"github.com/tomz197/roadwar/internal/object"
	"github.com/tomz197/roadwar/internal/protocol"
	"github.com/tomz197/roadwar/internal/world"
)

// Options configures a Session.
type Options struct {
	Name     string
	Seed     uint64         // world seed, defaults to config.DefaultSeed
	Bots     int            // 0 means config.BotCount, negative disables bots
	Rand     *rand.Rand     // bot randomness
	Listener world.Listener // chunk lifecycle hook for renderers
	Logger   *log.Logger
}

// Tick is the outcome of one Step.
type Tick struct {
	Outbound []protocol.ClientMessage
	Events   []combat.Event
	Rammed   bool
}

// Session is the client-side core.
type Session struct {
	name     string
	store    *world.Store
	streamer *world.Streamer
	index    *collision.Index
	bots     *bots.Controller
	combat   *combat.Resolver
	vehicle  *object.Vehicle
	replicas *Replicas
	state    State
	lastShot time.Time
	logger   *log.Logger
}

// NewSession generates the world around the spawn point and spawns bots.
func NewSession(opts Options) *Session {
	seed := opts.Seed
	if seed == 0 {
		seed = config.DefaultSeed
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("game")
	}

	store := world.NewStore(world.NewGenerator(seed))
	streamer := world.NewStreamer(store, config.ViewRadius, config.EvictionMargin)
	if opts.Listener != nil {
		streamer.SetListener(opts.Listener)
	}
	index := collision.NewIndex(store)
	ctl := bots.NewController(store, index, bots.Options{Count: opts.Bots, Rand: opts.Rand, Logger: logger})

	s := &Session{
		name:     opts.Name,
		store:    store,
		streamer: streamer,
		index:    index,
		bots:     ctl,
		combat:   combat.NewResolver(index, ctl),
		vehicle:  object.NewVehicle(),
		replicas: NewReplicas(),
		logger:   logger,
	}
	s.streamer.Track(s.vehicle.Position)
	s.bots.Reset(s.vehicle.Position)
	return s
}

// Join returns the message that registers this session with the relay.
func (s *Session) Join() protocol.Join {
	return protocol.Join{Name: s.name}
}

// Step runs one tick: input, bots and projectiles, movement against
// buildings, ramming, then the outbound state update. While defeated only
// Restart is honored.
func (s *Session) Step(in Input, now time.Time) Tick {
	var tick Tick
	if s.state == StateDefeated {
		if in.Restart {
			s.Reset()
		}
		return tick
	}

	s.vehicle.Steer(object.Control{
		Throttle: in.Throttle,
		Reverse:  in.Reverse,
		Left:     in.Left,
		Right:    in.Right,
	})
	if in.Fire && now.Sub(s.lastShot) >= config.ShootCooldown {
		s.lastShot = now
		pos, dir := s.vehicle.Position, s.vehicle.Heading()
		s.combat.Fire(pos, dir, now)
		tick.Outbound = append(tick.Outbound, protocol.Shoot{
			Position:  protocol.FromVec(pos),
			Direction: protocol.FromVec(dir),
		})
	}

	s.bots.Step()
	tick.Events = s.combat.Step(now, s.vehicle.Position)

	s.drive()
	s.streamer.Track(s.vehicle.Position)
	s.bots.Recall(s.vehicle.Position, config.BotLeashDistance)

	tick.Rammed = s.combat.Ram(s.vehicle, now)
	if s.combat.Defeated() {
		s.state = StateDefeated
		s.logger.Info("vehicle wrecked", "score", s.combat.Score())
	}

	tick.Outbound = append(tick.Outbound, s.update())
	return tick
}

// drive moves the vehicle to its candidate position unless a building is
// in the way, in which case it stops in place.
func (s *Session) drive() {
	candidate := s.vehicle.Candidate()
	candidate[1] = s.store.HeightAt(candidate) + config.VehicleRideHeight
	if s.index.Blocked(candidate, s.vehicle.Footprint()) {
		s.vehicle.Stop()
		return
	}
	s.vehicle.MoveTo(candidate)
}

func (s *Session) update() protocol.Update {
	return protocol.Update{
		Position: protocol.FromVec(s.vehicle.Position),
		Rotation: protocol.FromVec(s.vehicle.Rotation()),
		Score:    s.combat.Score(),
	}
}

// Apply consumes one relay message. Messages about the local participant
// are ignored.
func (s *Session) Apply(msg protocol.ServerMessage, now time.Time) {
	switch m := msg.(type) {
	case protocol.Joined:
		s.combat.SetLocalID(m.ID)
		s.replicas.Load(m.Players, m.ID)
		s.logger.Info("joined relay", "id", m.ID, "peers", s.replicas.Len())
	case protocol.PlayerJoined:
		if s.isSelf(m.ID) {
			return
		}
		s.replicas.Add(m.ID, m.Name)
	case protocol.PlayerUpdate:
		if s.isSelf(m.ID) {
			return
		}
		if !s.replicas.Update(m) {
			s.logger.Debug("update for unknown participant", "id", m.ID)
		}
	case protocol.PlayerShoot:
		if s.isSelf(m.ID) {
			return
		}
		s.combat.Add(m.ID, m.Position.Vec(), m.Direction.Vec(), now)
	case protocol.PlayerLeft:
		if s.isSelf(m.ID) {
			return
		}
		s.replicas.Remove(m.ID)
	}
}

func (s *Session) isSelf(id string) bool {
	return id != "" && id == s.combat.LocalID()
}

// Reset restores every piece of core state after a defeat: projectiles
// cleared, bots respawned, score and health reset, vehicle back at spawn.
func (s *Session) Reset() {
	s.vehicle.Reset()
	s.combat.Reset()
	s.streamer.Reset()
	s.streamer.Track(s.vehicle.Position)
	s.bots.Reset(s.vehicle.Position)
	s.lastShot = time.Time{}
	s.state = StatePlaying
}

// Standing is one row of the ranking.
type Standing struct {
	ID    string
	Name  string
	Score int
	Local bool
}

// Ranking lists the local participant and every replica by score, highest
// first, ties broken by name.
func (s *Session) Ranking() []Standing {
	out := []Standing{{ID: s.combat.LocalID(), Name: s.name, Score: s.combat.Score(), Local: true}}
	for _, rep := range s.replicas.All() {
		out = append(out, Standing{ID: rep.ID, Name: rep.Name, Score: rep.Score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// State returns the current game phase.
func (s *Session) State() State { return s.state }

// Vehicle returns the local vehicle.
func (s *Session) Vehicle() *object.Vehicle { return s.vehicle }

// Bots returns the live bots.
func (s *Session) Bots() []*object.Bot { return s.bots.Bots() }

// Projectiles returns the live projectiles.
func (s *Session) Projectiles() []*object.Projectile { return s.combat.Projectiles() }

// Replicas returns the remote participants.
func (s *Session) Replicas() *Replicas { return s.replicas }

// Store returns the loaded chunks.
func (s *Session) Store() *world.Store { return s.store }

// Score returns the local score.
func (s *Session) Score() int { return s.combat.Score() }

// Health returns the local vehicle's health.
func (s *Session) Health() int { return s.vehicle.Health }

// Speed returns the vehicle's current speed in world units per tick.
func (s *Session) Speed() float64 { return s.vehicle.Speed }

// RamCooldown returns how long until ramming can deal damage again.
func (s *Session) RamCooldown(now time.Time) time.Duration { return s.combat.RamCoolingDown(now) }

// LocalID returns the id assigned by the relay, empty before joining.
func (s *Session) LocalID() string { return s.combat.LocalID() }

// Name returns the display name.
func (s *Session) Name() string { return s.name }
