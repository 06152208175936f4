package server

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tomz197/roadwar/internal/loop/config"
	"github.com/tomz197/roadwar/internal/protocol"
)

// Conn is the relay's view of one participant connection.
type Conn interface {
	Send(b []byte) error
	Close() error
}

// spawn is where every participant is registered on join.
var spawn = mgl64.Vec3{0, config.VehicleRideHeight, 0}

// Participant is the relay's last-known record of one joined connection.
type Participant struct {
	ID       string
	Name     string
	Score    int
	Position mgl64.Vec3
	Rotation mgl64.Vec3
}

func (p *Participant) wire() protocol.Player {
	return protocol.Player{
		ID:       p.ID,
		Name:     p.Name,
		Score:    p.Score,
		Position: protocol.FromVec(p.Position),
		Rotation: protocol.FromVec(p.Rotation),
	}
}

// Registry is the relay state: open connections and the participants that
// have joined through them. It is not safe for concurrent use; Server owns
// it from a single goroutine.
type Registry struct {
	conns   map[string]Conn
	players map[string]*Participant
	order   []string // joined ids in join order
	newID   func() string
	logger  *log.Logger
}

// NewRegistry creates an empty registry. newID must return unique ids.
func NewRegistry(newID func() string, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		conns:   make(map[string]Conn),
		players: make(map[string]*Participant),
		newID:   newID,
		logger:  logger,
	}
}

// Connect records a new connection and returns its participant id. The
// connection receives broadcasts from now on but is not on the roster until
// it joins.
func (r *Registry) Connect(conn Conn) string {
	id := r.newID()
	r.conns[id] = conn
	r.logger.Debug("connected", "id", id)
	return id
}

// Handle applies one client message from connection id.
func (r *Registry) Handle(id string, msg protocol.ClientMessage) {
	if _, ok := r.conns[id]; !ok {
		r.logger.Debug("message from unknown connection", "id", id, "type", msg.MessageType())
		return
	}
	switch m := msg.(type) {
	case protocol.Join:
		r.join(id, m)
	case protocol.Update:
		r.update(id, m)
	case protocol.Shoot:
		r.shoot(id, m)
	default:
		r.logger.Warn("unhandled message", "id", id, "type", msg.MessageType())
	}
}

// Disconnect removes connection id and, if it had joined, tells everyone
// else that it left.
func (r *Registry) Disconnect(id string) {
	conn, ok := r.conns[id]
	if !ok {
		return
	}
	delete(r.conns, id)
	_ = conn.Close()

	if _, joined := r.players[id]; !joined {
		r.logger.Debug("disconnected before joining", "id", id)
		return
	}
	delete(r.players, id)
	r.order = slices.DeleteFunc(r.order, func(o string) bool { return o == id })
	r.logger.Info("participant left", "id", id, "remaining", len(r.players))
	r.broadcast(protocol.PlayerLeft{ID: id}, id)
}

// CloseAll closes every connection without broadcasting.
func (r *Registry) CloseAll() {
	for id, conn := range r.conns {
		_ = conn.Close()
		delete(r.conns, id)
	}
	clear(r.players)
	r.order = r.order[:0]
}

// Roster returns every joined participant in join order.
func (r *Registry) Roster() []protocol.Player {
	roster := make([]protocol.Player, 0, len(r.order))
	for _, id := range r.order {
		roster = append(roster, r.players[id].wire())
	}
	return roster
}

// Participant returns the record for id.
func (r *Registry) Participant(id string) (Participant, bool) {
	p, ok := r.players[id]
	if !ok {
		return Participant{}, false
	}
	return *p, true
}

// Players returns the number of joined participants.
func (r *Registry) Players() int {
	return len(r.players)
}

// Connections returns the number of open connections.
func (r *Registry) Connections() int {
	return len(r.conns)
}

func (r *Registry) join(id string, m protocol.Join) {
	name := cleanName(m.Name, id)
	if _, again := r.players[id]; !again {
		r.order = append(r.order, id)
	}
	r.players[id] = &Participant{ID: id, Name: name, Position: spawn}
	r.logger.Info("participant joined", "id", id, "name", name, "players", len(r.players))

	r.sendTo(id, protocol.Joined{ID: id, Players: r.Roster()})
	if _, ok := r.players[id]; !ok {
		// the reply failed and the participant was already dropped
		return
	}
	r.broadcast(protocol.PlayerJoined{ID: id, Name: name}, id)
}

func (r *Registry) update(id string, m protocol.Update) {
	p, ok := r.players[id]
	if !ok {
		r.logger.Debug("update before join dropped", "id", id)
		return
	}
	p.Position = m.Position.Vec()
	p.Rotation = m.Rotation.Vec()
	p.Score = m.Score
	r.broadcast(protocol.PlayerUpdate{
		ID:       id,
		Position: m.Position,
		Rotation: m.Rotation,
		Score:    m.Score,
	}, id)
}

func (r *Registry) shoot(id string, m protocol.Shoot) {
	if _, ok := r.players[id]; !ok {
		r.logger.Debug("shot before join dropped", "id", id)
		return
	}
	r.broadcast(protocol.PlayerShoot{
		ID:        id,
		Position:  m.Position,
		Direction: m.Direction,
	}, id)
}

// sendTo delivers msg to one connection, dropping it on failure.
func (r *Registry) sendTo(id string, msg protocol.ServerMessage) {
	b, err := protocol.Encode(msg)
	if err != nil {
		r.logger.Error("encode failed", "type", msg.MessageType(), "err", err)
		return
	}
	conn, ok := r.conns[id]
	if !ok {
		return
	}
	if err := conn.Send(b); err != nil {
		r.logger.Warn("send failed, dropping connection", "id", id, "err", err)
		r.Disconnect(id)
	}
}

// broadcast delivers msg to every connection except the one named by
// exclude. Connections whose send fails are disconnected after the loop.
func (r *Registry) broadcast(msg protocol.ServerMessage, exclude string) {
	b, err := protocol.Encode(msg)
	if err != nil {
		r.logger.Error("encode failed", "type", msg.MessageType(), "err", err)
		return
	}

	var failed []string
	for id, conn := range r.conns {
		if id == exclude {
			continue
		}
		if err := conn.Send(b); err != nil {
			r.logger.Warn("send failed, dropping connection", "id", id, "err", err)
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		r.Disconnect(id)
	}
}

// cleanName trims and shortens a display name, falling back to one derived
// from the participant id.
func cleanName(name, id string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > config.MaxUsernameLength {
		name = string([]rune(name)[:config.MaxUsernameLength])
	}
	if name == "" {
		short := id
		if len(short) > 4 {
			short = short[:4]
		}
		name = fmt.Sprintf("Player %s", short)
	}
	return name
}
