// Package protocol defines the relay wire format: flat JSON objects carrying
// a "type" discriminator, one message per websocket text frame.
//
// The message sets are closed. Client messages are Join, Update and Shoot;
// server messages are Joined, PlayerJoined, PlayerUpdate, PlayerShoot and
// PlayerLeft.
package protocol

import "github.com/go-gl/mathgl/mgl64"

// Message type discriminators.
const (
	TypeJoin   = "join"
	TypeUpdate = "update"
	TypeShoot  = "shoot"

	TypeJoined       = "joined"
	TypePlayerJoined = "playerJoined"
	TypePlayerUpdate = "playerUpdate"
	TypePlayerShoot  = "playerShoot"
	TypePlayerLeft   = "playerLeft"
)

// Vec3 is the wire form of a position, rotation or direction.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FromVec converts a math vector to its wire form.
func FromVec(v mgl64.Vec3) Vec3 {
	return Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// Vec converts back to a math vector.
func (v Vec3) Vec() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// Player is one roster entry as sent in Joined.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Position Vec3   `json:"position"`
	Rotation Vec3   `json:"rotation"`
}

// Message is any wire message.
type Message interface {
	MessageType() string
}

// ClientMessage is a message sent by a participant to the relay.
type ClientMessage interface {
	Message
	clientMessage()
}

// ServerMessage is a message sent by the relay to a participant.
type ServerMessage interface {
	Message
	serverMessage()
}

// Join asks the relay to register the connection under a display name.
type Join struct {
	Name string `json:"name"`
}

// Update reports the sender's latest accepted state.
type Update struct {
	Position Vec3 `json:"position"`
	Rotation Vec3 `json:"rotation"`
	Score    int  `json:"score"`
}

// Shoot reports a shot fired by the sender.
type Shoot struct {
	Position  Vec3 `json:"position"`
	Direction Vec3 `json:"direction"`
}

// Joined answers Join with the assigned id and the full roster, including
// the new participant.
type Joined struct {
	ID      string   `json:"id"`
	Players []Player `json:"players"`
}

// PlayerJoined announces a new participant to everyone else.
type PlayerJoined struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlayerUpdate relays an Update from participant ID.
type PlayerUpdate struct {
	ID       string `json:"id"`
	Position Vec3   `json:"position"`
	Rotation Vec3   `json:"rotation"`
	Score    int    `json:"score"`
}

// PlayerShoot relays a Shoot from participant ID.
type PlayerShoot struct {
	ID        string `json:"id"`
	Position  Vec3   `json:"position"`
	Direction Vec3   `json:"direction"`
}

// PlayerLeft announces that participant ID disconnected.
type PlayerLeft struct {
	ID string `json:"id"`
}

func (Join) MessageType() string   { return TypeJoin }
func (Update) MessageType() string { return TypeUpdate }
func (Shoot) MessageType() string  { return TypeShoot }

func (Joined) MessageType() string       { return TypeJoined }
func (PlayerJoined) MessageType() string { return TypePlayerJoined }
func (PlayerUpdate) MessageType() string { return TypePlayerUpdate }
func (PlayerShoot) MessageType() string  { return TypePlayerShoot }
func (PlayerLeft) MessageType() string   { return TypePlayerLeft }

func (Join) clientMessage()   {}
func (Update) clientMessage() {}
func (Shoot) clientMessage()  {}

func (Joined) serverMessage()       {}
func (PlayerJoined) serverMessage() {}
func (PlayerUpdate) serverMessage() {}
func (PlayerShoot) serverMessage()  {}
func (PlayerLeft) serverMessage()   {}
