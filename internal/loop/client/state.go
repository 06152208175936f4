package client

import (
	"time"

	"github.com/tomz197/roadwar/internal/input"
)

// screen is what the client is currently showing.
type screen int

const (
	screenPlaying      screen = iota // driving
	screenDefeated                   // vehicle wrecked, waiting for restart
	screenDisconnected               // relay link lost
)

// ClientState holds the per-connection presentation state. The simulation
// itself lives in the game session.
type ClientState struct {
	Keys           input.Keys
	Running        bool
	screen         screen
	prevScreen     screen
	isInactive     bool
	wasInactive    bool
	lastInput      time.Time
	lastFrame      time.Time
	delta          time.Duration
	disconnectedAt time.Time
}

// NewClientState creates a running state with activity counted from now.
func NewClientState(now time.Time) *ClientState {
	return &ClientState{Running: true, lastInput: now}
}
