package game

// State is the session's game phase.
type State int

const (
	StatePlaying  State = iota // driving, shooting, bots active
	StateDefeated              // vehicle wrecked, waiting for a restart
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StateDefeated:
		return "defeated"
	default:
		return "unknown"
	}
}

// Input is one tick of player intent.
type Input struct {
	Throttle bool
	Reverse  bool
	Left     bool
	Right    bool
	Fire     bool
	Restart  bool
}
