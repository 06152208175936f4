// Package input turns a raw terminal byte stream into held-key state.
//
// Terminals only report key presses (and auto-repeat), never releases, so a
// key counts as held for a short window after its last byte.
package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a key is considered held after its last press.
// It has to bridge the gap between terminal auto-repeat events.
const keyHoldDuration = 120 * time.Millisecond

// Keys is the held-key state for one frame.
type Keys struct {
	Quit     bool
	Throttle bool
	Reverse  bool
	Left     bool
	Right    bool
	Fire     bool
	Restart  bool
	Pressed  []byte // raw bytes received this frame
}

// Any reports whether any byte arrived this frame.
func (k Keys) Any() bool {
	return len(k.Pressed) > 0
}

// keyState tracks the last time each key was seen.
type keyState struct {
	quit     time.Time
	throttle time.Time
	reverse  time.Time
	left     time.Time
	right    time.Time
	fire     time.Time
	restart  time.Time
}

// Stream delivers input bytes via a channel and tracks key state so
// simultaneous keys (throttle while steering) are seen together.
type Stream struct {
	ch     chan byte
	state  keyState
	closed bool
}

// StartStream spawns a goroutine that reads from r until it fails.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		defer close(s.ch)
		for {
			b, err := r.ReadByte()
			if err != nil {
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Closed reports whether the underlying reader has ended.
func (s *Stream) Closed() bool {
	return s.closed
}

// Reset forgets every held key.
func (s *Stream) Reset() {
	s.state = keyState{}
}

// Read drains the available bytes without blocking and returns the keys
// held at now.
func (s *Stream) Read(now time.Time) Keys {
	var buf []byte
drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}
	return s.apply(buf, now)
}

// apply folds buf into the key state and builds the frame's Keys.
func (s *Stream) apply(buf []byte, now time.Time) Keys {
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		// CSI arrow keys: ESC [ A..D
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A':
				s.state.throttle = now
			case 'B':
				s.state.reverse = now
			case 'C':
				s.state.right = now
			case 'D':
				s.state.left = now
			}
			i += 2
			continue
		}
		s.state.press(b, now)
	}

	held := func(t time.Time) bool { return now.Sub(t) < keyHoldDuration }
	return Keys{
		Quit:     held(s.state.quit),
		Throttle: held(s.state.throttle),
		Reverse:  held(s.state.reverse),
		Left:     held(s.state.left),
		Right:    held(s.state.right),
		Fire:     held(s.state.fire),
		Restart:  held(s.state.restart),
		Pressed:  buf,
	}
}

func (k *keyState) press(b byte, now time.Time) {
	switch b {
	case 'q', 'Q', '\x03':
		k.quit = now
	case 'w', 'W', 'k', 'K':
		k.throttle = now
	case 's', 'S', 'j', 'J':
		k.reverse = now
	case 'a', 'A', 'h', 'H':
		k.left = now
	case 'd', 'D', 'l', 'L':
		k.right = now
	case ' ':
		k.fire = now
	case '\n', '\r', 'r', 'R':
		k.restart = now
	}
}
