package input

import (
	"bufio"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeysStayHeldBetweenRepeats(t *testing.T) {
	s := &Stream{}
	now := time.Unix(100, 0)

	k := s.apply([]byte("wa "), now)
	assert.True(t, k.Throttle)
	assert.True(t, k.Left)
	assert.True(t, k.Fire)
	assert.True(t, k.Any())

	k = s.apply(nil, now.Add(keyHoldDuration/2))
	assert.True(t, k.Throttle, "held until the next repeat")
	assert.False(t, k.Any())

	k = s.apply(nil, now.Add(keyHoldDuration))
	assert.False(t, k.Throttle)
	assert.False(t, k.Left)
}

func TestArrowKeys(t *testing.T) {
	s := &Stream{}
	now := time.Unix(100, 0)

	k := s.apply([]byte("\x1b[A\x1b[D"), now)
	assert.True(t, k.Throttle)
	assert.True(t, k.Left)
	assert.False(t, k.Quit, "escape prefix is not a key")

	k = s.apply([]byte("\x1b[B\x1b[C"), now)
	assert.True(t, k.Reverse)
	assert.True(t, k.Right)
}

func TestQuitAndRestart(t *testing.T) {
	s := &Stream{}
	now := time.Unix(100, 0)
	assert.True(t, s.apply([]byte{'\x03'}, now).Quit)
	assert.True(t, s.apply([]byte("\r"), now).Restart)

	s.Reset()
	assert.False(t, s.apply(nil, now).Quit)
}

func TestStreamReportsClosedReader(t *testing.T) {
	s := StartStream(bufio.NewReader(strings.NewReader("q")))

	var got []byte
	deadline := time.Now().Add(time.Second)
	for !s.Closed() && time.Now().Before(deadline) {
		got = append(got, s.Read(time.Now()).Pressed...)
		time.Sleep(time.Millisecond)
	}
	assert.True(t, s.Closed())
	assert.Equal(t, []byte("q"), got)
}
