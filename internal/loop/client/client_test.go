package client

import (
	"bytes"
	"errors"
	"io"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomz197/roadwar/internal/game"
	"github.com/tomz197/roadwar/internal/input"
	"github.com/tomz197/roadwar/internal/loop/config"
	"github.com/tomz197/roadwar/internal/protocol"
)

type fakeLink struct {
	sent     []protocol.ClientMessage
	incoming chan protocol.ServerMessage
	sendErr  error
}

func newFakeLink() *fakeLink {
	return &fakeLink{incoming: make(chan protocol.ServerMessage, 16)}
}

func (l *fakeLink) Send(msg protocol.ClientMessage) error {
	if l.sendErr != nil {
		return l.sendErr
	}
	l.sent = append(l.sent, msg)
	return nil
}

func (l *fakeLink) Incoming() <-chan protocol.ServerMessage { return l.incoming }
func (l *fakeLink) Close() error                            { return nil }

func newTestClient(t *testing.T, link Link) (*Client, *bytes.Buffer) {
	t.Helper()
	return newTestClientWithBots(t, link, -1)
}

func newTestClientWithBots(t *testing.T, link Link, bots int) (*Client, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	c := NewClient(link, nil, &out, Options{
		Name:         "me",
		Seed:         3,
		Bots:         bots,
		Rand:         rand.New(rand.NewPCG(1, 2)),
		TermSizeFunc: func() (int, int, error) { return 120, 40, nil },
		Logger:       log.New(io.Discard),
	})
	return c, &out
}

func TestFrameSendsStateUpdate(t *testing.T) {
	link := newFakeLink()
	c, _ := newTestClient(t, link)

	c.frame(input.Keys{Throttle: true, Pressed: []byte("w")}, time.Unix(1000, 0))
	require.Len(t, link.sent, 1)
	update, ok := link.sent[0].(protocol.Update)
	require.True(t, ok)
	assert.Greater(t, update.Position.Z, 0.0)
	assert.Equal(t, screenPlaying, c.state.screen)
}

func TestFrameAppliesRelayMessages(t *testing.T) {
	link := newFakeLink()
	c, out := newTestClient(t, link)
	now := time.Unix(1000, 0)

	link.incoming <- protocol.Joined{ID: "me-id", Players: []protocol.Player{{ID: "me-id", Name: "me"}}}
	link.incoming <- protocol.PlayerJoined{ID: "p2", Name: "rival"}
	link.incoming <- protocol.PlayerUpdate{ID: "p2", Position: protocol.Vec3{X: -5, Y: 0.5, Z: 5}, Score: 150}
	c.frame(input.Keys{}, now)

	assert.Equal(t, "me-id", c.Session().LocalID())
	rep, ok := c.Session().Replicas().Get("p2")
	require.True(t, ok)
	assert.Equal(t, 150, rep.Score)

	require.NoError(t, c.drawFrame(now))
	assert.Contains(t, out.String(), "rival")
	assert.Contains(t, out.String(), "online 2")
}

func TestClosedLinkShowsDisconnectThenStops(t *testing.T) {
	link := newFakeLink()
	c, out := newTestClient(t, link)
	now := time.Unix(1000, 0)

	close(link.incoming)
	c.frame(input.Keys{}, now)
	assert.Equal(t, screenDisconnected, c.state.screen)
	assert.True(t, c.state.Running)
	require.NoError(t, c.drawFrame(now))
	assert.Contains(t, out.String(), "RELAY CONNECTION LOST")

	c.frame(input.Keys{}, now.Add(config.DisconnectDisplay))
	assert.False(t, c.state.Running)
}

func TestSendFailureDisconnects(t *testing.T) {
	link := newFakeLink()
	link.sendErr = errors.New("queue full")
	c, _ := newTestClient(t, link)

	c.frame(input.Keys{}, time.Unix(1000, 0))
	assert.Equal(t, screenDisconnected, c.state.screen)
}

func TestQuitStopsClient(t *testing.T) {
	c, _ := newTestClient(t, newFakeLink())
	c.frame(input.Keys{Quit: true, Pressed: []byte("q")}, time.Unix(1000, 0))
	assert.False(t, c.state.Running)
}

func TestInactivityWarnsThenDisconnects(t *testing.T) {
	c, _ := newTestClient(t, newFakeLink())
	start := time.Unix(1000, 0)
	c.state.lastInput = start

	c.frame(input.Keys{}, start.Add((config.InactivityWarnUser+1)*time.Second))
	assert.True(t, c.state.isInactive)
	assert.True(t, c.state.Running)

	c.frame(input.Keys{Pressed: []byte("x")}, start.Add((config.InactivityWarnUser+2)*time.Second))
	assert.False(t, c.state.isInactive)

	c.frame(input.Keys{}, start.Add((config.InactivityWarnUser+config.InactivityDisconnectUser+3)*time.Second))
	assert.False(t, c.state.Running)
}

func TestDefeatedScreenAndRestart(t *testing.T) {
	c, out := newTestClientWithBots(t, newFakeLink(), 1)
	now := time.Unix(1000, 0)

	v := c.Session().Vehicle()
	v.Health = config.RamDamage
	bot := c.Session().Bots()[0]
	bot.Position = v.Position.Sub(mgl64.Vec3{0, 0, 1})
	bot.Speed = 0

	c.frame(input.Keys{}, now)
	require.Equal(t, game.StateDefeated, c.Session().State())
	assert.Equal(t, screenDefeated, c.state.screen)
	require.NoError(t, c.drawFrame(now))
	assert.Contains(t, out.String(), wreckedArt[0])

	c.frame(input.Keys{Restart: true, Pressed: []byte("\r")}, now.Add(time.Second))
	assert.Equal(t, screenPlaying, c.state.screen)
	assert.Equal(t, config.MaxHealth, c.Session().Health())
	assert.Empty(t, c.effects.Particles())
}
