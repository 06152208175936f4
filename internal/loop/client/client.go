// Package client runs one terminal participant: it samples keys, drives a
// game session, exchanges messages with the relay over a Link and renders a
// top-down view.
package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/roadwar/internal/combat"
	"github.com/tomz197/roadwar/internal/draw"
	"github.com/tomz197/roadwar/internal/game"
	"github.com/tomz197/roadwar/internal/input"
	"github.com/tomz197/roadwar/internal/loop/config"
	"github.com/tomz197/roadwar/internal/object"
	"github.com/tomz197/roadwar/internal/protocol"
)

// Link is the client's connection to a relay. Both the websocket client and
// the in-process link satisfy it.
type Link interface {
	Send(msg protocol.ClientMessage) error
	Incoming() <-chan protocol.ServerMessage
	Close() error
}

// Client handles rendering and input for a single participant.
type Client struct {
	link         Link
	session      *game.Session
	state        *ClientState
	effects      object.Effects
	scenery      *scenery
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter
	writer       io.Writer
	inputStream  *input.Stream
	termSizeFunc draw.TermSizeFunc
	logger       *log.Logger
}

// Options configures the client.
type Options struct {
	Name         string
	Seed         uint64
	Bots         int
	Rand         *rand.Rand // bot randomness, time seeded when nil
	TermSizeFunc draw.TermSizeFunc
	Logger       *log.Logger
}

// NewClient creates a client speaking over link, reading keys from r and
// drawing to w.
func NewClient(link Link, r *bufio.Reader, w io.Writer, opts Options) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("client")
	}

	termWidth, termHeight, _ := termSizeFunc()
	width, height, offsetCol, offsetRow := draw.FitArea(termWidth, termHeight, config.MaxTermWidth, config.MaxTermHeight)
	canvas := draw.NewScaledCanvas(width, height, config.ViewWidth, config.ViewHeight)
	canvas.SetOffset(offsetCol, offsetRow)

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	scenery := newScenery()
	session := game.NewSession(game.Options{
		Name:     opts.Name,
		Seed:     opts.Seed,
		Bots:     opts.Bots,
		Rand:     rng,
		Listener: scenery,
		Logger:   logger,
	})

	c := &Client{
		link:         link,
		session:      session,
		scenery:      scenery,
		state:        NewClientState(time.Now()),
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		writer:       w,
		termSizeFunc: termSizeFunc,
		logger:       logger,
	}
	if r != nil {
		c.inputStream = input.StartStream(r)
	}
	return c
}

// Session exposes the simulation for inspection.
func (c *Client) Session() *game.Session {
	return c.session
}

// Run joins the relay and runs the frame loop until the player quits, the
// input ends, the relay link is lost or ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)

	if err := c.link.Send(c.session.Join()); err != nil {
		return fmt.Errorf("join relay: %w", err)
	}

	for c.state.Running && ctx.Err() == nil {
		frameStart := time.Now()

		var keys input.Keys
		if c.inputStream != nil {
			keys = c.inputStream.Read(frameStart)
			if c.inputStream.Closed() {
				break
			}
		}
		c.frame(keys, frameStart)
		c.updateScreen()
		if err := c.drawFrame(frameStart); err != nil {
			return err
		}

		if elapsed := time.Since(frameStart); elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	c.effects.Clear()
	draw.ClearScreen(c.writer)
	return nil
}

// frame runs one client tick: activity tracking, inbound messages, the
// session step and the outbound flush.
func (c *Client) frame(keys input.Keys, now time.Time) {
	if !c.state.lastFrame.IsZero() {
		c.state.delta = now.Sub(c.state.lastFrame)
	}
	c.state.lastFrame = now
	c.state.Keys = keys
	c.trackActivity(keys, now)
	if keys.Quit {
		c.state.Running = false
		return
	}

	c.drainIncoming(now)
	if c.state.screen == screenDisconnected {
		if now.Sub(c.state.disconnectedAt) >= config.DisconnectDisplay {
			c.state.Running = false
		}
		return
	}

	wasDefeated := c.session.State() == game.StateDefeated
	tick := c.session.Step(game.Input{
		Throttle: keys.Throttle,
		Reverse:  keys.Reverse,
		Left:     keys.Left,
		Right:    keys.Right,
		Fire:     keys.Fire,
		Restart:  keys.Restart,
	}, now)
	if wasDefeated && c.session.State() == game.StatePlaying {
		c.effects.Clear()
		if c.inputStream != nil {
			c.inputStream.Reset()
		}
	}

	c.spawnEffects(tick)
	c.effects.Update(c.state.delta.Seconds())

	for _, msg := range tick.Outbound {
		if err := c.link.Send(msg); err != nil {
			c.logger.Warn("send failed", "type", msg.MessageType(), "err", err)
			c.disconnect(now)
			return
		}
	}

	if c.session.State() == game.StateDefeated {
		c.state.screen = screenDefeated
	} else {
		c.state.screen = screenPlaying
	}
}

func (c *Client) trackActivity(keys input.Keys, now time.Time) {
	idle := now.Sub(c.state.lastInput).Seconds()
	switch {
	case keys.Any():
		c.state.lastInput = now
		c.state.isInactive = false
	case idle > config.InactivityDisconnectUser:
		c.logger.Info("disconnecting inactive player", "name", c.session.Name())
		c.state.Running = false
	case idle > config.InactivityWarnUser:
		c.state.isInactive = true
	}
}

// drainIncoming applies every queued relay message without blocking.
func (c *Client) drainIncoming(now time.Time) {
	for {
		select {
		case msg, ok := <-c.link.Incoming():
			if !ok {
				c.disconnect(now)
				return
			}
			c.session.Apply(msg, now)
		default:
			return
		}
	}
}

func (c *Client) disconnect(now time.Time) {
	if c.state.screen == screenDisconnected {
		return
	}
	c.logger.Warn("relay link lost", "name", c.session.Name())
	c.state.screen = screenDisconnected
	c.state.disconnectedAt = now
}

func (c *Client) spawnEffects(tick game.Tick) {
	for _, ev := range tick.Events {
		switch {
		case ev.Killed:
			c.effects.Explosion(ev.Position, 24, 15, 0.8)
		case ev.Kind == combat.HitBot, ev.Kind == combat.HitBuilding:
			c.effects.Explosion(ev.Position, 4, 6, 0.3)
		}
	}
	if tick.Rammed {
		c.effects.Explosion(c.session.Vehicle().Position, 10, 8, 0.5)
	}
}

// updateScreen follows terminal resizes, clamping to the max render area.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	width, height, offsetCol, offsetRow := draw.FitArea(termWidth, termHeight, config.MaxTermWidth, config.MaxTermHeight)

	if width != c.canvas.TerminalWidth() || height != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
	}
	c.canvas.Resize(width, height)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}
