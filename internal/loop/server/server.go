// Package server implements the relay: a registry of participants owned by
// a single event-loop goroutine, fed through an inbox channel by connection
// goroutines.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tomz197/roadwar/internal/protocol"
)

var (
	// ErrClosed is returned when the relay is no longer running.
	ErrClosed = errors.New("relay closed")
	// ErrQueueFull is returned by connections whose outbound queue is full.
	ErrQueueFull = errors.New("outbound queue full")
)

// Relay is the interface transports use to talk to the relay.
type Relay interface {
	Connect(conn Conn) (string, error)
	Receive(id string, payload []byte) error
	Disconnect(id string)
}

// Server owns the Registry and serializes every access to it.
type Server struct {
	registry *Registry
	inbox    chan any
	done     chan struct{}
	started  atomic.Bool
	players  atomic.Int64
	logger   *log.Logger
}

// Compile-time check that Server implements Relay.
var _ Relay = (*Server)(nil)

// Options configures a Server.
type Options struct {
	NewID     func() string // defaults to random UUIDs
	Logger    *log.Logger
	InboxSize int
}

type connectCmd struct {
	conn  Conn
	reply chan string
}

type messageCmd struct {
	id  string
	msg protocol.ClientMessage
}

type disconnectCmd struct {
	id string
}

type shutdownCmd struct{}

// NewServer creates a relay. Call Run to start processing.
func NewServer(opts Options) *Server {
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("relay")
	}
	size := opts.InboxSize
	if size <= 0 {
		size = 256
	}
	return &Server{
		registry: NewRegistry(newID, logger),
		inbox:    make(chan any, size),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Run processes relay events until the context is cancelled or Shutdown is
// called. It must be called exactly once.
func (s *Server) Run(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	defer close(s.done)
	defer s.registry.CloseAll()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.inbox:
			if !s.handle(cmd) {
				return
			}
		}
	}
}

// Done is closed once Run has returned.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// handle applies one command; it returns false when the loop should stop.
func (s *Server) handle(cmd any) bool {
	switch c := cmd.(type) {
	case connectCmd:
		c.reply <- s.registry.Connect(c.conn)
	case messageCmd:
		s.registry.Handle(c.id, c.msg)
	case disconnectCmd:
		s.registry.Disconnect(c.id)
	case shutdownCmd:
		s.logger.Info("shutting down", "connections", s.registry.Connections())
		return false
	}
	s.players.Store(int64(s.registry.Players()))
	return true
}

// Connect registers conn and returns its participant id.
func (s *Server) Connect(conn Conn) (string, error) {
	reply := make(chan string, 1)
	if err := s.enqueue(connectCmd{conn: conn, reply: reply}); err != nil {
		return "", err
	}
	select {
	case id := <-reply:
		return id, nil
	case <-s.done:
		return "", ErrClosed
	}
}

// Receive decodes one inbound frame from connection id and queues it.
// Malformed frames and unknown types are reported to the caller and never
// reach the registry; the connection stays open.
func (s *Server) Receive(id string, payload []byte) error {
	msg, err := protocol.DecodeClient(payload)
	if err != nil {
		return fmt.Errorf("connection %s: %w", id, err)
	}
	return s.enqueue(messageCmd{id: id, msg: msg})
}

// Disconnect removes connection id. Safe to call more than once.
func (s *Server) Disconnect(id string) {
	_ = s.enqueue(disconnectCmd{id: id})
}

// Players returns the number of joined participants as of the last event.
func (s *Server) Players() int {
	return int(s.players.Load())
}

// Shutdown stops the event loop and closes every connection, waiting up to
// timeout for the loop to finish.
func (s *Server) Shutdown(timeout time.Duration) {
	deadline := time.After(timeout)
	select {
	case s.inbox <- shutdownCmd{}:
	case <-s.done:
		return
	case <-deadline:
		s.logger.Warn("shutdown timed out queueing")
		return
	}
	select {
	case <-s.done:
	case <-deadline:
		s.logger.Warn("shutdown timed out")
	}
}

func (s *Server) enqueue(cmd any) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.inbox <- cmd:
		return nil
	case <-s.done:
		return ErrClosed
	}
}
