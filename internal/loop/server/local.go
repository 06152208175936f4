package server

import (
	"sync"

	"github.com/tomz197/roadwar/internal/protocol"
)

// LocalLink connects an in-process client (an SSH terminal session) to the
// relay without a network hop. The relay side sees a Conn whose sends are
// decoded into a bounded queue; the client side sends protocol messages and
// drains Incoming.
type LocalLink struct {
	relay    Relay
	id       string
	incoming chan protocol.ServerMessage

	mu     sync.Mutex
	closed bool
}

// DialLocal connects a new in-process participant to relay.
func DialLocal(relay Relay, queueSize int) (*LocalLink, error) {
	if queueSize <= 0 {
		queueSize = 64
	}
	l := &LocalLink{
		relay:    relay,
		incoming: make(chan protocol.ServerMessage, queueSize),
	}
	id, err := relay.Connect(localConn{l})
	if err != nil {
		return nil, err
	}
	l.id = id
	return l, nil
}

// ID returns the participant id assigned by the relay.
func (l *LocalLink) ID() string {
	return l.id
}

// Send encodes msg and hands it to the relay.
func (l *LocalLink) Send(msg protocol.ClientMessage) error {
	b, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	return l.relay.Receive(l.id, b)
}

// Incoming delivers relay messages. It is closed when the relay drops the
// connection.
func (l *LocalLink) Incoming() <-chan protocol.ServerMessage {
	return l.incoming
}

// Close leaves the relay.
func (l *LocalLink) Close() error {
	l.relay.Disconnect(l.id)
	return nil
}

// deliver is called from the relay goroutine.
func (l *LocalLink) deliver(b []byte) error {
	msg, err := protocol.DecodeServer(b)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	select {
	case l.incoming <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

func (l *LocalLink) shut() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.incoming)
}

// localConn is the relay-facing half of a LocalLink.
type localConn struct {
	link *LocalLink
}

func (c localConn) Send(b []byte) error { return c.link.deliver(b) }

func (c localConn) Close() error {
	c.link.shut()
	return nil
}
