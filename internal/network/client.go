package network

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/tomz197/roadwar/internal/loop/config"
	"github.com/tomz197/roadwar/internal/protocol"
)

// Client is a participant's connection to a remote relay.
type Client struct {
	conn     *wsConn
	incoming chan protocol.ServerMessage
	logger   *log.Logger
}

// Dial connects to the relay websocket at url (e.g. ws://host:3000/ws).
func Dial(ctx context.Context, url string, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Default().WithPrefix("ws")
	}
	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %s: %w", url, resp.Status, err)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Client{
		conn:     newWSConn(ws, config.OutboundQueueSize, logger),
		incoming: make(chan protocol.ServerMessage, config.OutboundQueueSize),
		logger:   logger,
	}
	go c.readLoop()
	return c, nil
}

// Send encodes msg and queues it for the relay.
func (c *Client) Send(msg protocol.ClientMessage) error {
	b, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	return c.conn.Send(b)
}

// Incoming delivers relay messages. It is closed when the connection ends.
func (c *Client) Incoming() <-chan protocol.ServerMessage {
	return c.incoming
}

// Close sends a close frame and shuts the connection down.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) readLoop() {
	defer close(c.incoming)
	defer c.conn.Close()
	for {
		kind, payload, err := c.conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("relay connection lost", "err", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		msg, err := protocol.DecodeServer(payload)
		if err != nil {
			if !errors.Is(err, protocol.ErrUnknownType) {
				c.logger.Warn("message dropped", "err", err)
			}
			continue
		}
		select {
		case c.incoming <- msg:
		case <-c.conn.done:
			return
		}
	}
}
