// Package network carries relay messages over websockets: the relay-side
// HTTP handler and the participant-side dialer.
package network

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/tomz197/roadwar/internal/loop/server"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
)

// wsConn owns one websocket. All writes go through a single writer
// goroutine draining a bounded queue, as gorilla allows only one concurrent
// writer.
type wsConn struct {
	ws     *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger *log.Logger
}

func newWSConn(ws *websocket.Conn, queue int, logger *log.Logger) *wsConn {
	c := &wsConn{
		ws:     ws,
		send:   make(chan []byte, queue),
		done:   make(chan struct{}),
		logger: logger,
	}
	ws.SetReadLimit(maxMessageBytes)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	go c.writePump()
	return c
}

// Send queues one text frame. It never blocks: a full queue means the peer
// is not keeping up and the caller should drop it.
func (c *wsConn) Send(b []byte) error {
	select {
	case <-c.done:
		return server.ErrClosed
	default:
	}
	select {
	case c.send <- b:
		return nil
	default:
		return server.ErrQueueFull
	}
}

// Close stops the writer, which sends a close frame and closes the socket.
func (c *wsConn) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case b := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, b); err != nil {
				c.logger.Debug("write failed", "err", err)
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			c.flush()
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// flush writes whatever is already queued before the close frame.
func (c *wsConn) flush() {
	for {
		select {
		case b := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		default:
			return
		}
	}
}
