package network

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/tomz197/roadwar/internal/loop/config"
	"github.com/tomz197/roadwar/internal/loop/server"
	"github.com/tomz197/roadwar/internal/protocol"
	"golang.org/x/time/rate"
)

const maxMessageBytes = config.MaxMessageBytes

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	MsgRate   float64 // inbound messages per second per connection
	MsgBurst  int
	QueueSize int // outbound frames buffered per connection
	Logger    *log.Logger
}

// Handler upgrades HTTP requests to websockets and attaches each one to the
// relay as a participant connection.
type Handler struct {
	relay    server.Relay
	upgrader websocket.Upgrader
	limit    rate.Limit
	burst    int
	queue    int
	logger   *log.Logger
}

// NewHandler creates a websocket handler feeding relay.
func NewHandler(relay server.Relay, opts HandlerOptions) *Handler {
	if opts.MsgRate <= 0 {
		opts.MsgRate = config.DefaultMsgRate
	}
	if opts.MsgBurst <= 0 {
		opts.MsgBurst = config.DefaultMsgBurst
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = config.OutboundQueueSize
	}
	if opts.Logger == nil {
		opts.Logger = log.Default().WithPrefix("ws")
	}
	return &Handler{
		relay: relay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browsers load the game from the static host, which may differ
			// from the relay origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		limit:  rate.Limit(opts.MsgRate),
		burst:  opts.MsgBurst,
		queue:  opts.QueueSize,
		logger: opts.Logger,
	}
}

// ServeHTTP upgrades the request and runs the connection's read loop until
// the peer goes away.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	conn := newWSConn(ws, h.queue, h.logger)
	id, err := h.relay.Connect(conn)
	if err != nil {
		h.logger.Warn("relay refused connection", "remote", r.RemoteAddr, "err", err)
		conn.Close()
		return
	}
	h.logger.Debug("connection open", "id", id, "remote", r.RemoteAddr)

	h.readLoop(id, ws)

	h.relay.Disconnect(id)
	conn.Close()
	h.logger.Debug("connection closed", "id", id)
}

func (h *Handler) readLoop(id string, ws *websocket.Conn) {
	limiter := rate.NewLimiter(h.limit, h.burst)
	for {
		kind, payload, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("read failed", "id", id, "err", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		if !limiter.Allow() {
			h.logger.Warn("rate limited, message dropped", "id", id)
			continue
		}
		err = h.relay.Receive(id, payload)
		switch {
		case err == nil:
		case errors.Is(err, server.ErrClosed):
			return
		case errors.Is(err, protocol.ErrUnknownType):
			h.logger.Debug("unknown message ignored", "id", id, "err", err)
		default:
			h.logger.Warn("message dropped", "id", id, "err", err)
		}
	}
}

// NewMux mounts the websocket endpoint at /ws and a liveness probe at
// /healthz reporting the joined participant count.
func NewMux(h *Handler, players func() int) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "ok %d\n", players())
	})
	return mux
}
