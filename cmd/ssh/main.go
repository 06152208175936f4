package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/tomz197/roadwar/internal/config"
	"github.com/tomz197/roadwar/internal/draw"
	"github.com/tomz197/roadwar/internal/loop/client"
	gameconfig "github.com/tomz197/roadwar/internal/loop/config"
	"github.com/tomz197/roadwar/internal/loop/server"
	"github.com/tomz197/roadwar/internal/network"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultRelayHost   = "0.0.0.0"
	defaultRelayPort   = "8080"

	// SSH sessions drain their link once per frame, so the queue has to hold
	// a frame's worth of updates from every peer.
	sessionQueueSize = 4 * gameconfig.OutboundQueueSize
)

// The relay is shared by every SSH session and by websocket clients.
var (
	relay     *server.Server
	worldSeed uint64
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Warn("failed to load .env", "err", err)
	}
	config.SetupLogging()

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	relayAddr := net.JoinHostPort(
		config.GetEnv("RELAY_HOST", defaultRelayHost),
		config.GetEnv("RELAY_PORT", defaultRelayPort),
	)
	worldSeed = config.GetEnvUint64("WORLD_SEED", gameconfig.DefaultSeed)
	log.Info("ssh config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "relay", relayAddr, "seed", worldSeed)

	relay = server.NewServer(server.Options{Logger: log.Default().WithPrefix("relay")})
	ctx, cancelRelay := context.WithCancel(context.Background())
	defer cancelRelay()
	go relay.Run(ctx)

	handler := network.NewHandler(relay, network.HandlerOptions{
		MsgRate:  config.GetEnvFloat("RELAY_MSG_RATE", gameconfig.DefaultMsgRate),
		MsgBurst: config.GetEnvInt("RELAY_MSG_BURST", gameconfig.DefaultMsgBurst),
	})
	httpSrv := &http.Server{
		Addr:              relayAddr,
		Handler:           network.NewMux(handler, relay.Players),
		ReadHeaderTimeout: 10 * time.Second,
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			gameMiddleware,
			activeterm.Middleware(),
			logging.Middleware(),
		),
		// TCP_NODELAY keeps input latency low.
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		log.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	log.Info("starting ssh server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			log.Fatal("ssh server error", "err", err)
		}
	}()
	log.Info("starting relay", "addr", relayAddr)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("relay server error", "err", err)
		}
	}()

	<-done
	log.Info("shutting down", "players", relay.Players())

	// Closing every relay connection ends the SSH sessions' links, which
	// show the disconnect screen and exit on their own.
	relay.Shutdown(gameconfig.ShutdownTimeout)
	cancelRelay()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("relay shutdown error", "err", err)
	}
	if err := s.Shutdown(shutdownCtx); err != nil {
		log.Error("ssh shutdown error", "err", err)
	}
}

// gameMiddleware runs a terminal client for each SSH session.
func gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}
		logger := log.Default().WithPrefix("client").With("user", sess.User())
		logger.Info("new game session", "terminal", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)

		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		link, err := server.DialLocal(relay, sessionQueueSize)
		if err != nil {
			logger.Error("relay unavailable", "err", err)
			fmt.Fprintln(sess, "The game server is not accepting players right now.")
			return
		}
		defer link.Close()

		c := client.NewClient(link, bufio.NewReader(sess), sess, client.Options{
			Name:         sess.User(),
			Seed:         worldSeed,
			TermSizeFunc: sizeTracker.getSize,
			Logger:       logger,
		})
		if err := c.Run(sess.Context()); err != nil {
			logger.Error("game error", "err", err)
		}

		logger.Info("session ended")
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
