package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/roadwar/internal/config"
	gameconfig "github.com/tomz197/roadwar/internal/loop/config"
	"github.com/tomz197/roadwar/internal/loop/server"
	"github.com/tomz197/roadwar/internal/network"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Warn("failed to load .env", "err", err)
	}
	config.SetupLogging()

	host := config.GetEnv("RELAY_HOST", defaultHost)
	port := config.GetEnv("RELAY_PORT", defaultPort)
	addr := net.JoinHostPort(host, port)

	relay := server.NewServer(server.Options{Logger: log.Default().WithPrefix("relay")})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go relay.Run(ctx)

	handler := network.NewHandler(relay, network.HandlerOptions{
		MsgRate:  config.GetEnvFloat("RELAY_MSG_RATE", gameconfig.DefaultMsgRate),
		MsgBurst: config.GetEnvInt("RELAY_MSG_BURST", gameconfig.DefaultMsgBurst),
	})
	srv := &http.Server{
		Addr:              addr,
		Handler:           network.NewMux(handler, relay.Players),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	log.Info("starting relay", "addr", addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", "err", err)
		}
	}()

	<-done
	log.Info("shutting down relay", "players", relay.Players())

	relay.Shutdown(gameconfig.ShutdownTimeout)
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), gameconfig.ShutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "err", err)
	}
}
