package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/roadwar/internal/config"
	gameconfig "github.com/tomz197/roadwar/internal/loop/config"
	"github.com/tomz197/roadwar/internal/loop/client"
	"github.com/tomz197/roadwar/internal/network"
	"golang.org/x/term"
)

const defaultRelayURL = "ws://localhost:8080/ws"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}
	config.SetupLogging()
	// The terminal belongs to the renderer; logs go to a file when asked for.
	logger := log.New(os.Stderr)
	if path := config.GetEnv("LOG_FILE", ""); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger = log.New(f)
		logger.SetLevel(log.GetLevel())
	} else {
		logger.SetLevel(log.ErrorLevel)
	}

	url := config.GetEnv("RELAY_URL", defaultRelayURL)
	name := config.GetEnv("PLAYER_NAME", os.Getenv("USER"))

	dialCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	link, err := network.Dial(dialCtx, url, logger.WithPrefix("ws"))
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to reach relay at %s: %v\n", url, err)
		os.Exit(1)
	}
	defer link.Close()

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.NewClient(link, bufio.NewReader(os.Stdin), os.Stdout, client.Options{
		Name:   name,
		Seed:   config.GetEnvUint64("WORLD_SEED", gameconfig.DefaultSeed),
		Logger: logger.WithPrefix("client"),
	})
	if err := c.Run(ctx); err != nil {
		_ = term.Restore(fd, oldState)
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}
