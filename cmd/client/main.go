package main

import (
	"chat-rooms/connection"
	"chat-rooms/contract"
	"chat-rooms/identity"
	"chat-rooms/internal"
	"chat-rooms/runtime"
	"chat-rooms/runtime/workers"
	"chat-rooms/session"
	"chat-rooms/sink"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run wires the session and its workers, then blocks until /quit or a signal.
// Deferred cleanups (identity database) run before main exits.
func run() (int, error) {
	// 1. Configuration & Logger. A missing .env is fine.
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Identity, persisted per scope when the database can be opened
	repository, closeRepository := openIdentity(log, config)
	defer closeRepository()
	identityStore := identity.NewStore(log, repository)

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Session
	connector := connection.NewConnector(log, connection.Options{
		WriteWait:       config.WriteWait,
		PongWait:        config.PongWait,
		PingPeriod:      config.PingPeriod,
		MaxMessageSize:  config.MaxMessageSize,
		SendBufferSize:  config.SendBufferSize,
		EventBufferSize: config.EventBufferSize,
		InitialBackoff:  config.InitialBackoff,
		MaxBackoff:      config.MaxBackoff,
	})
	manager := session.NewManager(log, identityStore, connector, session.Options{
		Version:           internal.Version,
		Commit:            internal.Commit,
		CommandBufferSize: config.CommandBufferSize,
		EventBufferSize:   config.EventBufferSize,
	})

	// 5. Supervision & Orchestration
	rooms := config.RoomIDs()
	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log, config.RestartInterval),
		manager, config.ServerURL, config.SinkTimeout)
	orchestrator.Add(
		sink.NewLogSink(log),
		sink.NewConsole(os.Stdout, identityStore.GetOrCreate(ctx)),
		sink.NewAutoJoin(log, manager, rooms...),
	)

	orchestrator.AddWorkers(workers.NewPromptWorker(log, manager, os.Stdin, os.Stdout,
		lo.FirstOr(rooms, ""), orchestrator.Stop))

	log.Info("Client starting", "version", internal.Version, "commit", internal.Commit, "url", config.ServerURL)
	if err := orchestrator.Start(ctx); err != nil {
		return exitRuntime, fmt.Errorf("orchestrator failed: %w", err)
	}
	log.Info("Program stopped cleanly")
	return exitOK, nil
}

// openIdentity falls back to an in-memory repository when the database cannot
// be opened, the client id then only lives as long as the process.
func openIdentity(log *slog.Logger, config internal.Config) (contract.IdentityRepository, func()) {
	db, err := identity.OpenBadger(config.IdentityPath, config.IdentityScope)
	if err != nil {
		log.Warn("Identity storage unavailable, using memory", "path", config.IdentityPath, "error", err)
		return identity.NewMemoryRepository(), func() {}
	}
	return identity.NewBadgerRepository(db, log), func() {
		log.Info("Closing identity database...")
		_ = db.Close()
	}
}
