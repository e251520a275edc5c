package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blind-relay/infrastructure/ws"
	"blind-relay/internal"
	"blind-relay/registry"
	"blind-relay/relay"
	"blind-relay/runtime/workers"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes
// error reporting, so every 'defer' executes before the process exits and the
// initialization logic stays testable outside of main.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Core components: one registry, its broadcaster and router, and the
	// service sequencing them. Everything is in-memory; the relay owns no
	// persisted state at all.
	reg := registry.NewRegistry()
	broadcaster := relay.NewBroadcaster(log, reg)
	router := relay.NewRouter(log, reg)
	service := relay.NewService(log, reg, broadcaster, router)

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Supervised background workers
	sup := workers.NewSupervisor(log)
	sup.Add(workers.NewRelayTelemetryWorker(log, reg, config.MetricInterval))
	go sup.Run(ctx)

	// 5. HTTP / websocket surface
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := ws.NewServer(log, service, config.Origins(), config.ConnectionBufferSize)
	httpServer := &http.Server{Addr: address, Handler: server.Handler()}

	// Use an error channel to capture ListenAndServe() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting relay", "address", address, "origins", config.Origins(), "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 7. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("Forcing server shutdown", "error", err)
	}
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
