package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"realchat/auth"
	"realchat/gateway"
	"realchat/internal"
	"realchat/moderation"
	"realchat/repositories"
	"realchat/runtime"
	"realchat/runtime/workers"
	"realchat/services"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for HTTP and background workers.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx := context.Background()

	// 2. Database (BadgerDB)
	options := buildBadgerOpts(config, logger, ctx)

	db, err := badger.Open(options)
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}

	if logger.Enabled(ctx, slog.LevelDebug) {
		endpoint := "/inspect"
		url := fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint)
		logger.Info("Debug store inspector available", "url", url)
		internal.StartDebugServer(db, config.DebugPort, endpoint, internal.DefaultMapper, nil)
	}

	defer func() {
		// Defer ensures the database lock is released and buffers are flushed before the function returns.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & Services
	userRepository := repositories.NewUserRepository(db)
	conversationRepository := repositories.NewConversationRepository(db)
	messageRepository := repositories.NewMessageRepository(db, logger)

	tokens := auth.NewTokenService([]byte(config.JWTSecret), config.AuthTokenDuration)
	authService := services.NewAuthService(userRepository, tokens)
	directoryService := services.NewDirectoryService(conversationRepository)

	var moderator *moderation.Moderator
	if config.EnableModeration {
		charReplacement, err := internal.CharacterRune(config.CharReplacement)
		if err != nil {
			return exitConfig, err
		}
		words, err := moderation.DefaultWords()
		if err != nil {
			return exitRuntime, fmt.Errorf("word list loading failed: %w", err)
		}
		censor, err := moderation.NewModerator(words, charReplacement, logger)
		if err != nil {
			return exitRuntime, fmt.Errorf("moderator init failed: %w", err)
		}
		moderator = &censor
	}

	messageService := services.NewMessageService(
		messageRepository, conversationRepository, moderator, config.EncryptionSecret, logger)

	// 4. Realtime plumbing
	hub := gateway.NewHub(logger)
	presence := runtime.NewPresenceRegistry(hub, logger)
	groups := runtime.NewGroups(logger)
	gw := gateway.NewGateway(logger, hub, authService, directoryService, messageService,
		presence, groups, config.HistoryLimit, config.ConnectionBufferSize)
	api := gateway.NewAPI(logger, authService, userRepository)

	// 5. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Background workers under supervision
	sup := workers.NewSupervisor(logger).
		Add(workers.NewBadgerGCWorker(db, config.GCInterval, logger)).
		Add(workers.NewPresenceReporterWorker(presence, config.PresenceReportInterval, logger))
	go sup.Run(ctx)

	// 7. HTTP Server Setup
	mux := http.NewServeMux()
	gw.RegisterRoutes(mux)
	api.RegisterRoutes(mux)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: mux}

	// Error (HTTP server)
	errChan := make(chan error, 1)

	// Use an error channel to capture ListenAndServe() issues asynchronously.
	go func() {
		logger.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	// The execution blocks here until either a signal is received or the server crashes.
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 9. Final Cleanup (Graceful Shutdown)
	// We allow in-flight requests to finish and open websockets to close.
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Forced shutdown", "error", err)
	}
	sup.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
