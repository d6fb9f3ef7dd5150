// chorecal serves the chores calendar to browsers. Each page load gets its
// own view session backed by the chores REST API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/dukerupert/chorecal/internal/backend"
	"github.com/dukerupert/chorecal/internal/config"
	"github.com/dukerupert/chorecal/internal/logging"
	"github.com/dukerupert/chorecal/internal/server"
)

const cleanupInterval = time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	flagSet := pflag.NewFlagSet("chorecal", pflag.ContinueOnError)
	cfg.BindServerFlags(flagSet)
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	client := backend.New(backend.Config{
		BaseURL:  cfg.APIBaseURL,
		Timeout:  cfg.APITimeout,
		Location: loc,
		Logger:   logger.With("component", "backend"),
	})

	// A zero delay from the environment means reply at once.
	replyDelay := cfg.ReplyDelay
	if replyDelay == 0 {
		replyDelay = -1
	}

	srv, err := server.New(client, server.Options{
		Location:      loc,
		ReplyDelay:    replyDelay,
		SessionTTL:    cfg.SessionTTL,
		SessionKey:    []byte(cfg.SessionKey),
		ChatRateLimit: cfg.ChatRateLimit,
		SecureCookie:  cfg.SecureCookies,
	}, logger)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.Cleanup()
			}
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("chorecal running", "addr", "http://localhost:"+cfg.Port, "api", cfg.APIBaseURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
