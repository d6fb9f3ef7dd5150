// chorecal-tui is the terminal front-end for the chores calendar. It keeps
// one view session for the life of the process.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/dukerupert/chorecal/internal/backend"
	"github.com/dukerupert/chorecal/internal/config"
	"github.com/dukerupert/chorecal/internal/logging"
	"github.com/dukerupert/chorecal/internal/tui"
	"github.com/dukerupert/chorecal/internal/view"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	flagSet := pflag.NewFlagSet("chorecal-tui", pflag.ContinueOnError)
	cfg.BindTUIFlags(flagSet)
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Stdout belongs to the TUI, so logs go to a file or nowhere.
	var logOutput io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOutput = f
	}
	logger := logging.New(logOutput, cfg.LogLevel, cfg.LogFormat)

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

	replyDelay := cfg.ReplyDelay
	if replyDelay == 0 {
		replyDelay = -1
	}

	ctrl := view.New(client, view.Options{
		SessionID:  view.NewSessionID(time.Now()),
		Location:   loc,
		ReplyDelay: replyDelay,
		Logger:     logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	program := tea.NewProgram(tui.New(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	ctrl.SetOnChange(tui.Notify(program))

	logger.Info("chorecal-tui starting", "api", cfg.APIBaseURL, "session", ctrl.State().SessionID)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run tui: %w", err)
	}
	cancel()
	ctrl.Wait()
	return nil
}
