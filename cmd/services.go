package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/xvierd/pomo/internal/adapters/git"
	"github.com/xvierd/pomo/internal/adapters/notification"
	"github.com/xvierd/pomo/internal/adapters/storage"
	"github.com/xvierd/pomo/internal/config"
	"github.com/xvierd/pomo/internal/ports"
	"github.com/xvierd/pomo/internal/services"
)

// appDeps groups all service-layer dependencies initialized at startup.
type appDeps struct {
	store    ports.StateStore
	timer    *services.TimerService
	git      ports.GitDetector
	notifier *notification.Notifier
	config   *config.Config
	logger   *log.Logger
}

// app holds all initialized service dependencies.
// Populated by initializeServices() and accessible to all commands.
var app appDeps

// initializeServices sets up all the required services and adapters.
func initializeServices(ctx context.Context) error {
	app = appDeps{logger: log.New(os.Stderr, "", 0)}

	// Load configuration
	var err error
	app.config, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: using default config: %v\n", err)
		app.config = config.DefaultConfig()
	}

	app.notifier = notification.New(&app.config.Notifications)
	app.git = git.NewDetector()

	path := dbPath
	if path == "" {
		path = config.GetDBPath(app.config)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	app.store, err = storage.New(path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Config seeds a fresh store; settings saved from the app win on load.
	app.timer = services.NewTimerService(app.store, app.config.ToSettings())
	app.timer.SetLogger(app.logger)
	if err := app.timer.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: starting with a fresh timer: %v\n", err)
	}

	return nil
}

// cleanupServices closes all resources.
func cleanupServices() error {
	if app.store != nil {
		return app.store.Close()
	}
	return nil
}

// newTicker builds the driver that advances the timer and alerts on expiry.
func newTicker(interval time.Duration) *services.Ticker {
	ticker := services.NewTicker(app.timer, app.notifier, interval)
	ticker.SetLogger(app.logger)
	return ticker
}

// setupSignalHandler returns a context that cancels on interrupt signals.
func setupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// saveTimer persists the timer after a CLI mutation.
func saveTimer(ctx context.Context) error {
	return app.timer.Save(ctx)
}
