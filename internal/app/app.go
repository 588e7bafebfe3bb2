// Package app initializes and runs the task manager service.
// It configures logging, storage, authentication, and routing,
// and handles graceful shutdown.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/voicetodo/internal/auth"
	"github.com/patric-chuzhbe/voicetodo/internal/config"
	"github.com/patric-chuzhbe/voicetodo/internal/ipchecker"
	"github.com/patric-chuzhbe/voicetodo/internal/logger"
	"github.com/patric-chuzhbe/voicetodo/internal/memorystorage"
	"github.com/patric-chuzhbe/voicetodo/internal/router"
	"github.com/patric-chuzhbe/voicetodo/internal/service"
	"github.com/patric-chuzhbe/voicetodo/internal/sessioncleaner"
	"github.com/patric-chuzhbe/voicetodo/internal/storage"
	"github.com/patric-chuzhbe/voicetodo/internal/user"
)

// App encapsulates the configuration, HTTP handler, storage backend,
// and the background session cleaner needed to run the service.
type App struct {
	cfg                *config.Config
	db                 storage.Storage
	sessionCleaner     *sessioncleaner.SessionCleaner
	stopSessionCleaner context.CancelFunc
	httpHandler        http.Handler
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - setting up the in-memory storage and seeding the admin account
// - starting the background session cleaner
// - setting up the router and middleware
func New() (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.db, err = memorystorage.New(
		memorystorage.WithSessionTTL(app.cfg.SessionTTL),
	)
	if err != nil {
		return nil, err
	}

	if err := seedAdminAccount(context.Background(), app.db, app.cfg); err != nil {
		return nil, err
	}

	app.sessionCleaner = sessioncleaner.New(app.db, app.cfg.SessionCleanupInterval)
	cleanerRunCtx, stopSessionCleaner := context.WithCancel(context.Background())
	app.stopSessionCleaner = stopSessionCleaner

	app.sessionCleaner.Run(cleanerRunCtx)
	app.sessionCleaner.ListenErrors(func(err error) {
		logger.Log.Debugln("Error passed from the `app.sessionCleaner.ListenErrors()`:", zap.Error(err))
	})

	checker, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	theAuth := auth.New(
		app.db,
		app.cfg.AuthCookieName,
		app.cfg.SessionTTL,
		app.cfg.IsProduction(),
	)

	app.httpHandler = router.New(service.New(app.db), theAuth, checker)

	return app, nil
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Draining connections and exiting...")
		a.stopSessionCleaner()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

// seedAdminAccount creates the single configured account at process
// start. The store keeps a generic registration path, but no route
// exposes it; this seed is how the one user comes to exist.
func seedAdminAccount(ctx context.Context, db storage.Storage, cfg *config.Config) error {
	_, found, err := db.GetUserByUsername(ctx, cfg.AdminUsername)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	_, err = db.CreateUser(ctx, &user.User{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
	})
	if err != nil {
		return err
	}

	logger.Log.Infoln("seeded admin account", "username", cfg.AdminUsername)

	return nil
}
