package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httpapi "github.com/aussiebroadwan/chirp/internal/auth/http"
	"github.com/aussiebroadwan/chirp/internal/auth/media"
	"github.com/aussiebroadwan/chirp/internal/auth/service"
	"github.com/aussiebroadwan/chirp/internal/auth/store"
	"github.com/aussiebroadwan/chirp/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/chirp/pkg/cryptox"
	"github.com/aussiebroadwan/chirp/pkg/jwtx"
	"github.com/aussiebroadwan/chirp/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db    store.Store
	codec *jwtx.Codec

	// Services
	sessionService      *service.SessionService
	tweetService        *service.TweetService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
// Configuration problems are returned as *ServerConfigurationError.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "chirp-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	codec, err := jwtx.NewCodec(jwtx.CodecOptions{
		Issuer:        app.cfg.Issuer,
		AccessSecret:  []byte(app.cfg.AccessSecret),
		RefreshSecret: []byte(app.cfg.RefreshSecret),
		AccessTTL:     app.cfg.AccessTTL,
		RefreshTTL:    app.cfg.RefreshTTL,
	})
	if err != nil {
		return nil, &ServerConfigurationError{Setting: "token codec", Reason: err.Error()}
	}
	app.codec = codec

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run serves HTTP and runs housekeeping until ctx is cancelled or the
// listener fails, then shuts everything down within ShutdownGracePeriod.
func (app *Application) Run(ctx context.Context) error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"env", app.cfg.Env,
		"secure_cookies", app.cfg.SecureCookies(),
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		app.logger.Info("shutdown requested", "cause", context.Cause(ctx))
	}

	if err := app.Shutdown(); err != nil {
		return errors.Join(runErr, fmt.Errorf("graceful shutdown failed: %w", err))
	}
	return runErr
}

// Shutdown drains in-flight requests, stops housekeeping and closes the
// database. Request draining is bounded by ShutdownGracePeriod.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed, closing", "error", err)
		_ = app.server.Close()
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// Handler exposes the fully wired router, for in-process tests.
func (app *Application) Handler() http.Handler { return app.router }

// initDatabase opens the SQLite file in WAL mode and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() error {
	app.sessionService = &service.SessionService{
		Store:        app.db,
		Codec:        app.codec,
		PasswordCost: app.cfg.BcryptCost,
	}
	// Warm the unknown-user hash so the first failed login is not slower
	cryptox.DummyHash(app.cfg.BcryptCost)

	app.tweetService = &service.TweetService{Store: app.db}
	if mc := app.cfg.Cloudinary(); mc.Enabled() {
		uploader, err := media.NewCloudinaryUploader(mc)
		if err != nil {
			return &ServerConfigurationError{Setting: "CLOUDINARY_CLOUD_NAME", Reason: err.Error()}
		}
		app.tweetService.Uploader = uploader
	} else {
		// Tweets with attachments fail with upstream_unavailable
		app.logger.Warn("cloudinary not configured, media attachments disabled")
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

// initHTTP builds the router and server. Cookies are Secure only in
// production.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		BuildVersion,
		app.db,
		app.cfg.ProtectedPrefixes,
		app.logger,
	)

	router.SessionService = app.sessionService
	router.TweetService = app.tweetService
	router.Cookies.Secure = app.cfg.SecureCookies()
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
