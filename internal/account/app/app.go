package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/mindful/internal/account/http"
	"github.com/aussiebroadwan/mindful/internal/account/recovery"
	"github.com/aussiebroadwan/mindful/internal/account/service"
	"github.com/aussiebroadwan/mindful/internal/account/store"
	"github.com/aussiebroadwan/mindful/internal/account/store/drivers/sqlite"
	"github.com/aussiebroadwan/mindful/pkg/cryptox"
	"github.com/aussiebroadwan/mindful/pkg/httpx"
	"github.com/aussiebroadwan/mindful/pkg/notify"
	"github.com/aussiebroadwan/mindful/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the account service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	hasher   *cryptox.Hasher
	sessions recovery.SessionStore
	redis    *redis.Client // nil unless RecoveryStore is redis
	notifier notify.Notifier

	// Services
	accountService      *service.AccountService
	securityService     *service.SecurityQuestionService
	recoveryService     *service.RecoveryService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "account-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initHasher(); err != nil {
		return nil, err
	}
	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initSessions(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initNotifier()
	app.initServices()

	if err := app.securityService.Seed(context.Background(), service.DefaultSecurityQuestions); err != nil {
		app.closeStores()
		return nil, err
	}

	if err := httpx.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		app.closeStores()
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	app.initHTTP()
	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("account service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down account service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	// In-flight reset notifications get whatever is left of the grace period.
	if err := app.recoveryService.Wait(ctx); err != nil {
		app.logger.Warn("abandoning in-flight recovery notifications", "error", err)
	}

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("account service stopped")
	return nil
}

func (app *Application) closeStores() error {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initHasher loads the pepper and builds the password/answer hasher
func (app *Application) initHasher() error {
	pepper, err := cryptox.LoadOrGeneratePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	h, err := cryptox.NewHasher(cryptox.HasherConfig{
		Algorithm: cryptox.Algorithm(app.cfg.HashAlgorithm),
		Argon2: cryptox.Argon2Params{
			Memory:      uint32(max(app.cfg.Argon2MemoryKB, 0)),             // #nosec G115
			Iterations:  uint32(max(app.cfg.Argon2Iterations, 0)),           // #nosec G115
			Parallelism: uint8(min(max(app.cfg.Argon2Parallelism, 0), 255)), // #nosec G115
		},
		BcryptCost: app.cfg.BcryptCost,
		Pepper:     pepper,
	})
	if err != nil {
		return fmt.Errorf("failed to configure hasher: %w", err)
	}
	app.hasher = h

	app.logger.Info("password hasher configured", "algorithm", h.Algorithm())
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.FileDSN(app.cfg.DatabaseFile))
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

// initSessions selects the recovery session store
func (app *Application) initSessions() error {
	opts := recovery.Options{TTL: app.cfg.RecoveryTokenTTL}

	switch app.cfg.RecoveryStore {
	case "", "memory":
		app.sessions = recovery.NewMemoryStore(opts)

	case "redis":
		if app.cfg.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when RECOVERY_STORE=redis")
		}
		ropts, err := redis.ParseURL(app.cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		app.redis = redis.NewClient(ropts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.redis.Ping(ctx).Err(); err != nil {
			_ = app.redis.Close()
			app.redis = nil
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.sessions = recovery.NewRedisStore(app.redis, opts)

	default:
		return fmt.Errorf("unknown RECOVERY_STORE %q (want memory or redis)", app.cfg.RecoveryStore)
	}

	app.logger.Info("recovery session store ready", "store", app.cfg.RecoveryStore, "ttl", app.cfg.RecoveryTokenTTL)
	return nil
}

func (app *Application) initNotifier() {
	if app.cfg.SMTPHost == "" {
		app.notifier = notify.LogNotifier{}
		app.logger.Warn("SMTP_HOST not set, reset tokens will only be logged")
		return
	}

	app.notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		From:     app.cfg.SMTPFrom,
		Username: app.cfg.SMTPUsername,
		Password: app.cfg.SMTPPassword,
		TTL:      app.cfg.RecoveryTokenTTL,
	})
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.accountService = &service.AccountService{Store: app.db, Hasher: app.hasher}
	app.securityService = &service.SecurityQuestionService{Store: app.db, Hasher: app.hasher}
	app.recoveryService = &service.RecoveryService{
		Store:    app.db,
		Hasher:   app.hasher,
		Sessions: app.sessions,
		Notifier: app.notifier,

		NotifyTimeout: app.cfg.NotifyTimeout,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.sessions,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger, app.cfg.AllowedOrigins)

	router.AccountService = app.accountService
	router.SecurityService = app.securityService
	router.RecoveryService = app.recoveryService
	if rs, ok := app.sessions.(*recovery.RedisStore); ok {
		router.Pinger = rs
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
