package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aussiebroadwan/healthtrack/internal/tracker/cli"
	"github.com/aussiebroadwan/healthtrack/internal/tracker/service"
	"github.com/aussiebroadwan/healthtrack/internal/tracker/store"
	"github.com/aussiebroadwan/healthtrack/internal/tracker/store/drivers/sqlite"
	"github.com/aussiebroadwan/healthtrack/pkg/cryptox"
	"github.com/aussiebroadwan/healthtrack/pkg/slogx"
	"golang.org/x/time/rate"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the health tracker with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	userService   *service.UserService
	recordService *service.RecordService
	session       *service.Session

	term *cli.Terminal
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "healthtrack",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Output:  os.Stderr, // keep stdout for the terminal UI
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.term = cli.New(cli.Options{
		Users:   app.userService,
		Records: app.recordService,
		Session: app.session,
		In:      os.Stdin,
		Out:     os.Stdout,
	})

	return app, nil
}

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	app.db = db
	return nil
}

func (app *Application) initServices() {
	loginRate := rate.Limit(float64(app.cfg.LoginAttemptsPerMinute) / 60.0)

	app.userService = service.NewUserService(app.db, loginRate, app.cfg.LoginBurst)
	app.recordService = service.NewRecordService(app.db)
	app.session = &service.Session{}
}

// Run drives the terminal loop until the user quits, input hits EOF or a
// shutdown signal arrives.
func (app *Application) Run() error {
	app.logger.Info("health tracker starting",
		slog.String("database", app.cfg.DatabaseFile),
		slog.String("version", BuildVersion),
	)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	ctx = slogx.WithContext(ctx, app.logger)

	err := app.term.Run(ctx)
	if err != nil && err != io.EOF && ctx.Err() == nil {
		return fmt.Errorf("terminal loop failed: %w", err)
	}

	return app.Shutdown()
}

// Shutdown releases the application's resources.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down health tracker")

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			return err
		}
	}
	return nil
}
