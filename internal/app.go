package internal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"farelytics/internal/config"
	"farelytics/internal/database"
	"farelytics/internal/logger"
	"farelytics/internal/settings"
)

// Application wires the config, logger, database and HTTP server together.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	DBManager *database.Manager
	Fiber     *fiber.App
}

// NewApp creates a new application instance with the default config.
func NewApp() (*Application, error) {
	return NewAppWithConfig(config.GetConfig())
}

// NewAppWithConfig creates a new application with the provided config.
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	log := logger.New(cfg)

	dbManager := database.NewManager(cfg, log)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	fiberApp := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: cfg.IsProduction(),
		ErrorHandler:          jsonErrorHandler,
	})

	MountRoutes(fiberApp, dbManager.GetConnection(), log, cfg.TopResultsLimit)

	return &Application{
		Config:    cfg,
		Logger:    log,
		DBManager: dbManager,
		Fiber:     fiberApp,
	}, nil
}

// EnsureAPIKey generates the dashboard API key on first boot and logs the
// plaintext exactly once so the operator can copy it.
func (a *Application) EnsureAPIKey() error {
	key, err := settings.EnsureDashboardAPIKey(a.DBManager.GetConnection())
	if err != nil {
		return fmt.Errorf("failed to ensure dashboard api key: %w", err)
	}
	if key != "" {
		a.Logger.Info("Generated dashboard API key; store it now, it will not be shown again",
			slog.String("apiKey", key))
	}
	return nil
}

// StartAsync starts the HTTP listener in the background.
func (a *Application) StartAsync() {
	go func() {
		addr := ":" + a.Config.AppPort
		a.Logger.Info("HTTP server listening", slog.String("addr", addr))
		if err := a.Fiber.Listen(addr); err != nil {
			a.Logger.Error("HTTP server stopped", slog.Any("error", err))
		}
	}()
}

// Shutdown stops the HTTP server and closes the database.
func (a *Application) Shutdown(ctx context.Context) error {
	if err := a.Fiber.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	if err := a.DBManager.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func jsonErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
