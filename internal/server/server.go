package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/orderking/orderking_api/internal/config"
	"github.com/orderking/orderking_api/internal/notification"
	"github.com/orderking/orderking_api/internal/qr"
	"github.com/orderking/orderking_api/internal/routes"
)

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app *fiber.App
	cfg config.Config
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(cfg config.Config, db *pgxpool.Pool, cache *redis.Client, notifier notification.Notifier, broadcaster *qr.Broadcaster, logger *slog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: jsonErrorHandler,
	})

	deps := routes.Deps{
		Cfg:         cfg,
		DB:          db,
		Cache:       cache,
		Logger:      logger,
		Notifier:    notifier,
		Broadcaster: broadcaster,
	}
	if err := routes.Setup(app, deps); err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: cfg}, nil
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the underlying Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// jsonErrorHandler renders every error as a JSON body with a message field,
// so no stack trace or internal identifier crosses the boundary.
func jsonErrorHandler(c *fiber.Ctx, err error) error {
	code := http.StatusInternalServerError
	message := "Server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(code).JSON(fiber.Map{"message": message})
}
