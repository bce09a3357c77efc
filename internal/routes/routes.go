package routes

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/orderking/orderking_api/internal/auth"
	"github.com/orderking/orderking_api/internal/config"
	"github.com/orderking/orderking_api/internal/identity"
	"github.com/orderking/orderking_api/internal/middleware"
	"github.com/orderking/orderking_api/internal/notification"
	"github.com/orderking/orderking_api/internal/qr"
	"github.com/orderking/orderking_api/internal/reset"
)

const (
	loginAttemptsPerMinute  = 5
	forgotAttemptsPerMinute = 3
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg         config.Config
	DB          *pgxpool.Pool
	Cache       *redis.Client
	Logger      *slog.Logger
	Notifier    notification.Notifier
	Broadcaster *qr.Broadcaster
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if d.Broadcaster == nil {
		return fmt.Errorf("broadcaster is required")
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	var userRepo identity.Repository
	if d.DB != nil {
		userRepo = identity.NewPostgresRepository(d.DB)
	} else {
		userRepo = identity.NewMemoryRepository()
	}
	identitySvc := identity.NewService(userRepo)

	notifier := d.Notifier
	if notifier == nil {
		notifier = notification.NewLoggerNotifier(d.Logger)
	}

	tokens := auth.NewTokenManager(d.Cfg.JWTSecret, d.Cfg.TokenTTL)
	resetSvc := reset.NewService(userRepo, notifier, d.Cfg.ResetCodeTTL, d.Logger)
	authHandler := auth.NewHandler(identitySvc, resetSvc, tokens, d.Logger)
	qrHandler := qr.NewHandler(d.Broadcaster)

	// Public routes
	loginLimiter := middleware.EmailRateLimit(d.Cache, "login", loginAttemptsPerMinute, time.Minute)
	forgotLimiter := middleware.EmailRateLimit(d.Cache, "forgot", forgotAttemptsPerMinute, time.Minute)
	RegisterAuthRoutes(app, authHandler, loginLimiter, forgotLimiter)

	// Protected routes
	jwtmw := middleware.JWTAuth(tokens, d.Logger)
	app.Get("/auth/user-info", jwtmw, authHandler.UserInfo)
	RegisterQRRoutes(app, qrHandler, jwtmw)

	return nil
}
