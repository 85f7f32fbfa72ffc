package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/labportal/labportal/internal/account"
	"github.com/labportal/labportal/internal/config"
	"github.com/labportal/labportal/internal/middleware"
	"github.com/labportal/labportal/internal/notification"
	"github.com/labportal/labportal/internal/recovery"
	"github.com/labportal/labportal/internal/session"
	"github.com/labportal/labportal/internal/token"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Outside dev at least one durable store must back the directory.
	if !d.Cfg.IsDev() && d.DB == nil && d.Cache == nil {
		return fmt.Errorf("a database or redis is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	// Credential directory backend: Postgres when available, the Redis
	// account list otherwise, seeded memory in dev.
	var repo account.Repository
	switch {
	case d.DB != nil:
		repo = account.NewPostgresRepository(d.DB)
	case d.Cache != nil:
		repo = account.NewRedisRepository(d.Cache)
	default:
		repo = account.NewMemoryRepository()
	}
	if err := account.Seed(context.Background(), repo); err != nil {
		d.Logger.Warn("seed directory", slog.Any("error", err))
	}

	var sessionStore session.Store
	if d.Cache != nil {
		sessionStore = session.NewRedisStore(d.Cache)
	} else {
		sessionStore = session.NewMemoryStore()
	}

	accounts := account.NewService(repo)
	sessions := session.NewManager(sessionStore)
	tokens := token.NewManager(d.Cfg.JWTSecret, d.Cfg.RefreshSecret, d.Cfg.AccessTokenTTL, d.Cfg.RefreshTokenTTL)
	notifier := notification.NewLoggerNotifier(d.Logger)
	flow := recovery.NewFlow(repo, notifier, d.Logger)

	// Sign-in destination. The UI renders the form; redirects land here.
	app.Get(session.RouteSignIn, func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{"status": "sign_in"})
	})

	// Public surface
	loginLimiter := middleware.AttemptRateLimit(d.Cache, "login", 5)
	verifyLimiter := middleware.AttemptRateLimit(d.Cache, "recovery_verify", 5)
	RegisterAuthRoutes(app, accounts, sessions, tokens, loginLimiter)
	RegisterRegistrationRoutes(app, accounts, d.Logger)
	RegisterRecoveryRoutes(app, flow, verifyLimiter)

	// Protected surface: every entry reads the session slot and redirects
	// to sign-in when it is empty.
	guard := middleware.SessionGuard(tokens, sessions)
	protected := app.Group("", guard)
	protected.Get("/me", func(c *fiber.Ctx) error {
		sess, _ := middleware.CurrentSession(c)
		return c.Status(http.StatusOK).JSON(fiber.Map{"session": sess})
	})
	RegisterProfileRoutes(protected, accounts, sessions)
	RegisterDashboardRoutes(protected, accounts)

	// Unmatched paths redirect to sign-in.
	app.Use(func(c *fiber.Ctx) error {
		return c.Redirect(session.RouteSignIn, fiber.StatusFound)
	})

	return nil
}
