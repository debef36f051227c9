package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/pursehub/pursehub/internal/access"
	"github.com/pursehub/pursehub/internal/auth"
	"github.com/pursehub/pursehub/internal/config"
	"github.com/pursehub/pursehub/internal/identity"
	"github.com/pursehub/pursehub/internal/ledger"
	"github.com/pursehub/pursehub/internal/middleware"
	"github.com/pursehub/pursehub/internal/notification"
	"github.com/pursehub/pursehub/internal/payments"
	"github.com/pursehub/pursehub/internal/wallet"
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
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !isDev(d.Cfg.Env) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}
	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	if isDev(d.Cfg.Env) {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	} else {
		app.Use(middleware.Audit(d.Logger))
	}
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	policy := access.Policy{}

	var walletRepo wallet.Repository
	var txStore ledger.Store
	if d.DB != nil {
		walletRepo = wallet.NewPostgresRepository(d.DB)
		txStore = ledger.NewPostgresStore(d.DB)
	} else {
		memWallets := wallet.NewMemoryRepository()
		walletRepo = memWallets
		txStore = ledger.NewInMemory(memWallets)
	}

	walletSvc := wallet.NewService(walletRepo, txStore, policy, wallet.DeletePolicy(d.Cfg.WalletDeletePolicy))
	notifier := notification.NewLoggerNotifier(d.Logger)
	paymentSvc := payments.NewService(walletRepo, txStore, policy, notifier)

	var identityRepo identity.Repository
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
	}
	identitySvc := identity.NewService(identityRepo)
	authSvc := auth.NewService(d.Cfg, identityRepo)
	authHandler := auth.NewHandler(identitySvc, authSvc)

	walletHandler := wallet.NewHandler(walletSvc)
	paymentHandler := payments.NewHandler(paymentSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterIdentityRoutes(api, identitySvc, d.Logger)
	rateLimiter := middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	// Protected routes
	jwtmw := middleware.JWTAuth(d.Cfg)
	protected := api.Group("", jwtmw)
	RegisterWalletRoutes(protected, walletHandler, paymentHandler)
	RegisterTransactionRoutes(protected, paymentHandler)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
