package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/lucentplay/seamless-wallet/internal/account"
	"github.com/lucentplay/seamless-wallet/internal/config"
	"github.com/lucentplay/seamless-wallet/internal/history"
	"github.com/lucentplay/seamless-wallet/internal/identity"
	"github.com/lucentplay/seamless-wallet/internal/launch"
	"github.com/lucentplay/seamless-wallet/internal/middleware"
	"github.com/lucentplay/seamless-wallet/internal/notification"
	"github.com/lucentplay/seamless-wallet/internal/partner"
	"github.com/lucentplay/seamless-wallet/internal/session"
	"github.com/lucentplay/seamless-wallet/internal/settlement"
	"github.com/lucentplay/seamless-wallet/internal/upstream"
	"github.com/lucentplay/seamless-wallet/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Upstream *upstream.Client
	Logger   *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if d.Upstream == nil {
		return fmt.Errorf("upstream client is required")
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	var store account.Store
	if d.DB != nil {
		store = account.NewPostgresStore(d.DB)
	} else {
		store = account.NewMemoryStore()
	}

	var registry settlement.Registry
	if d.Cache != nil {
		registry = settlement.NewRedisRegistry(d.Cache, d.Cfg.WagerTTL)
	} else {
		registry = settlement.NewMemoryRegistry()
	}

	notifier := notification.NewLoggerNotifier(d.Logger)

	sessions := session.NewManager(store, d.Upstream, d.Logger)
	resolver := launch.NewResolver(sessions, d.Upstream, launch.DefaultDescriptors(), launch.DefaultGameIDOverrides(), d.Cfg.OperatorToken, d.Logger)
	catalog := launch.NewCatalog(d.Upstream, d.Logger)
	engine := settlement.NewEngine(store, registry, notifier, d.Logger)
	historySvc := history.NewService(d.Upstream, d.Logger)
	identitySvc := identity.NewService(store, d.Cfg.DefaultBalance, d.Cfg.DefaultCurrency, d.Logger)
	walletSvc := wallet.NewService(store, notifier, d.Logger)

	identityHandler := identity.NewHandler(identitySvc)
	walletHandler := wallet.NewHandler(walletSvc)
	launchHandler := launch.NewHandler(resolver, catalog)
	historyHandler := history.NewHandler(historySvc, store)
	partnerHandler := partner.NewHandler(d.Cfg.AgentSecret, store, engine, historySvc, d.Logger)

	api := app.Group("/api/v1")
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterIdentityRoutes(api, identityHandler, rateLimiter)
	RegisterWalletRoutes(api, walletHandler)
	RegisterGameRoutes(api, launchHandler, historyHandler)

	// Aggregator-facing wallet contract; authenticated per handler by the
	// agent shared secret.
	RegisterPartnerRoutes(app.Group("/api"), partnerHandler)

	return nil
}
