// Package api wires the commerce API process: observability, storage,
// collaborators, and the HTTP surface.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	inventoryhttp "github.com/dominusaudio/commerce-api/internal/domains/inventory/adapters/httpx"
	inventorymemory "github.com/dominusaudio/commerce-api/internal/domains/inventory/adapters/memory"
	inventorypostgres "github.com/dominusaudio/commerce-api/internal/domains/inventory/adapters/persistence/postgres"
	inventoryapp "github.com/dominusaudio/commerce-api/internal/domains/inventory/application"
	inventoryports "github.com/dominusaudio/commerce-api/internal/domains/inventory/ports"
	"github.com/dominusaudio/commerce-api/internal/domains/orders/adapters/cart"
	"github.com/dominusaudio/commerce-api/internal/domains/orders/adapters/coupon"
	"github.com/dominusaudio/commerce-api/internal/domains/orders/adapters/events"
	ordershttp "github.com/dominusaudio/commerce-api/internal/domains/orders/adapters/httpx"
	ordersmemory "github.com/dominusaudio/commerce-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/dominusaudio/commerce-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/dominusaudio/commerce-api/internal/domains/orders/adapters/persistence/postgres"
	"github.com/dominusaudio/commerce-api/internal/domains/orders/adapters/stock"
	ordersapp "github.com/dominusaudio/commerce-api/internal/domains/orders/application"
	ordersports "github.com/dominusaudio/commerce-api/internal/domains/orders/ports"
	"github.com/dominusaudio/commerce-api/internal/platform/migrations"
	platformobservability "github.com/dominusaudio/commerce-api/internal/platform/observability"
	platformpostgres "github.com/dominusaudio/commerce-api/internal/platform/postgres"
	apierrors "github.com/dominusaudio/commerce-api/internal/shared/errors"
	"github.com/dominusaudio/commerce-api/internal/shared/identity"
	"github.com/dominusaudio/commerce-api/internal/shared/tx"
)

const serviceName = "commerce-api"

// Run boots the commerce HTTP API with observability, repositories, and
// collaborators wired.
func Run(ctx context.Context) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	deps, cleanup := buildDependencies(ctx, cfg, logger)
	defer cleanup()

	inventoryService := inventoryapp.NewService(deps.inventoryRepo, deps.runner)
	coreOrderService := ordersapp.NewService(
		deps.ordersRepo,
		stock.NewLedger(inventoryService),
		deps.carts,
		deps.coupons,
		deps.addresses,
		deps.events,
		deps.runner,
	)
	orderService := ordersobs.New(
		coreOrderService,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	responder := apierrors.NewResponder()
	adminOnly := identity.RequireRoles(responder, identity.RoleAdmin, identity.RoleSuperAdmin)

	apiGroup := router.Group("/api", identity.Middleware(responder))
	ordershttp.NewHandler(orderService).Register(apiGroup, adminOnly)
	inventoryhttp.NewHandler(inventoryService).Register(apiGroup.Group("", adminOnly))

	addr := ":" + cfg.Port
	logger.Info("commerce API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("commerce API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

type dependencies struct {
	inventoryRepo inventoryports.Repository
	ordersRepo    ordersports.Repository
	carts         ordersports.CartProvider
	coupons       ordersports.CouponEvaluator
	addresses     ordersports.AddressReader
	events        ordersports.EventPublisher
	runner        tx.Runner
}

// buildDependencies prefers the real backing services and degrades to
// in-memory fakes so the API stays bootable in local development.
func buildDependencies(ctx context.Context, cfg Config, logger *slog.Logger) (*dependencies, func()) {
	deps := &dependencies{
		events: ordersports.NopPublisher{},
		runner: tx.NopRunner{},
	}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	db := connectPostgres(ctx, cfg, logger)
	if db != nil {
		cleanups = append(cleanups, func() { platformpostgres.Close(db, logger) })
		deps.inventoryRepo = inventorypostgres.NewRepository(db)
		deps.ordersRepo = orderspostgres.NewRepository(db)
		deps.coupons = coupon.NewGormEvaluator(db)
		deps.addresses = orderspostgres.NewAddressReader(db)
		deps.runner = platformpostgres.NewTxRunner(db)
	} else {
		deps.inventoryRepo = inventorymemory.NewRepository()
		deps.ordersRepo = ordersmemory.NewRepository()
		deps.coupons = coupon.NewMemoryEvaluator()
		deps.addresses = ordersmemory.NewAddressReader()
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("failed to connect to redis, falling back to in-memory carts", slog.String("error", err.Error()))
			deps.carts = cart.NewMemoryProvider()
		} else {
			cleanups = append(cleanups, func() { _ = client.Close() })
			deps.carts = cart.NewRedisProvider(client)
			logger.Info("cart provider configured with redis")
		}
	} else {
		logger.Warn("REDIS_ADDR not set, falling back to in-memory carts")
		deps.carts = cart.NewMemoryProvider()
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		cleanups = append(cleanups, func() { _ = publisher.Close() })
		deps.events = publisher
		logger.Info("order events configured with kafka", slog.String("topic", cfg.KafkaTopic))
	} else {
		logger.Warn("KAFKA_BROKERS not set, order events disabled")
	}

	return deps, cleanup
}

func connectPostgres(ctx context.Context, cfg Config, logger *slog.Logger) *gorm.DB {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return nil
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return nil
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to run migrations, falling back to memory", slog.String("error", err.Error()))
		platformpostgres.Close(db, logger)
		return nil
	}
	logger.Info("repositories configured with postgres")
	return db
}
