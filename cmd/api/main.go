package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-inventory-pos/internal/cache"
	"go-inventory-pos/internal/config"
	"go-inventory-pos/internal/events"
	"go-inventory-pos/internal/handler"
	"go-inventory-pos/internal/metrics"
	"go-inventory-pos/internal/middleware"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/internal/service"
	"go-inventory-pos/internal/ws"
	"go-inventory-pos/pkg/database"
	"go-inventory-pos/pkg/jwt"
	"go-inventory-pos/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// 1. Load config and logger
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.App.Env, cfg.App.LogLevel); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Get()

	// 2. Setup Database
	db, err := database.Connect(cfg.DB.Options(), !cfg.App.IsProd())
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer database.Close(db)

	if cfg.DB.AutoMigrate {
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal("database handle", zap.Error(err))
		}
		if err := database.Migrate(context.Background(), sqlDB, "up"); err != nil {
			log.Fatal("migrations failed", zap.Error(err))
		}
		log.Info("migrations applied")
	}

	// 3. Setup WebSocket Hub and event sinks
	wsHub := ws.NewHub(log.Named("ws"))
	go wsHub.Run()
	defer wsHub.Stop()

	sinks := []events.Publisher{events.NewHubPublisher(wsHub)}
	if cfg.Kafka.Enabled() {
		kafkaPub := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaPub.Close()
		sinks = append(sinks, kafkaPub)
		log.Info("kafka publishing enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	// 4. Optional stock cache
	deps := service.NewDependencies(db)
	var stockCache *cache.StockCache
	if cfg.Redis.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		stockCache, err = cache.NewStockCache(ctx, cfg.Redis.URL, cfg.Redis.StockTTL)
		cancel()
		if err != nil {
			log.Warn("redis unavailable, stock cache disabled", zap.Error(err))
			stockCache = nil
		} else {
			defer stockCache.Close()
			deps.Cache = stockCache
		}
	}

	// 5. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// 6. Dependency Injection (Wiring Layers)
	deps.Publisher = events.NewFanout(log.Named("events"), sinks...)
	deps.Metrics = metrics.New(registry)
	deps.Logger = log.Named("service")
	deps.MaxRetries = cfg.Business.TxMaxRetries
	deps.ReversalWindow = cfg.Business.ReversalWindow
	deps.TransactionPrefix = cfg.Business.TransactionPrefix

	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL())
	userRepo := repository.NewUserRepo(db)

	catalog := service.NewCatalogService(deps)
	ledger := service.NewLedgerService(deps)

	handlers := handler.Handlers{
		Auth:      handler.NewAuthHandler(service.NewAuthService(userRepo, tokens)),
		Products:  handler.NewProductHandler(catalog, ledger),
		Movements: handler.NewMovementHandler(ledger),
		Requests:  handler.NewRequestHandler(service.NewApprovalService(deps)),
		Sales:     handler.NewSalesHandler(service.NewSalesService(deps), service.NewReversalService(deps)),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(deps, catalog)),
		Users:     handler.NewUserHandler(service.NewUserService(userRepo)),
	}
	wsHandler := handler.NewWSHandler(wsHub, tokens)

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Inventory POS v1.0",
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	// 8. Routes
	app.Get("/healthz", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "database": "down"})
		}
		status := fiber.Map{"status": "ok", "database": "up"}
		if stockCache != nil {
			// a Redis outage is reported but never fails the check
			status["cache"] = "up"
			if err := stockCache.Ping(c.UserContext()); err != nil {
				status["cache"] = "down"
			}
		}
		return c.JSON(status)
	})
	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}
	app.Use("/ws", wsHandler.Upgrade)
	app.Get("/ws", wsHandler.Serve())

	handler.Register(app, handlers, middleware.RequireAuth(tokens, userRepo))

	// 9. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			log.Panic("server stopped", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited")
}
