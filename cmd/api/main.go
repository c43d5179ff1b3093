package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ateliepro/atelier-api/internal/application/alerts"
	"github.com/ateliepro/atelier-api/internal/application/inventory"
	"github.com/ateliepro/atelier-api/internal/domain/repository"
	"github.com/ateliepro/atelier-api/internal/infrastructure/memory"
	"github.com/ateliepro/atelier-api/internal/infrastructure/notify"
	"github.com/ateliepro/atelier-api/internal/infrastructure/postgres"
	"github.com/ateliepro/atelier-api/internal/infrastructure/scheduler"
	httpRouter "github.com/ateliepro/atelier-api/internal/interfaces/http"
	"github.com/ateliepro/atelier-api/pkg/config"
	"github.com/ateliepro/atelier-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		itemRepo     repository.InventoryItemRepository
		movementRepo repository.StockMovementRepository
		prefsRepo    repository.AlertPreferencesRepository
		logRepo      repository.AlertLogRepository
		txRunner     inventory.TxRunner
	)
	if cfg.DB.Driver == "memory" {
		// Desarrollo local sin PostgreSQL: todo vive en memoria.
		store := memory.NewStore()
		itemRepo = memory.NewInventoryItemRepository(store)
		movementRepo = memory.NewStockMovementRepository(store)
		prefsRepo = memory.NewAlertPreferencesRepository(store)
		logRepo = memory.NewAlertLogRepository(store)
		txRunner = memory.NewTxRunner(store)
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		itemRepo = postgres.NewInventoryItemRepository(pool)
		movementRepo = postgres.NewStockMovementRepository(pool)
		prefsRepo = postgres.NewAlertPreferencesRepository(pool)
		logRepo = postgres.NewAlertLogRepository(pool)
		txRunner = postgres.NewTxRunner(pool)
	}

	reconciler := inventory.NewReconciler(txRunner, itemRepo, movementRepo)
	lifecycleUC := inventory.NewLifecycleUseCase(itemRepo, movementRepo, reconciler)

	notifier := notify.NewDispatcher(
		notify.NewEmailSender(cfg.SMTP),
		notify.NewWhatsappSender(cfg.Whatsapp),
	)
	alertEngine := alerts.NewEngine(itemRepo, prefsRepo, logRepo, notifier, cfg.Alerts.DefaultTimezone)
	preferencesUC := alerts.NewPreferencesUseCase(prefsRepo, logRepo, cfg.Alerts.DefaultTimezone)

	sched := scheduler.New(alertEngine, prefsRepo, cfg.Alerts.Interval, log)
	go sched.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Atelier API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		LifecycleUC:   lifecycleUC,
		PreferencesUC: preferencesUC,
		AlertEngine:   alertEngine,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	cancel() // detiene el scheduler

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
