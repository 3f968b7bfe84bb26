package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	appsync "github.com/vinoteca-hk/cellar-sync/internal/application/sync"
	"github.com/vinoteca-hk/cellar-sync/internal/application/usecase"
	"github.com/vinoteca-hk/cellar-sync/internal/infrastructure/netsuite"
	"github.com/vinoteca-hk/cellar-sync/internal/infrastructure/postgres"
	httpRouter "github.com/vinoteca-hk/cellar-sync/internal/interfaces/http"
	"github.com/vinoteca-hk/cellar-sync/internal/metrics"
	"github.com/vinoteca-hk/cellar-sync/pkg/config"
	"github.com/vinoteca-hk/cellar-sync/pkg/logger"
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
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	itemRepo := postgres.NewInventoryItemRepository(pool)
	orderRepo := postgres.NewSalesOrderRepository(pool)
	statsRepo := postgres.NewStatsRepository(pool)

	met := metrics.New()

	// Pipeline de sincronización: firmador TBA -> cliente rate-limited ->
	// gateway REST -> armador de registros -> orquestador.
	signer := netsuite.NewTBASigner(cfg.NetSuite)
	client := netsuite.NewClient(signer, cfg.Sync, met, log)
	gateway := netsuite.NewGateway(client, cfg.NetSuite, cfg.Sync, log)
	fetcher := appsync.NewFetcher(gateway, cfg.Sync.MaxLocations, log)
	orchestrator := appsync.NewOrchestrator(gateway, fetcher, itemRepo, orderRepo, met, appsync.Options{
		PageSize:        cfg.Sync.PageSize,
		RecordDelay:     cfg.Sync.RecordDelay,
		BatchDelay:      cfg.Sync.BatchDelay,
		SweepBatchDelay: cfg.Sync.SweepBatchDelay,
		ErrorLogDir:     cfg.Sync.ErrorLogDir,
	}, log)

	catalogUC := usecase.NewCatalogUseCase(itemRepo)
	orderUC := usecase.NewOrderUseCase(orderRepo)
	statsUC := usecase.NewStatsUseCase(statsRepo)

	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
		// Las corridas de sincronización son síncronas y largas; el write
		// timeout tiene que cubrir el barrido completo.
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Hour * 2,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Cellar Sync API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(met.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		CatalogUC:    catalogUC,
		OrderUC:      orderUC,
		StatsUC:      statsUC,
		Orchestrator: orchestrator,
		JWTSecret:    cfg.JWT.Secret,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
