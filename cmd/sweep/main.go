// Comando sweep: corre un barrido completo del catálogo desde la terminal,
// sin pasar por el servidor HTTP. Pensado para cron o corridas manuales largas.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	appsync "github.com/vinoteca-hk/cellar-sync/internal/application/sync"
	"github.com/vinoteca-hk/cellar-sync/internal/infrastructure/netsuite"
	"github.com/vinoteca-hk/cellar-sync/internal/infrastructure/postgres"
	"github.com/vinoteca-hk/cellar-sync/internal/metrics"
	"github.com/vinoteca-hk/cellar-sync/pkg/config"
	"github.com/vinoteca-hk/cellar-sync/pkg/logger"
)

func main() {
	var (
		batchSize    = flag.Int("batch", 0, "tamaño de página del listado (0 = valor de configuración)")
		maxItems     = flag.Int("max", 0, "tope de registros a procesar (0 = sin tope)")
		batchDelayMs = flag.Int("batch-delay-ms", 0, "pausa entre páginas en ms (0 = valor de configuración)")
		movement     = flag.Bool("movement", false, "correr además la pasada de movimiento al terminar")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	itemRepo := postgres.NewInventoryItemRepository(pool)
	orderRepo := postgres.NewSalesOrderRepository(pool)
	met := metrics.New()

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

	rep, err := orchestrator.SweepItems(ctx, appsync.SweepOptions{
		BatchSize:  *batchSize,
		MaxItems:   *maxItems,
		BatchDelay: time.Duration(*batchDelayMs) * time.Millisecond,
	})
	if err != nil {
		log.Error().Err(err).Msg("barrido abortado")
		fmt.Println(rep.Summary())
		os.Exit(1)
	}
	fmt.Println(rep.Summary())

	if *movement {
		mrep, err := orchestrator.EnrichMovement(ctx, appsync.MovementOptions{})
		if err != nil {
			log.Error().Err(err).Msg("pasada de movimiento abortada")
			os.Exit(1)
		}
		fmt.Println(mrep.Summary())
	}
}
