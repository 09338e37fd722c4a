package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	appsync "github.com/autos-trefa/trefa-api/internal/application/sync"
	"github.com/autos-trefa/trefa-api/internal/application/vehicles"
	"github.com/autos-trefa/trefa-api/internal/infrastructure/airtable"
	"github.com/autos-trefa/trefa-api/internal/infrastructure/postgres"
	infraredis "github.com/autos-trefa/trefa-api/internal/infrastructure/redis"
	"github.com/autos-trefa/trefa-api/pkg/config"
	"github.com/autos-trefa/trefa-api/pkg/logger"
)

// Worker de sincronización del inventario: trae el catálogo completo desde
// Airtable, lo normaliza y lo vuelca en inventario_cache. Corre bajo cron o
// una sola vez con -once.
func main() {
	once := flag.Bool("once", false, "ejecutar una sincronización y salir")
	flag.Parse()

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
		Str("cron", cfg.Sync.CronExpr).
		Msg("iniciando worker de sincronización")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	var edgeCache vehicles.EdgeCache
	if rc, err := infraredis.NewVehicleCache(ctx, cfg.Redis); err != nil {
		log.Warn().Err(err).Msg("Redis no disponible, se sincroniza sin invalidar caché")
	} else {
		edgeCache = rc
		defer rc.Close()
	}

	vehicleRepo := postgres.NewVehicleRepository(pool)
	airtableClient := airtable.NewClient(cfg.Airtable)
	vehicleUC := vehicles.NewUseCase(vehicleRepo, edgeCache, airtableClient, log.Zerolog())
	syncUC := appsync.NewUseCase(vehicleRepo, airtableClient, vehicleUC, edgeCache, log.Zerolog())

	run := func() {
		runCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := syncUC.Run(runCtx); err != nil {
			log.Error().Err(err).Msg("sincronización fallida")
		}
	}

	if *once {
		run()
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Sync.CronExpr, run); err != nil {
		log.Fatal().Err(err).Str("cron", cfg.Sync.CronExpr).Msg("expresión cron inválida")
	}
	c.Start()

	// Primera corrida inmediata para no esperar al primer tick.
	run()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, deteniendo worker...")
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		log.Warn().Msg("timeout esperando el job en curso")
	}
	log.Info().Msg("worker detenido")
}
