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

	"github.com/autos-trefa/trefa-api/internal/application/auth"
	"github.com/autos-trefa/trefa-api/internal/application/consignment"
	"github.com/autos-trefa/trefa-api/internal/application/favorites"
	"github.com/autos-trefa/trefa-api/internal/application/financing"
	"github.com/autos-trefa/trefa-api/internal/application/photos"
	appsync "github.com/autos-trefa/trefa-api/internal/application/sync"
	"github.com/autos-trefa/trefa-api/internal/application/valuation"
	"github.com/autos-trefa/trefa-api/internal/application/vehicles"
	"github.com/autos-trefa/trefa-api/internal/application/verification"
	"github.com/autos-trefa/trefa-api/internal/infrastructure/airtable"
	"github.com/autos-trefa/trefa-api/internal/infrastructure/intelimotor"
	infrapdf "github.com/autos-trefa/trefa-api/internal/infrastructure/pdf"
	"github.com/autos-trefa/trefa-api/internal/infrastructure/postgres"
	infraredis "github.com/autos-trefa/trefa-api/internal/infrastructure/redis"
	"github.com/autos-trefa/trefa-api/internal/infrastructure/storage"
	"github.com/autos-trefa/trefa-api/internal/infrastructure/twilio"
	httpRouter "github.com/autos-trefa/trefa-api/internal/interfaces/http"
	"github.com/autos-trefa/trefa-api/pkg/config"
	"github.com/autos-trefa/trefa-api/pkg/logger"
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

	if cfg.DB.Migrations != "" {
		if err := postgres.RunMigrations(cfg.DB); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Redis es el tier 1 de lectura; si no está disponible arrancamos sin él
	// y el catálogo sirve directo desde PostgreSQL.
	var edgeCache vehicles.EdgeCache
	if rc, err := infraredis.NewVehicleCache(ctx, cfg.Redis); err != nil {
		log.Warn().Err(err).Msg("Redis no disponible, continuando sin caché de borde")
	} else {
		edgeCache = rc
		defer rc.Close()
	}

	profileRepo := postgres.NewProfileRepository(pool)
	vehicleRepo := postgres.NewVehicleRepository(pool)
	applicationRepo := postgres.NewApplicationRepository(pool)
	consignmentRepo := postgres.NewConsignmentRepository(pool)
	favoriteRepo := postgres.NewFavoriteRepository(pool)
	otpRepo := postgres.NewOTPRepository(pool)

	airtableClient := airtable.NewClient(cfg.Airtable)
	verifyClient := twilio.NewVerifyClient(cfg.Twilio)
	pricerClient := intelimotor.NewClient(cfg.Intelimotor)
	uploader := storage.NewR2Client(cfg.Storage)
	reportRenderer := infrapdf.NewValuationReport()

	authUC := auth.NewUseCase(profileRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	vehicleUC := vehicles.NewUseCase(vehicleRepo, edgeCache, airtableClient, log.Zerolog())
	financingUC := financing.NewUseCase(applicationRepo, vehicleRepo)
	verificationUC := verification.NewUseCase(profileRepo, otpRepo, verifyClient, log.Zerolog())
	photoUC := photos.NewUseCase(vehicleRepo, uploader, edgeCache, log.Zerolog())
	consignmentUC := consignment.NewUseCase(consignmentRepo, uploader, log.Zerolog())
	favoritesUC := favorites.NewUseCase(favoriteRepo, vehicleRepo)
	valuationUC := valuation.NewUseCase(profileRepo, pricerClient, reportRenderer)
	syncUC := appsync.NewUseCase(vehicleRepo, airtableClient, vehicleUC, edgeCache, log.Zerolog())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    20 * 1024 * 1024,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "TREFA API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		VehicleUC:      vehicleUC,
		FinancingUC:    financingUC,
		VerificationUC: verificationUC,
		PhotoUC:        photoUC,
		ConsignmentUC:  consignmentUC,
		FavoritesUC:    favoritesUC,
		ValuationUC:    valuationUC,
		SyncUC:         syncUC,
		Uploader:       uploader,
		JWTSecret:      cfg.JWT.Secret,
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
