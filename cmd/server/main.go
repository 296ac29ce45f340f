package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/jurados-presence/data"
	"github.com/localnerve/jurados-presence/internal/assets"
	"github.com/localnerve/jurados-presence/internal/config"
	"github.com/localnerve/jurados-presence/internal/database"
	"github.com/localnerve/jurados-presence/internal/handlers"
	"github.com/localnerve/jurados-presence/internal/location"
	"github.com/localnerve/jurados-presence/internal/logger"
	"github.com/localnerve/jurados-presence/internal/middleware"
	"github.com/localnerve/jurados-presence/internal/prefs"
	"github.com/localnerve/jurados-presence/internal/presence"
	"github.com/localnerve/jurados-presence/internal/profile"
	"github.com/localnerve/jurados-presence/internal/recordstore"
	"github.com/localnerve/jurados-presence/internal/services"
	"github.com/localnerve/jurados-presence/internal/session"
	"go.uber.org/zap"

	_ "github.com/localnerve/jurados-presence/docs/api" // Swagger docs
)

// @title Jurado's Burger Presence API
// @version 1.0.0
// @description Locations, check-ins and profiles for Jurado's Burger
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/jurados-presence
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	// Connect to database (app pool)
	appDB, err := database.Connect(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to app database", zap.Error(err))
	}
	defer database.Close(appDB)

	// Connect to database (user pool)
	userDB, err := database.ConnectUser(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to user database", zap.Error(err))
	}
	defer database.Close(userDB)

	if err := database.AutoMigrate(appDB); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}

	store := recordstore.NewGormStore(userDB, zlog.Named("recordstore"), cfg.StoreTimeout)

	if cfg.SeedLocations {
		seeds, err := location.ParseSeeds(data.Locations)
		if err != nil {
			zlog.Fatal("failed to parse location seeds", zap.Error(err))
		}
		n, err := location.SeedLocations(ctx, recordstore.NewGormStore(appDB, zlog, cfg.StoreTimeout), seeds)
		if err != nil {
			zlog.Fatal("failed to seed locations", zap.Error(err))
		}
		zlog.Info("location seeding finished", zap.Int("written", n))
	}

	redisClient, err := prefs.Dial(ctx, cfg.RedisURL)
	if err != nil {
		zlog.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	userPrefs := prefs.NewRedis(redisClient)

	storage, err := newStorage(cfg)
	if err != nil {
		zlog.Fatal("failed to create asset storage", zap.Error(err))
	}

	presenceSvc := presence.NewService(store, zlog.Named("presence"))
	sessions := session.NewRegistry(store, userPrefs, zlog.Named("session"), cfg.SessionIdleTimeout)
	authz := services.NewAuthorizer(cfg, zlog.Named("authorizer"))

	routes := &handlers.Routes{
		Locations: &handlers.LocationHandler{
			Locations: location.NewService(store, zlog.Named("location")),
			Presence:  presenceSvc,
			Log:       zlog,
		},
		Presence: &handlers.PresenceHandler{Presence: presenceSvc, Sessions: sessions, Log: zlog},
		Profile: &handlers.ProfileHandler{
			Profiles: profile.NewService(store, storage, zlog.Named("profile")),
			Sessions: sessions,
			Log:      zlog,
		},
		Onboarding: &handlers.OnboardingHandler{Sessions: sessions, Log: zlog},
		Assets:     &handlers.AssetHandler{Resolver: assets.NewResolver(store, storage), Log: zlog},
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    12 * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("jurados")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Health
	app.Get("/health", func(c *fiber.Ctx) error {
		result := services.HealthCheck(c.UserContext(), cfg, appDB, userPrefs, zlog)
		status := fiber.StatusOK
		if result.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(result)
	})

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())
	routes.Register(api, middleware.AuthUser(authz))

	app.Use(handlers.NotFound)

	zlog.Info("authorizer will be initialized on first authenticated request")

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		zlog.Info("gracefully shutting down")
		_ = app.Shutdown()
	}()

	zlog.Info("starting server", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}

	zlog.Info("server stopped")
}

func newStorage(cfg *config.Config) (assets.Storage, error) {
	if cfg.AssetStore == "s3" {
		client, err := assets.NewS3Client(assets.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return assets.NewS3Storage(client, cfg.S3Bucket), nil
	}
	return assets.NewLocalStorage(cfg.AssetBaseDir)
}
