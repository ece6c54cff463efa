package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smartfarm/internal/config"
	"smartfarm/internal/handlers"
	"smartfarm/internal/metrics"
	"smartfarm/internal/middleware"
	"smartfarm/internal/repositories"
	"smartfarm/internal/services"
	"smartfarm/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the process-level resources the HTTP app is built on.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	Events services.EventPublisher // nil disables event publication
}

// App is the wired HTTP application.
type App struct {
	Fiber   *fiber.App
	Auth    *services.AuthService
	Metrics *metrics.Metrics
}

// NewApp wires repositories, services and handlers into a fiber app.
func NewApp(d Deps) (*App, error) {
	cfg, log := d.Config, d.Log

	store, err := storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.PublicPath, cfg.Upload.MaxBytes())
	if err != nil {
		return nil, err
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(d.DB)
	productRepo := repositories.NewGORMProductRepository(d.DB)
	adviceRepo := repositories.NewGORMAdviceRepository(d.DB)

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TTL(), d.Events, log.Named("auth"))
	productService := services.NewProductService(productRepo, userRepo, store, d.Events, log.Named("products"))
	adviceService := services.NewAdviceService(adviceRepo, store, d.Events, log.Named("advice"))
	adminService := services.NewAdminService(userRepo, productRepo, adviceRepo, d.Events, log.Named("admin"))

	m := metrics.New()

	// --- Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: handlers.ErrorHandler(log),
		// room for the multipart envelope around a maximum-size image
		BodyLimit: int(cfg.Upload.MaxBytes()) + 1<<20,
	})

	// --- Middleware ---
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			log.Error("PANIC recovered",
				zap.Any("error", e),
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
				zap.Stack("stack"),
			)
		},
	}))
	app.Use(cors.New(corsConfig(cfg.CORS.AllowedOrigins)))
	app.Use(middleware.Metrics(m))
	app.Use(middleware.RequestLogger(log.Named("http")))

	app.Static(cfg.Upload.PublicPath, store.Dir())

	// --- Health Check Endpoint ---
	app.Get("/health", healthHandler(d.DB))
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	// --- API Routes ---
	api := app.Group("/api")
	auth := middleware.AuthRequired(authService, log.Named("auth"))

	handlers.NewAuthHandler(authService, m, log).RegisterRoutes(api, auth)
	handlers.NewProductHandler(productService, log).RegisterRoutes(api, auth)
	handlers.NewAdviceHandler(adviceService, log).RegisterRoutes(api, auth)
	handlers.NewAdminHandler(adminService, log).RegisterRoutes(api, auth)

	return &App{Fiber: app, Auth: authService, Metrics: m}, nil
}

func corsConfig(origins []string) cors.Config {
	allowed := strings.Join(origins, ",")
	return cors.Config{
		AllowOrigins: allowed,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
		// credentials cannot be combined with a wildcard origin
		AllowCredentials: allowed != "" && !strings.Contains(allowed, "*"),
	}
}

func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, code := "healthy", fiber.StatusOK
		if err := ping(c.UserContext(), db); err != nil {
			status, code = "unhealthy", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql.DB: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
