package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmsight/backend/internal/config"
	delivery "github.com/farmsight/backend/internal/delivery/http"
	"github.com/farmsight/backend/internal/repository/postgres"
	"github.com/farmsight/backend/internal/scheduler"
	"github.com/farmsight/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	dataRepo, closeRepo := connectRepository(cfg.DatabaseURL)
	defer closeRepo()

	// Dependency Injection: Services
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	geocodeSvc := service.NewGeocodeService(httpClient, cfg.GoogleMapsAPIKey, cfg.GeocoderCountry)
	weatherSvc := service.NewWeatherService(httpClient)
	adviceSvc := service.NewAdviceService()
	authSvc := service.NewAuthService(dataRepo, cfg.JWTSecret, cfg.TokenTTL)
	farmSvc := service.NewFarmService(dataRepo)
	expenseSvc := service.NewExpenseService(dataRepo)
	reportSvc := service.NewReportService(dataRepo)
	dashboardSvc := service.NewDashboardService(
		geocodeSvc, weatherSvc, adviceSvc, dataRepo,
		cfg.FallbackDistrict, cfg.ForecastDays,
	)

	// Periodic snapshot refresh
	sched := scheduler.New(cfg.FetchInterval, dashboardSvc, dataRepo)
	if err := sched.Start(); err != nil {
		log.Printf("Warning: failed to start snapshot scheduler: %v", err)
	}

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "FarmSight API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Routes
	handler := delivery.NewHandler(delivery.HandlerDeps{
		AuthSvc:      authSvc,
		FarmSvc:      farmSvc,
		ExpenseSvc:   expenseSvc,
		DashboardSvc: dashboardSvc,
		GeocodeSvc:   geocodeSvc,
		WeatherSvc:   weatherSvc,
		ReportSvc:    reportSvc,
		Repo:         dataRepo,
		TokenTTL:     cfg.TokenTTL,
	})
	delivery.SetupRoutes(app, handler)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	sched.Stop()
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	dashboardSvc.WaitBackground()
	log.Println("Server exited gracefully")
}

// connectRepository connects to PostgreSQL and runs migrations. When the
// database is unreachable the in-memory demo repository is used instead, so
// the app still starts and serves demo data.
func connectRepository(databaseURL string) (service.DataRepository, func()) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err == nil {
		err = pool.Ping(ctx)
	}
	if err == nil {
		err = postgres.Migrate(ctx, pool)
	}
	if err != nil {
		log.Printf("Warning: Could not connect to database: %v", err)
		log.Println("Running with in-memory demo data only")
		if pool != nil {
			pool.Close()
		}
		return postgres.NewMockRepository(), func() {}
	}

	log.Println("Connected to PostgreSQL")
	return postgres.NewPostgresRepository(pool), pool.Close
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
