package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "akreditasi-jurnal/docs" // This is for Swagger
	"akreditasi-jurnal/internal/auth"
	"akreditasi-jurnal/internal/config"
	"akreditasi-jurnal/internal/database"
	"akreditasi-jurnal/internal/handlers"
	"akreditasi-jurnal/internal/logger"
	"akreditasi-jurnal/internal/memstore"
	"akreditasi-jurnal/internal/middleware"
	"akreditasi-jurnal/internal/repository"
	"akreditasi-jurnal/internal/scheduler"
	"akreditasi-jurnal/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Akreditasi Jurnal API
// @version 1.0
// @description Evaluation template engine for journal accreditation and indexation instruments

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logger
	logger.Setup(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
		"log_level", logger.GetLevel(cfg.Log.Level),
		"db_driver", cfg.Database.Driver,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, healthCheck, closeStore, err := openStore(cfg, prometheus.DefaultRegisterer)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// Initialize services
	evalCfg := cfg.Evaluation
	templateService := service.NewTemplateService(store, evalCfg)
	treeAssembler := service.NewTreeAssembler(store, evalCfg)
	weightAccountant := service.NewWeightAccountant(store, evalCfg)
	cloner := service.NewHierarchyCloner(store, evalCfg)
	reorderCoordinator := service.NewReorderCoordinator(store, evalCfg)
	deletionGuard := service.NewDeletionGuard(store)

	// Background jobs
	var sched *scheduler.Scheduler
	if cfg.Scheduler.EnableWeightCheck {
		schedule, err := scheduler.ParseCron(cfg.Scheduler.WeightCheckCron)
		if err != nil {
			slog.Error("Invalid scheduler configuration", "error", err)
			os.Exit(1)
		}
		monitor := scheduler.NewWeightMonitor(templateService, weightAccountant)
		sched = scheduler.New(monitor.Task(schedule))
		sched.Start(ctx)
	}

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(auth.NewService(&cfg.JWT))
	rbacMw := middleware.NewRBACMiddleware(auth.NewRolePolicy())
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(ctx, &cfg.RateLimit)

	// Setup router
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, handlers.Handlers{
		Template:  handlers.NewTemplateHandler(templateService),
		Structure: handlers.NewStructureHandler(treeAssembler, weightAccountant, cloner, reorderCoordinator, deletionGuard),
		Audit:     handlers.NewAuditHandler(templateService),
		Health:    handlers.NewHealthHandler(healthCheck, cfg.App.Version),
	}, authMw, rbacMw)

	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, promhttp.Handler())
	}

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Apply global middleware
	handler := middleware.LoggingMiddleware(
		middleware.SecurityHeaders(
			corsMw.Handler(
				rateLimiter.Limit(
					middleware.Metrics(mux),
				),
			),
		),
	)

	// Create server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			stop()
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-ctx.Done()
	slog.Info("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	if sched != nil {
		sched.Wait()
	}

	slog.Info("Server stopped")
}

// openStore returns the configured storage backend with its health check
// and close function
func openStore(cfg *config.Config, reg prometheus.Registerer) (service.Store, func(context.Context) error, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		slog.Warn("Using in-memory storage - data is lost on shutdown")
		return memstore.New(), nil, func() {}, nil
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("Database connection established")

	closeDB := func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}

	if cfg.Metrics.Enabled {
		if err := db.RegisterMetrics(reg); err != nil {
			slog.Warn("Database pool metrics unavailable", "error", err)
		}
	}

	// Run database migrations
	migrator := database.NewMigrationExecutor(db.DB)
	if err := migrator.RunMigrations(database.MigrationsFS(cfg.Database.MigrationsPath)); err != nil {
		closeDB()
		return nil, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database migrations completed")

	store := service.NewPostgresStore(repository.NewStore(db.DB, cfg.Database.TxRetries))
	return store, db.HealthCheck, closeDB, nil
}
