package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/polarisid/smartos-sub000/internal/cache"
	"github.com/polarisid/smartos-sub000/internal/config"
	"github.com/polarisid/smartos-sub000/internal/database"
	"github.com/polarisid/smartos-sub000/internal/db"
	"github.com/polarisid/smartos-sub000/internal/docfill"
	"github.com/polarisid/smartos-sub000/internal/handlers"
	"github.com/polarisid/smartos-sub000/internal/health"
	h "github.com/polarisid/smartos-sub000/internal/http"
	"github.com/polarisid/smartos-sub000/internal/logger"
	"github.com/polarisid/smartos-sub000/internal/middleware"
	"github.com/polarisid/smartos-sub000/internal/repositories"
	"github.com/polarisid/smartos-sub000/internal/services"
	"github.com/polarisid/smartos-sub000/internal/storage"
	"github.com/polarisid/smartos-sub000/internal/timeutil"
	"github.com/polarisid/smartos-sub000/migrations"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg)

	if err := timeutil.SetLocation(cfg.Business.Timezone); err != nil {
		logrus.WithError(err).Warnf("[Config] Unknown timezone %q, using %s", cfg.Business.Timezone, timeutil.Location)
	}

	ctx := context.Background()

	// Connect to database
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("[DB] Failed to connect")
	}
	defer pool.Close()
	logrus.Info("[DB] Connected to PostgreSQL")

	if cfg.Database.RunMigrations {
		migrator := database.NewMigrator(pool, migrations.FS)
		if err := migrator.RunMigrations(ctx); err != nil {
			logrus.WithError(err).Fatal("[DB] Failed to run migrations")
		}
	}

	// Redis is optional: without it route reads skip the cache and route locks are process-local
	if err := cache.Init(cfg); err != nil {
		logrus.WithError(err).Warn("[Redis] Unavailable, running without cache")
	}
	defer cache.Close()

	var templateFiles interface {
		docfill.Fetcher
		services.ObjectStore
	}
	store, err := storage.NewTemplateStore(ctx, cfg)
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		logrus.Warn("[Storage] No bucket credentials, document templates disabled")
		templateFiles = storage.Unconfigured{}
	case err != nil:
		logrus.WithError(err).Fatal("[Storage] Failed to configure template bucket")
	default:
		templateFiles = store
	}

	// Repositories
	routeRepo := repositories.NewRouteRepository(pool)
	orderRepo := repositories.NewServiceOrderRepository(pool)
	templateRepo := repositories.NewTemplateRepository(pool)

	// Services
	routeService := services.NewRouteService(routeRepo, orderRepo, cache.NewRouteLocker(cfg.Redis.LockTTL))
	routeService.SetCacheTTL(cfg.Redis.RouteTTL)

	renderer := docfill.NewRenderer(docfill.NewPDFLoader(templateFiles))
	documentService := services.NewDocumentService(templateRepo, templateFiles, renderer, routeService)

	// Handlers
	routeHandler := handlers.NewRouteHandler(routeService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	healthHandler := handlers.NewHealthHandler(health.NewHealthChecker(pool, cache.GetClient))

	router := h.NewRouter(routeHandler, documentHandler, healthHandler)
	corsMiddleware := middleware.NewCORS(cfg)
	handler := middleware.PanicRecovery(middleware.RequestLogger(corsMiddleware(router)))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("Server running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Graceful shutdown failed")
	}
}
