package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/clinic-backend/api/routes"
	"github.com/angelmondragon/clinic-backend/internal/app"
	"github.com/angelmondragon/clinic-backend/internal/attachments"
	"github.com/angelmondragon/clinic-backend/internal/auth"
	"github.com/angelmondragon/clinic-backend/internal/gallery"
	"github.com/angelmondragon/clinic-backend/internal/ordering"
	"github.com/angelmondragon/clinic-backend/internal/promotions"
	"github.com/angelmondragon/clinic-backend/internal/services"
	"github.com/angelmondragon/clinic-backend/internal/staff"
	"github.com/angelmondragon/clinic-backend/internal/timeline"
	"github.com/angelmondragon/clinic-backend/internal/users"
	"github.com/angelmondragon/clinic-backend/pkg/auth/session"
	"github.com/angelmondragon/clinic-backend/pkg/config"
	"github.com/angelmondragon/clinic-backend/pkg/db"
	"github.com/angelmondragon/clinic-backend/pkg/lock"
	"github.com/angelmondragon/clinic-backend/pkg/logger"
	"github.com/angelmondragon/clinic-backend/pkg/metrics"
	"github.com/angelmondragon/clinic-backend/pkg/migrate"
	"github.com/angelmondragon/clinic-backend/pkg/redis"
	"github.com/angelmondragon/clinic-backend/pkg/storage/local"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	var locker ordering.Locker
	if cfg.FeatureFlags.ScopeLock {
		scopeLocker, err := lock.NewScopeLocker(lock.ScopeLockerParams{
			Store: redisClient,
			Keys:  redisClient,
			TTL:   cfg.FeatureFlags.ScopeLockTTL,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create scope locker", err)
			os.Exit(1)
		}
		locker = scopeLocker
	}

	collections, err := app.NewCollections(dbClient, locker, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ordering managers", err)
		os.Exit(1)
	}

	store, err := local.New(cfg.Storage.UploadsDir)
	if err != nil {
		logg.Error(context.Background(), "failed to open uploads directory", err)
		os.Exit(1)
	}
	files, err := attachments.NewManager(attachments.Params{
		Storage:    store,
		PublicPath: cfg.Storage.NormalizedPublicPath(),
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create attachments manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	promotionService, err := promotions.NewService(promotions.ServiceParams{
		Repository: promotions.NewRepository(dbClient.DB()),
		Ordering:   collections.Promotions,
		Files:      files,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create promotion service", err)
		os.Exit(1)
	}

	serviceService, err := services.NewService(services.ServiceParams{
		Repository: services.NewRepository(dbClient.DB()),
		Ordering:   collections.Services,
		Files:      files,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create services service", err)
		os.Exit(1)
	}

	staffService, err := staff.NewService(staff.ServiceParams{
		Repository: staff.NewRepository(dbClient.DB()),
		Files:      files,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create staff service", err)
		os.Exit(1)
	}

	timelineService, err := timeline.NewService(timeline.ServiceParams{
		Repository: timeline.NewRepository(dbClient.DB()),
		Ordering:   collections.Timeline,
		Files:      files,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create timeline service", err)
		os.Exit(1)
	}

	galleryRepo := gallery.NewRepository(dbClient.DB())
	categoryService, err := gallery.NewCategoryService(gallery.CategoryServiceParams{
		Repository: galleryRepo,
		Ordering:   collections.GalleryCategories,
		Files:      files,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create gallery category service", err)
		os.Exit(1)
	}
	imageService, err := gallery.NewImageService(gallery.ImageServiceParams{
		Repository: galleryRepo,
		Ordering:   collections.GalleryImages,
		Files:      files,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create gallery image service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"uploads": store.Root(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:            cfg,
			Logger:            logg,
			DB:                dbClient,
			Redis:             redisClient,
			Sessions:          sessionManager,
			RateLimits:        redisClient,
			Metrics:           prometheus.DefaultGatherer,
			HTTPMetrics:       metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
			Auth:              authService,
			Promotions:        promotionService,
			Services:          serviceService,
			Staff:             staffService,
			Timeline:          timelineService,
			GalleryCategories: categoryService,
			GalleryImages:     imageService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}
