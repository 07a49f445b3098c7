package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/clinic-backend/internal/app"
	"github.com/angelmondragon/clinic-backend/internal/attachments"
	"github.com/angelmondragon/clinic-backend/internal/cron"
	"github.com/angelmondragon/clinic-backend/internal/ordering"
	"github.com/angelmondragon/clinic-backend/pkg/config"
	"github.com/angelmondragon/clinic-backend/pkg/db"
	"github.com/angelmondragon/clinic-backend/pkg/lock"
	"github.com/angelmondragon/clinic-backend/pkg/logger"
	"github.com/angelmondragon/clinic-backend/pkg/metrics"
	"github.com/angelmondragon/clinic-backend/pkg/migrate"
	"github.com/angelmondragon/clinic-backend/pkg/redis"
	"github.com/angelmondragon/clinic-backend/pkg/storage/local"
)

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	only := flag.String("jobs", "", "comma separated job names to run (default: all)")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	store, err := local.New(cfg.Storage.UploadsDir)
	if err != nil {
		logg.Error(context.Background(), "failed to open uploads directory", err)
		os.Exit(1)
	}
	references, err := attachments.NewReferenceIndex(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create reference index", err)
		os.Exit(1)
	}
	sweep, err := cron.NewOrphanUploadSweepJob(cron.OrphanUploadSweepJobParams{
		Logger:      logg,
		Storage:     store,
		References:  references,
		GracePeriod: cfg.Cron.OrphanGracePeriod,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orphan upload sweep", err)
		os.Exit(1)
	}

	// The repair job takes the same scope locks as API writers.
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
	repair, err := cron.NewDisplayOrderRepairJob(cron.DisplayOrderRepairJobParams{
		Logger:      logg,
		Collections: collections.All(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create display order repair", err)
		os.Exit(1)
	}

	registry, err := cron.NewRegistry(sweep, repair).Only(splitJobs(*only)...)
	if err != nil {
		logg.Error(context.Background(), "invalid job selection", err)
		os.Exit(1)
	}

	cycleLock, err := lock.NewRedisLock(redisClient, redisClient.LockKey("cron-worker", cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     cycleLock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"jobs":        strings.Join(registry.Names(), ","),
	})

	if *once {
		logg.Info(ctx, "running single cron cycle")
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cron cycle failed", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, fmt.Sprintf("starting cron worker (interval %s)", cfg.Cron.Interval))
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func splitJobs(raw string) []string {
	var names []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
