package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cabs/internal/app"
	"cabs/internal/config"
	"cabs/internal/handler"
	"cabs/internal/logger"
	"cabs/internal/pricing"
	internalRedis "cabs/internal/redis"
	"cabs/internal/repository/postgres"
	"cabs/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Warn("failed to initialize New Relic", zap.Error(err))
			nrApp = nil
		} else {
			log.Info("New Relic enabled", zap.String("app", cfg.NewRelic.AppName))
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	log.Info("connected to PostgreSQL", zap.String("host", cfg.Database.Host))

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	calculator, err := newCalculator(cfg.Pricing)
	if err != nil {
		log.Fatal("invalid pricing configuration", zap.Error(err))
	}

	server := wireServer(db, redisClient, nrApp, calculator, cfg, log)

	go func() {
		log.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Info("server exited")
}

func newCalculator(cfg config.PricingConfig) (*pricing.Calculator, error) {
	opts := []pricing.Option{pricing.WithCancelledEstimates(cfg.AllowCancelledEstimate)}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if loc != nil {
		opts = append(opts, pricing.WithLocation(loc))
	}

	return pricing.NewCalculator(opts...), nil
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
	calculator *pricing.Calculator,
	cfg *config.Config,
	log *zap.Logger,
) *http.Server {
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	transitRepo := postgres.NewTransitRepository(db)

	notificationService := service.NewNotificationService(log.Named("notifications"))
	receiptService := service.NewReceiptService(notificationService)
	transitService := service.NewTransitService(
		transitRepo, calculator, cacheStore, lockStore, notificationService, receiptService, log.Named("transits"),
	)
	reportService := service.NewDriverReportService(
		transitRepo, calculator, cacheStore, cfg.Pricing.ReportCacheTTL, log.Named("reports"),
	)

	router := app.NewRouter(app.RouterDeps{
		TransitHandler:      handler.NewTransitHandler(transitService, receiptService),
		DriverReportHandler: handler.NewDriverReportHandler(reportService),
		RedisClient:         redisClient,
		NewRelicApp:         nrApp,
		Logger:              log.Named("http"),
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
