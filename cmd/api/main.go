package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/seo-compare/backend/internal/api"
	"github.com/seo-compare/backend/internal/cache"
	"github.com/seo-compare/backend/internal/cache/redis"
	"github.com/seo-compare/backend/internal/compare"
	"github.com/seo-compare/backend/internal/comparison"
	"github.com/seo-compare/backend/internal/metrics"
	"github.com/seo-compare/backend/internal/middleware/ratelimit"
	"github.com/seo-compare/backend/internal/middleware/security"
	"github.com/seo-compare/backend/internal/middleware/validation"
	"github.com/seo-compare/backend/internal/snapshot"
	"github.com/seo-compare/backend/internal/storage/sqlite"
	"github.com/seo-compare/backend/pkg/config"
	appLogger "github.com/seo-compare/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting SEO comparison API server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	checks := map[string]api.Pinger{"sqlite": sqliteClient}

	var remote cache.Remote
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, memoizing in process only", zap.Error(err))
		} else {
			defer redisClient.Close()
			remote = redisClient
			checks["redis"] = redisClient
		}
	}

	memo := cache.NewMemo(cfg.Cache.Size, time.Duration(cfg.Cache.TTLSec)*time.Second, remote)
	engine := compare.NewEngine(memo)

	source := snapshot.NewSource(sqliteClient, snapshot.Config{
		Timeout:          time.Duration(cfg.Fetch.TimeoutSec) * time.Second,
		MaxAttempts:      cfg.Fetch.MaxAttempts,
		FailureThreshold: cfg.Fetch.FailureThreshold,
	})

	defaults, err := defaultParams(cfg.Comparison)
	if err != nil {
		appLogger.Fatal("Invalid comparison defaults", zap.Error(err))
	}

	service := comparison.NewService(sqliteClient, source, engine, memo, defaults)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Burst:             cfg.RateLimit.Burst,
		Logger:            appLogger.GetLogger(),
	})
	defer limiter.Stop()

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Server.AllowedOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		IsDevelopment:  cfg.Server.Development,
	}))

	app.Get("/metrics", metrics.MetricsHandler())

	v1 := app.Group("/api/v1", limiter.Middleware(), validation.Middleware(validation.Config{
		Logger: appLogger.GetLogger(),
	}))
	api.RegisterRoutes(v1, api.Options{
		Service: service,
		Checks:  checks,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

func defaultParams(cfg config.ComparisonConfig) (compare.Params, error) {
	sortBy, err := compare.ParseSortBy(cfg.SortBy)
	if err != nil {
		return compare.Params{}, err
	}
	filter, err := compare.ParseStatusFilter(cfg.StatusFilter)
	if err != nil {
		return compare.Params{}, err
	}

	params := compare.Params{
		DirectoryDepth:   cfg.DirectoryDepth,
		MinSimilarity:    cfg.MinSimilarity,
		TopKeywordsCount: cfg.TopKeywordsCount,
		SortBy:           sortBy,
		StatusFilter:     filter,
	}
	return params, params.Validate()
}
