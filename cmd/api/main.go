package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"ginutri/internal/catalog"
	"ginutri/internal/config"
	"ginutri/internal/db"
	apihttp "ginutri/internal/http"
	"ginutri/internal/metrics"
	"ginutri/internal/repository"
	"ginutri/internal/service"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	if cfg.LogDevelopment {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	base, err := catalog.Load()
	if err != nil {
		logger.Fatal("load catalog", zap.Error(err))
	}
	var catalogRepo repository.CatalogRepository = repository.NewStaticCatalogRepository(base)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal("db schema", zap.Error(err))
		}
		seeded, err := repository.SeedCatalog(ctx, pool, base)
		if err != nil {
			logger.Fatal("seed catalog", zap.Error(err))
		}
		if seeded {
			logger.Info("catalog seeded into postgres")
		}
		catalogRepo = repository.NewPgCatalogRepository(pool, base)
	}
	cat, err := catalogRepo.Load(ctx)
	if err != nil {
		logger.Fatal("load catalog", zap.Error(err))
	}

	var (
		sessionStore repository.SessionStore = repository.NewMemorySessionStore()
		limiter      service.RateLimiter     = service.NewMemoryRateLimiter(cfg.SessionRateWindow(), cfg.SessionRateLimit)
		redisClient  *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory sessions", zap.Error(err))
		} else {
			sessionStore = repository.NewRedisSessionStore(redisClient)
			limiter = service.NewRedisRateLimiter(redisClient, cfg.SessionRateWindow(), cfg.SessionRateLimit)
		}
		cancel()
		defer redisClient.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	sessionSvc := service.NewSessionService(logger, sessionStore, cat, m, service.SessionServiceConfig{
		TTL:         cfg.SessionTTL(),
		WaterGoalMl: cfg.WaterGoalMl,
	})
	tokenSvc := service.NewSessionTokenService(cfg.SessionSecret, cfg.SessionTTL())

	calcHandler := apihttp.NewCalculatorHandler(logger, m)
	sessionHandler := apihttp.NewSessionHandler(logger, sessionSvc, tokenSvc, limiter)
	router := apihttp.NewRouter(logger, reg, m, tokenSvc, calcHandler, sessionHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
