package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"jobboard/internal/config"
	"jobboard/internal/domain"
	"jobboard/internal/geocoder"
	"jobboard/internal/handler"
	"jobboard/internal/middleware"
	"jobboard/internal/repository"
	"jobboard/internal/service"
	"jobboard/internal/storage"
	"jobboard/pkg/database"
	"jobboard/pkg/redis"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	mongoClient, err := database.NewMongoConnection(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	db := mongoClient.Database(cfg.MongoDatabase)

	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
	} else {
		log.Warn().Msg("REDIS_URL not set, using in-process rate limiting and no geocode cache")
	}

	files, err := storage.NewDisk(cfg.UploadPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare upload directory")
	}

	// Repositories
	jobRepo := repository.NewJobRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Services
	geo := newGeocoder(cfg, redisClient)
	jobService := service.NewJobService(jobRepo, userRepo, geo, files, service.JobServiceConfig{
		DefaultLimit:      cfg.DefaultPageLimit,
		MaxLimit:          cfg.MaxPageLimit,
		ApplicationWindow: cfg.ApplicationWindow,
		StorageTimeout:    cfg.StorageTimeout,
	})
	applicationService := service.NewApplicationService(jobRepo, files, service.ApplicationServiceConfig{
		MaxFileSize:    cfg.MaxFileSize,
		StorageTimeout: cfg.StorageTimeout,
	})

	// Handlers
	jobHandler := handler.NewJobHandler(jobService, applicationService, cfg.MaxFileSize)
	healthHandler := handler.NewHealthHandler(healthChecks(mongoClient, redisClient))

	var limiter middleware.Limiter = middleware.NewLocalLimiter()
	if redisClient != nil {
		limiter = middleware.NewRedisLimiter(redisClient)
	}

	router := setupRouter(cfg, jobHandler, healthHandler, limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	log.Info().Str("port", cfg.Port).Str("environment", cfg.Environment).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	case err := <-serverErr:
		log.Error().Err(err).Msg("server failed, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	database.Close(shutdownCtx, mongoClient)
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis")
		}
	}

	log.Info().Msg("server exited")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func newGeocoder(cfg *config.Config, redisClient *goredis.Client) domain.Geocoder {
	var geo domain.Geocoder = geocoder.NewMapQuest(cfg.GeocoderAPIKey, cfg.GeocoderBaseURL, cfg.GeocoderTimeout)
	geo = geocoder.WithTimeout(geo, cfg.GeocoderTimeout)
	if redisClient != nil {
		geo = geocoder.NewCached(geo, redisClient, cfg.GeocodeCacheTTL)
	}
	return geo
}

func healthChecks(mongoClient *mongo.Client, redisClient *goredis.Client) map[string]handler.Pinger {
	checks := map[string]handler.Pinger{
		"database": func(ctx context.Context) error {
			return mongoClient.Ping(ctx, readpref.Primary())
		},
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}

func setupRouter(
	cfg *config.Config,
	jobHandler *handler.JobHandler,
	healthHandler *handler.HealthHandler,
	limiter middleware.Limiter,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxFileSize
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	handler.RegisterRoutes(router.Group("/api/v1"), jobHandler, healthHandler, handler.RouteConfig{
		JWTSecret:   cfg.JWTSecret,
		Limiter:     limiter,
		ApplyLimit:  cfg.ApplyRateLimit,
		ApplyWindow: cfg.ApplyRateWindow,
	})

	return router
}
