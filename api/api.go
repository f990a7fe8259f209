package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/tsdmkp/idle-garage-game-backend/api/cache"
	grpcserver "github.com/tsdmkp/idle-garage-game-backend/api/grpc"
	"github.com/tsdmkp/idle-garage-game-backend/api/modules"
	"github.com/tsdmkp/idle-garage-game-backend/api/routes"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/config"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/database"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/logger"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/redis"
	"github.com/tsdmkp/idle-garage-game-backend/scheduler/jobs"
)

const shutdownTimeout = 15 * time.Second

// loadConfig reads the configuration, failures go to a boot logger since cfg.LogLevel is unknown yet.
func loadConfig(load func() (*config.Config, error), out io.Writer) (*config.Config, error) {
	cfg, err := load()
	if err != nil {
		bootLog := logger.NewWithWriter(out, "info")
		bootLog.Error().Err(err).Str("component", "api").Msg("couldn't initialize the configuration")
		return nil, err
	}

	return cfg, nil
}

func main() {
	cfg, err := loadConfig(config.Load, os.Stderr)
	if err != nil {
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel).With().Str("component", "api").Logger()

	db, err := database.NewConnection(cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("couldn't connect to the database")
	}
	defer database.Close(db)

	rawDb, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("couldn't get raw db connection")
	}

	if err := database.RunMigrations(cfg, rawDb); err != nil {
		log.Fatal().Err(err).Msg("couldn't run the migrations")
	}

	// Redis only adds the challenge lock, the api runs without it.
	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running without the challenge lock")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var uploader logger.Uploader
	if cfg.Bucket.Enabled() {
		uploader = logger.NewS3Uploader(cfg.Bucket)
	}

	auditLog, err := logger.NewAuditLog(uploader, cfg.Bucket.LogBucket)
	if err != nil {
		log.Fatal().Err(err).Msg("couldn't create the audit log")
	}
	defer auditLog.Close()

	memCache := cache.NewMemCache(time.Minute)
	defer memCache.Close()

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create a module with all necessary handlers.
	module := modules.NewModule(&modules.ModuleDependencies{
		Config:   cfg,
		Logger:   log,
		DB:       db,
		Redis:    redisClient,
		Audit:    auditLog,
		MemCache: memCache,
	})

	// Create a new router with the routes setup.
	router := routes.NewRouter(module.Router)
	router.SetupRoutes(module.PvPHandler)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           c.Handler(router.Engine),
		ReadHeaderTimeout: 10 * time.Second,
	}

	healthServer, err := grpcserver.NewHealthServer(cfg.Server.GrpcPort, log)
	if err != nil {
		log.Fatal().Err(err).Msg("couldn't start the health server")
	}

	auditScheduler, err := newAuditScheduler(auditLog, log)
	if err != nil {
		log.Fatal().Err(err).Msg("couldn't create the audit scheduler")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the server.
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()
	healthServer.Start()
	auditScheduler.Start()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	healthServer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	if err := auditScheduler.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error shutting down the audit scheduler")
	}

	// Ship what is left before the file is removed.
	if err := jobs.UploadAuditLog(shutdownCtx, auditLog, hostname(), time.Now, log); err != nil {
		log.Error().Err(err).Msg("couldn't upload the last audit entries")
	}

	log.Info().Msg("server stopped gracefully")
}

// newAuditScheduler uploads the battle audit log every hour.
func newAuditScheduler(auditLog *logger.AuditLog, log zerolog.Logger) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	host := hostname()
	_, err = s.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(func() {
			if err := jobs.UploadAuditLog(context.Background(), auditLog, host, time.Now, log); err != nil {
				log.Error().Err(err).Msg("audit upload failed")
			}
		}),
		gocron.WithName("audit-upload"),
		gocron.WithTags("audit"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func hostname() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "api"
	}
	return host
}
