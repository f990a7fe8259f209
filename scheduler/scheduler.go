package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	pvpservice "github.com/tsdmkp/idle-garage-game-backend/api/services/pvp"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/config"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/database"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/logger"
	"github.com/tsdmkp/idle-garage-game-backend/scheduler/jobs"
)

// loadConfig reads the configuration, failures go to a boot logger since cfg.LogLevel is unknown yet.
func loadConfig(load func() (*config.Config, error), out io.Writer) (*config.Config, error) {
	cfg, err := load()
	if err != nil {
		bootLog := logger.NewWithWriter(out, "info")
		bootLog.Error().Err(err).Str("component", "scheduler").Msg("couldn't initialize the configuration")
		return nil, err
	}

	return cfg, nil
}

func main() {
	cfg, err := loadConfig(config.Load, os.Stderr)
	if err != nil {
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel).With().Str("component", "scheduler").Logger()

	db, err := database.NewConnection(cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("couldn't connect to the database")
	}
	defer database.Close(db)

	// Runs the migrations.
	rawDb, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("couldn't get raw db connection")
	}

	if err := database.RunMigrations(cfg, rawDb); err != nil {
		log.Fatal().Err(err).Msg("couldn't run the migrations")
	}

	service := pvpservice.NewPvPService(&pvpservice.PvPServiceDeps{
		DB:     db,
		Config: cfg.PvP,
		Logger: log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := newScheduler(ctx, service, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}

	log.Info().Msg("starting scheduler")
	s.Start()

	// Wait for termination signal.
	<-ctx.Done()
	log.Info().Msg("shutting down scheduler")

	if err := s.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error shutting down scheduler")
	}
}

// pvpMaintenance is the part of the duel service run by the scheduler.
type pvpMaintenance interface {
	jobs.ExemptionSweeper
	jobs.DailyResetter
}

// newScheduler registers the duel maintenance jobs.
func newScheduler(ctx context.Context, service pvpMaintenance, log zerolog.Logger) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, err
	}

	// Exemption sweep, every hour.
	_, err = s.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(func() error {
			return jobs.SweepExemptions(ctx, service, log)
		}),
		gocron.WithName("exemption-sweep"),
		gocron.WithTags("pvp"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.JobOption(gocron.WithStartImmediately()),
	)
	if err != nil {
		return nil, err
	}

	// Daily counters, at midnight UTC.
	_, err = s.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(
				gocron.NewAtTime(0, 0, 0),
			),
		),
		gocron.NewTask(func() error {
			return jobs.ResetDailyCounters(ctx, service, log)
		}),
		gocron.WithName("daily-counters-reset"),
		gocron.WithTags("pvp"),
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}
