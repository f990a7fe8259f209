package jobs

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// DailyResetter zeroes the daily battle counters.
type DailyResetter interface {
	ResetDailyCounters(ctx context.Context) (int64, error)
}

// ResetDailyCounters starts a new battle day for every player.
func ResetDailyCounters(ctx context.Context, resetter DailyResetter, log zerolog.Logger) error {
	reset, err := resetter.ResetDailyCounters(ctx)
	if err != nil {
		return fmt.Errorf("couldn't reset the daily counters: %w", err)
	}

	log.Info().Int64("players", reset).Msg("daily counters reset")
	return nil
}
