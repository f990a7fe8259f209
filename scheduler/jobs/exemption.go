package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ExemptionSweeper clears the exemption marker of old matches.
type ExemptionSweeper interface {
	SweepExemptions(ctx context.Context) (int64, error)
}

// SweepExemptions clears the exemptions that can no longer affect a limit window.
func SweepExemptions(ctx context.Context, sweeper ExemptionSweeper, log zerolog.Logger) error {
	log.Info().Msg("starting exemption sweep")
	startTime := time.Now()

	cleared, err := sweeper.SweepExemptions(ctx)
	if err != nil {
		return fmt.Errorf("couldn't sweep the exemptions: %w", err)
	}

	log.Info().
		Int64("cleared", cleared).
		Dur("took", time.Since(startTime)).
		Msg("exemption sweep completed")

	return nil
}
