package pvpservice

import (
	"context"
	"time"

	"github.com/tsdmkp/idle-garage-game-backend/api/dto"
	"github.com/tsdmkp/idle-garage-game-backend/api/repositories"
)

// GetLimitStatus reports if a player can start a battle.
// Every match in the trailing window counts, as attacker or defender, unless exempted.
func (s *PvPService) GetLimitStatus(ctx context.Context, playerId string) (*dto.LimitStatus, error) {
	return s.limitStatus(ctx, playerId)
}

func (s *PvPService) limitStatus(ctx context.Context, playerId string) (*dto.LimitStatus, error) {
	stats, err := s.store.Matches().GetWindowStats(ctx, playerId, s.now().Add(-s.window))
	if err != nil {
		return nil, err
	}

	status := &dto.LimitStatus{
		CanBattle:    stats.Active() < s.maxBattles,
		CurrentCount: stats.Active(),
		MaxAllowed:   s.maxBattles,
	}

	// The oldest counted match is the first one to leave the window.
	if stats.OldestActiveAt != nil {
		resetAt := stats.OldestActiveAt.Add(s.window).UTC()
		status.ResetAt = &resetAt
	}

	return status, nil
}

// checkLimit fails with a RateLimitedError when the window ending at now is full.
func (s *PvPService) checkLimit(ctx context.Context, store repositories.Store, playerId string, now time.Time) error {
	count, err := store.Matches().CountActiveSince(ctx, playerId, now.Add(-s.window))
	if err != nil {
		return err
	}

	if count >= s.maxBattles {
		return &RateLimitedError{Current: count, Max: s.maxBattles}
	}

	return nil
}

// ResetLimit exempts the matches of the window so they stop counting.
// Nothing is written when the player can already battle.
func (s *PvPService) ResetLimit(ctx context.Context, playerId string) (*dto.LimitReset, error) {
	if _, err := s.loadPlayer(ctx, s.store, playerId, ErrPlayerNotFound); err != nil {
		return nil, err
	}

	now := s.now()
	status, err := s.limitStatus(ctx, playerId)
	if err != nil {
		return nil, err
	}

	if status.CanBattle {
		return &dto.LimitReset{
			CanBattleNow: true,
			CurrentCount: status.CurrentCount,
			MaxAllowed:   status.MaxAllowed,
			ResetTime:    now,
		}, nil
	}

	exempted, err := s.store.Matches().ExemptSince(ctx, playerId, now.Add(-s.window), now)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("playerId", playerId).Int64("matches", exempted).Msg("battle limit reset")

	status, err = s.limitStatus(ctx, playerId)
	if err != nil {
		return nil, err
	}

	return &dto.LimitReset{
		CanBattleNow:    status.CanBattle,
		CurrentCount:    status.CurrentCount,
		MaxAllowed:      status.MaxAllowed,
		MatchesExempted: exempted,
		ResetTime:       now,
	}, nil
}

// GetLimitDetails returns the full breakdown of the window.
func (s *PvPService) GetLimitDetails(ctx context.Context, playerId string) (*dto.LimitDetails, error) {
	now := s.now()
	from := now.Add(-s.window)

	stats, err := s.store.Matches().GetWindowStats(ctx, playerId, from)
	if err != nil {
		return nil, err
	}

	status, err := s.limitStatus(ctx, playerId)
	if err != nil {
		return nil, err
	}

	return &dto.LimitDetails{
		From:     from,
		To:       now,
		Total:    stats.Total,
		Active:   stats.Active(),
		Exempted: stats.Exempted,
		Limit:    *status,
	}, nil
}

// SweepExemptions clears the exemption marker of matches that left the window long ago.
// Only matches older than twice the window are touched.
func (s *PvPService) SweepExemptions(ctx context.Context) (int64, error) {
	return s.store.Matches().ClearExemptionsBefore(ctx, s.now().Add(-2*s.window))
}
