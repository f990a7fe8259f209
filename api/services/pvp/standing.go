package pvpservice

import (
	"context"

	"github.com/tsdmkp/idle-garage-game-backend/api/dto"
)

// GetLeagueStanding returns the league view of a player.
// The tier always comes from the current car, the stored snapshot only follows it.
func (s *PvPService) GetLeagueStanding(ctx context.Context, playerId string) (*dto.LeagueStanding, error) {
	player, err := s.loadPlayer(ctx, s.store, playerId, ErrPlayerNotFound)
	if err != nil {
		return nil, err
	}

	car, ok := s.activeCar(player)
	if !ok {
		return nil, ErrNoActiveCar
	}

	power := s.catalog.Score(car)
	tier := s.leagues.ForPower(power)

	record, err := s.store.Leagues().GetOrCreate(ctx, playerId, tier.Key)
	if err != nil {
		return nil, err
	}

	if record.LeagueSnapshot != tier.Key {
		if err := s.store.Leagues().UpdateSnapshot(ctx, playerId, tier.Key); err != nil {
			return nil, err
		}
		record.LeagueSnapshot = tier.Key
	}

	position, err := s.store.Leagues().GetPosition(ctx, tier.Key, record.LeaguePoints)
	if err != nil {
		return nil, err
	}

	size, err := s.store.Leagues().CountInLeague(ctx, tier.Key)
	if err != nil {
		return nil, err
	}

	standing := s.reputation.ForWins(record.TotalWins)
	reputation := dto.ReputationInfo{
		Key:      standing.Rank.Key,
		Name:     standing.Rank.Name,
		Icon:     standing.Rank.Icon,
		Progress: standing.Progress,
	}
	if standing.Next != nil {
		reputation.Next = standing.Next.Key
	}

	return &dto.LeagueStanding{
		League:   tierInfo(tier),
		CarName:  car.Name,
		CarPower: power,
		Stats: dto.LeagueStats{
			LeaguePoints:  record.LeaguePoints,
			TotalWins:     record.TotalWins,
			TotalLosses:   record.TotalLosses,
			WinsToday:     record.WinsToday,
			LossesToday:   record.LossesToday,
			WinStreak:     record.WinStreak,
			BestWinStreak: record.BestWinStreak,
			WinRate:       winRate(record.TotalWins, record.TotalLosses),
			LastBattleAt:  record.LastBattleAt,
		},
		Reputation: reputation,
		Position:   position,
		LeagueSize: size,
		CanFight:   player.Fuel > 0,
	}, nil
}

// ResetDailyCounters zeroes the daily win and loss counters of every player.
func (s *PvPService) ResetDailyCounters(ctx context.Context) (int64, error) {
	return s.store.Leagues().ResetDaily(ctx)
}
