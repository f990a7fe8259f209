package pvpservice

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tsdmkp/idle-garage-game-backend/api/dto"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/database/models"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/pvp/league"
)

const (
	activityWindow     = 7 * 24 * time.Hour
	onlineWindow       = 30 * time.Minute
	playerPoolSize     = 50
	maxPlayerOpponents = 3
	playerPowerRange   = 100
	botPowerRange      = 50
	maxBotOpponents    = 8

	priorityPlayer = 1
	priorityBot    = 2
)

// ListOpponents returns real players of a similar power first, then bots of the same league.
// The requester is always read fresh, only the bot sample of a power range may be cached.
// Never writes.
func (s *PvPService) ListOpponents(ctx context.Context, playerId string) (*dto.OpponentList, error) {
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
	now := s.now()

	var (
		players []dto.Opponent
		bots    []dto.Opponent
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		found, err := s.findPlayerOpponents(gCtx, playerId, power, now)
		players = found
		return err
	})

	g.Go(func() error {
		found, err := s.findBotOpponents(gCtx, tier, power)
		bots = found
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	opponents := append(players, bots...)
	slices.SortStableFunc(opponents, func(a, b dto.Opponent) int {
		return cmp.Compare(a.Priority, b.Priority)
	})

	return &dto.OpponentList{
		Opponents:    opponents,
		PlayerLeague: tier.Key,
		PlayerPower:  power,
		EntryFee:     tier.EntryFee,
	}, nil
}

// findPlayerOpponents scans the recently active players for a close power.
func (s *PvPService) findPlayerOpponents(ctx context.Context, playerId string, power int, now time.Time) ([]dto.Opponent, error) {
	candidates, err := s.store.Players().GetRecentlyActive(ctx, playerId, now.Add(-activityWindow), playerPoolSize)
	if err != nil {
		return nil, err
	}

	opponents := make([]dto.Opponent, 0, maxPlayerOpponents)
	for _, candidate := range candidates {
		car, ok := s.activeCar(candidate)
		if !ok {
			continue
		}

		candidatePower := s.catalog.Score(car)
		diff := candidatePower - power
		if diff < -playerPowerRange || diff > playerPowerRange {
			continue
		}

		opponents = append(opponents, dto.Opponent{
			Id:              candidate.ID,
			Type:            dto.OpponentPlayer,
			Username:        candidate.DisplayName(),
			CarName:         car.Name,
			CarPower:        candidatePower,
			League:          s.leagues.ForPower(candidatePower).Key,
			IsOnline:        now.Sub(candidate.LastExitTime) < onlineWindow,
			LastActive:      candidate.LastExitTime,
			PowerDifference: diff,
			Priority:        priorityPlayer,
		})

		if len(opponents) == maxPlayerOpponents {
			break
		}
	}

	if len(opponents) == 0 {
		return opponents, nil
	}

	ids := make([]string, len(opponents))
	for i, opponent := range opponents {
		ids[i] = opponent.Id
	}

	records, err := s.store.Leagues().GetByPlayerIds(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range opponents {
		record := records[opponents[i].Id]
		s.annotate(&opponents[i], record.TotalWins, record.TotalLosses)
	}

	return opponents, nil
}

// findBotOpponents samples bots of the league by their declared power.
// The listed power is the recomputed one.
func (s *PvPService) findBotOpponents(ctx context.Context, tier league.Tier, power int) ([]dto.Opponent, error) {
	candidates, err := s.botSample(ctx, tier.Key, power-botPowerRange, power+botPowerRange)
	if err != nil {
		return nil, err
	}

	opponents := make([]dto.Opponent, 0, len(candidates))
	for _, bot := range candidates {
		botPower := s.catalog.Score(s.botCar(bot))
		opponent := dto.Opponent{
			Id:              bot.OpponentID(),
			Type:            dto.OpponentBot,
			Username:        bot.Name,
			CarName:         bot.CarName,
			CarPower:        botPower,
			League:          bot.League,
			IsOnline:        true,
			LastActive:      bot.LastOnline,
			PowerDifference: botPower - power,
			Priority:        priorityBot,
		}
		s.annotate(&opponent, bot.Wins, bot.Losses)
		opponents = append(opponents, opponent)
	}

	return opponents, nil
}

// botSample returns the bot candidates of a league and power range.
// The cached slice is shared, callers must not modify the bots.
func (s *PvPService) botSample(ctx context.Context, leagueKey string, minPower, maxPower int) ([]*models.Bot, error) {
	load := func() (any, error) {
		return s.store.Bots().FindCandidates(ctx, leagueKey, minPower, maxPower, maxBotOpponents)
	}

	if s.bots == nil {
		bots, err := load()
		if err != nil {
			return nil, err
		}
		return bots.([]*models.Bot), nil
	}

	value, err := s.bots.GetOrLoad(botSampleKey(leagueKey, minPower, maxPower), botSampleTTL, load)
	if err != nil {
		return nil, err
	}
	return value.([]*models.Bot), nil
}

func botSampleKey(leagueKey string, minPower, maxPower int) string {
	return fmt.Sprintf("bots:%s:%d:%d", leagueKey, minPower, maxPower)
}

func (s *PvPService) annotate(opponent *dto.Opponent, wins, losses int) {
	opponent.TotalWins = wins
	opponent.TotalLosses = losses
	opponent.WinRate = winRate(wins, losses)
	opponent.Reputation = s.reputation.ForWins(wins).Rank.Key
}

