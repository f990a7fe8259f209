package pvpservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tsdmkp/idle-garage-game-backend/api/dto"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/database/models"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/messages"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/pvp/battle"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/pvp/league"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/pvp/score"
)

// opponent is a resolved defender, player or bot.
type opponent struct {
	id     string
	name   string
	car    score.Car
	power  int
	bot    *models.Bot
	player *models.Player
}

func (o *opponent) isBot() bool {
	return o.bot != nil
}

// challenge is everything known about a duel before settling it.
type challenge struct {
	attacker      *models.Player
	attackerCar   score.Car
	attackerPower int
	tier          league.Tier
	defender      *opponent
	verdict       battle.Verdict
}

// ResolveChallenge runs a full duel for the attacker: limit check, entry fee, battle and settlement.
// The entry fee is refunded whenever the duel can't be completed.
func (s *PvPService) ResolveChallenge(ctx context.Context, attackerId string, opponentId string) (*dto.MatchResult, error) {
	opponentId = strings.TrimSpace(opponentId)
	if opponentId == "" {
		return nil, ErrMissingOpponent
	}
	if opponentId == attackerId {
		return nil, ErrSelfChallenge
	}

	unlock, err := s.lockChallenge(ctx, attackerId)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.checkLimit(ctx, s.store, attackerId, s.now()); err != nil {
		return nil, err
	}

	attacker, err := s.loadPlayer(ctx, s.store, attackerId, ErrPlayerNotFound)
	if err != nil {
		return nil, err
	}

	car, ok := s.activeCar(attacker)
	if !ok {
		return nil, ErrNoActiveCar
	}

	if attacker.Fuel <= 0 {
		return nil, ErrInsufficientResource
	}

	power := s.catalog.Score(car)
	tier := s.leagues.ForPower(power)

	if err := s.debitEntryFee(ctx, attackerId, tier); err != nil {
		return nil, err
	}

	defender, err := s.resolveOpponent(ctx, opponentId)
	if err != nil {
		return nil, s.refund(ctx, attackerId, tier.EntryFee, err)
	}

	c := &challenge{
		attacker:      attacker,
		attackerCar:   car,
		attackerPower: power,
		tier:          tier,
		defender:      defender,
		verdict:       s.resolver.Resolve(car, defender.car),
	}

	match, err := s.newMatch(c)
	if err != nil {
		return nil, s.refund(ctx, attackerId, tier.EntryFee, err)
	}

	if err := s.settle(ctx, c, match); err != nil {
		return nil, s.refund(ctx, attackerId, tier.EntryFee, err)
	}

	s.afterSettlement(ctx, c, match)

	yourResult := dto.ResultLose
	if c.verdict.AttackerWon() {
		yourResult = dto.ResultWin
	}

	return &dto.MatchResult{
		MatchId:       match.PublicID,
		League:        tier.Key,
		Winner:        match.Winner,
		YourResult:    yourResult,
		YourReward:    match.AttackerReward,
		EntryFee:      tier.EntryFee,
		OpponentName:  defender.name,
		IsRealPlayer:  !defender.isBot(),
		AttackerScore: c.verdict.AttackerScore,
		DefenderScore: c.verdict.DefenderScore,
		Margin:        c.verdict.Margin,
		Trace:         c.verdict.Trace,
	}, nil
}

// lockChallenge takes the per attacker lock when redis is available.
// Without redis the conditional updates still prevent double spending.
func (s *PvPService) lockChallenge(ctx context.Context, attackerId string) (func(), error) {
	if s.lock == nil {
		return func() {}, nil
	}

	key := fmt.Sprintf("pvp:challenge:%s", attackerId)
	acquired, err := s.lock.Acquire(ctx, key, s.lockTTL)
	if err != nil {
		s.log.Warn().Err(err).Str("playerId", attackerId).Msg("couldn't take the challenge lock, continuing without it")
		return func() {}, nil
	}

	if !acquired {
		return nil, ErrChallengeInProgress
	}

	return func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), key); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("couldn't release the challenge lock")
		}
	}, nil
}

// debitEntryFee takes the fee only if the attacker still has coins and fuel.
func (s *PvPService) debitEntryFee(ctx context.Context, attackerId string, tier league.Tier) error {
	debited, err := s.store.Players().DebitEntryFee(ctx, attackerId, tier.EntryFee)
	if err != nil {
		return err
	}
	if debited {
		return nil
	}

	// Find out which condition failed.
	attacker, err := s.loadPlayer(ctx, s.store, attackerId, ErrPlayerNotFound)
	if err != nil {
		return err
	}
	if attacker.Fuel <= 0 {
		return ErrInsufficientResource
	}

	return fmt.Errorf("%w: "+messages.NotEnoughCoins, ErrInsufficientCurrency, tier.Key, tier.EntryFee)
}

// refund gives the entry fee back and returns cause.
func (s *PvPService) refund(ctx context.Context, attackerId string, fee int64, cause error) error {
	if err := s.store.Players().Credit(context.WithoutCancel(ctx), attackerId, fee); err != nil {
		s.log.Error().Err(err).AnErr("cause", cause).Str("playerId", attackerId).Int64("fee", fee).Msg("couldn't refund the entry fee")
		return errors.Join(cause, fmt.Errorf("couldn't refund the entry fee: %w", err))
	}

	return cause
}

// resolveOpponent loads the defender, a bot when the id has the bot prefix.
func (s *PvPService) resolveOpponent(ctx context.Context, opponentId string) (*opponent, error) {
	if strings.HasPrefix(opponentId, models.BotPrefix) {
		botId, ok := models.ParseBotID(opponentId)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrOpponentNotFound, opponentId)
		}

		bot, err := s.store.Bots().GetBotById(ctx, botId)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOpponentNotFound, opponentId)
		}
		if err != nil {
			return nil, err
		}

		car := s.botCar(bot)
		return &opponent{
			id:    opponentId,
			name:  bot.Name,
			car:   car,
			power: s.catalog.Score(car),
			bot:   bot,
		}, nil
	}

	player, err := s.loadPlayer(ctx, s.store, opponentId, ErrOpponentNotFound)
	if err != nil {
		return nil, err
	}

	car, ok := s.activeCar(player)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no car", ErrOpponentNotFound, opponentId)
	}

	return &opponent{
		id:     opponentId,
		name:   player.DisplayName(),
		car:    car,
		power:  s.catalog.Score(car),
		player: player,
	}, nil
}
