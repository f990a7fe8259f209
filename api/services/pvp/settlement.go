package pvpservice

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/tsdmkp/idle-garage-game-backend/api/dto"
	"github.com/tsdmkp/idle-garage-game-backend/api/repositories"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/database/models"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/logger"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/messages"
)

// newMatch builds the record of a resolved duel. Rewards come from the attacker tier.
func (s *PvPService) newMatch(c *challenge) (*models.Match, error) {
	publicId, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("couldn't generate the match id: %w", err)
	}

	trace, err := json.Marshal(c.verdict.Trace)
	if err != nil {
		return nil, fmt.Errorf("couldn't encode the battle trace: %w", err)
	}

	match := &models.Match{
		PublicID:        publicId,
		AttackerID:      c.attacker.ID,
		DefenderID:      c.defender.id,
		League:          c.tier.Key,
		AttackerCarName: c.attackerCar.Name,
		DefenderCarName: c.defender.car.Name,
		AttackerPower:   c.attackerPower,
		DefenderPower:   c.defender.power,
		Winner:          models.WinnerDefender,
		AttackerReward:  c.tier.LoseReward,
		DefenderReward:  c.tier.WinReward,
		AttackerScore:   c.verdict.AttackerScore,
		DefenderScore:   c.verdict.DefenderScore,
		Trace:           datatypes.JSON(trace),
		MatchDate:       s.now(),
	}

	if c.verdict.AttackerWon() {
		match.Winner = models.WinnerAttacker
		match.AttackerReward = c.tier.WinReward
		match.DefenderReward = c.tier.LoseReward
	}

	return match, nil
}

// settle applies every effect of a duel in one transaction.
// Either all of them are visible or none is.
func (s *PvPService) settle(ctx context.Context, c *challenge, match *models.Match) error {
	attackerWon := match.AttackerWon()

	return s.store.WithTransaction(ctx, func(tx repositories.Store) error {
		// Consuming fuel locks the attacker row until commit, so two duels of the same
		// attacker can't both pass the count below.
		consumed, err := tx.Players().ConsumeFuel(ctx, match.AttackerID)
		if err != nil {
			return err
		}
		if !consumed {
			return ErrInsufficientResource
		}

		if err := s.checkLimit(ctx, tx, match.AttackerID, match.MatchDate); err != nil {
			return err
		}

		if err := tx.Players().Credit(ctx, match.AttackerID, match.AttackerReward); err != nil {
			return err
		}

		// Bots only keep their counters.
		if !c.defender.isBot() {
			if err := tx.Players().Credit(ctx, match.DefenderID, match.DefenderReward); err != nil {
				return err
			}
		}

		if c.defender.isBot() {
			if err := tx.Bots().RecordResult(ctx, c.defender.bot.ID, !attackerWon, match.MatchDate); err != nil {
				return err
			}
		}

		if err := s.applyLeagueResult(ctx, tx, match.AttackerID, attackerWon, c.tier.Key, match); err != nil {
			return err
		}

		if !c.defender.isBot() {
			snapshot := s.leagues.ForPower(c.defender.power).Key
			if err := s.applyLeagueResult(ctx, tx, match.DefenderID, !attackerWon, snapshot, match); err != nil {
				return err
			}
		}

		return tx.Matches().CreateMatch(ctx, match)
	})
}

func (s *PvPService) applyLeagueResult(ctx context.Context, tx repositories.Store, playerId string, won bool, snapshot string, match *models.Match) error {
	if _, err := tx.Leagues().GetOrCreate(ctx, playerId, snapshot); err != nil {
		return err
	}
	return tx.Leagues().ApplyResult(ctx, playerId, won, s.points, snapshot, match.MatchDate)
}

// afterSettlement runs the best effort side effects of a committed duel.
// Failures are logged, the duel is already final.
func (s *PvPService) afterSettlement(ctx context.Context, c *challenge, match *models.Match) {
	ctx = context.WithoutCancel(ctx)

	if !c.defender.isBot() {
		if err := s.notifyDefender(ctx, c, match); err != nil {
			s.log.Warn().Err(err).Str("matchId", match.PublicID).Str("playerId", match.DefenderID).Msg("couldn't notify the defender")
		}
	}

	if s.audit != nil {
		err := s.audit.Record(logger.AuditEntry{
			MatchID:       match.PublicID,
			AttackerID:    match.AttackerID,
			DefenderID:    match.DefenderID,
			League:        match.League,
			Winner:        match.Winner,
			AttackerScore: match.AttackerScore,
			DefenderScore: match.DefenderScore,
			EntryFee:      c.tier.EntryFee,
			Time:          match.MatchDate,
		})
		if err != nil {
			s.log.Warn().Err(err).Str("matchId", match.PublicID).Msg("couldn't write the battle audit entry")
		}
	}

	s.log.Info().
		Str("matchId", match.PublicID).
		Str("attackerId", match.AttackerID).
		Str("defenderId", match.DefenderID).
		Str("league", match.League).
		Str("winner", match.Winner).
		Int("attackerScore", match.AttackerScore).
		Int("defenderScore", match.DefenderScore).
		Msg("battle resolved")
}

func (s *PvPService) notifyDefender(ctx context.Context, c *challenge, match *models.Match) error {
	defenderWon := !match.AttackerWon()
	attackerName := c.attacker.DisplayName()

	format := messages.NotificationLost
	if defenderWon {
		format = messages.NotificationWon
	}

	data, err := json.Marshal(dto.BattleNotification{
		OpponentName: attackerName,
		OpponentId:   match.AttackerID,
		Won:          defenderWon,
		Reward:       match.DefenderReward,
		MatchId:      match.PublicID,
	})
	if err != nil {
		return err
	}

	return s.store.Notifications().CreateNotification(ctx, &models.Notification{
		UserID:  match.DefenderID,
		Type:    models.NotificationPvPBattle,
		Title:   messages.NotificationTitle,
		Message: fmt.Sprintf(format, attackerName, match.DefenderReward),
		Data:    datatypes.JSON(data),
	})
}
