package botrepo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tsdmkp/idle-garage-game-backend/pkg/database/models"
)

// BotRepository is the public interface for the synthetic opponents.
type BotRepository interface {
	GetBotById(ctx context.Context, botId uint) (*models.Bot, error)
	FindCandidates(ctx context.Context, league string, minPower int, maxPower int, limit int) ([]*models.Bot, error)
	RecordResult(ctx context.Context, botId uint, won bool, at time.Time) error
}

type botRepository struct {
	db *gorm.DB
}

// NewBotRepository creates a bot repository.
func NewBotRepository(db *gorm.DB) BotRepository {
	return &botRepository{db: db}
}

// GetBotById returns a single active bot.
func (br *botRepository) GetBotById(ctx context.Context, botId uint) (*models.Bot, error) {
	var bot models.Bot
	if err := br.db.WithContext(ctx).Where("id = ? AND is_active = ?", botId, true).First(&bot).Error; err != nil {
		return nil, fmt.Errorf("couldn't get the bot by the ID: %w", err)
	}

	return &bot, nil
}

// FindCandidates returns a random sample of active bots of a league inside a declared power range.
func (br *botRepository) FindCandidates(ctx context.Context, league string, minPower int, maxPower int, limit int) ([]*models.Bot, error) {
	var bots []*models.Bot

	err := br.db.WithContext(ctx).
		Where("league = ? AND is_active = ?", league, true).
		Where("car_power BETWEEN ? AND ?", minPower, maxPower).
		Order("RANDOM()").
		Limit(limit).
		Find(&bots).Error
	if err != nil {
		return nil, fmt.Errorf("couldn't get the bot candidates: %w", err)
	}

	return bots, nil
}

// RecordResult updates the counters of a bot after a duel.
func (br *botRepository) RecordResult(ctx context.Context, botId uint, won bool, at time.Time) error {
	column := "losses"
	if won {
		column = "wins"
	}

	result := br.db.WithContext(ctx).
		Model(&models.Bot{}).
		Where("id = ?", botId).
		Updates(map[string]any{
			column:        gorm.Expr(column + " + 1"),
			"last_online": at,
		})
	if result.Error != nil {
		return fmt.Errorf("couldn't record the bot result: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("couldn't record the bot result: %w", gorm.ErrRecordNotFound)
	}

	return nil
}
