package playerrepo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tsdmkp/idle-garage-game-backend/pkg/database/models"
)

// PlayerRepository is the public interface for accessing the player records.
type PlayerRepository interface {
	GetPlayerById(ctx context.Context, playerId string) (*models.Player, error)
	GetRecentlyActive(ctx context.Context, excludeId string, since time.Time, limit int) ([]*models.Player, error)
	DebitEntryFee(ctx context.Context, playerId string, fee int64) (bool, error)
	Credit(ctx context.Context, playerId string, amount int64) error
	ConsumeFuel(ctx context.Context, playerId string) (bool, error)
}

// playerRepository repository structure.
type playerRepository struct {
	db *gorm.DB
}

// NewPlayerRepository creates a player repository.
func NewPlayerRepository(db *gorm.DB) PlayerRepository {
	return &playerRepository{db: db}
}

// GetPlayerById returns a single player.
// The gorm.ErrRecordNotFound is kept on the chain.
func (pr *playerRepository) GetPlayerById(ctx context.Context, playerId string) (*models.Player, error) {
	var player models.Player
	if err := pr.db.WithContext(ctx).Where("id = ?", playerId).First(&player).Error; err != nil {
		return nil, fmt.Errorf("couldn't get the player by the ID: %w", err)
	}

	return &player, nil
}

// GetRecentlyActive returns the most recently active players that own at least one car.
func (pr *playerRepository) GetRecentlyActive(ctx context.Context, excludeId string, since time.Time, limit int) ([]*models.Player, error) {
	var players []*models.Player

	err := pr.db.WithContext(ctx).
		Where("id <> ?", excludeId).
		Where("last_exit_time >= ?", since).
		Where("cars IS NOT NULL").
		Order("last_exit_time DESC").
		Limit(limit).
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("couldn't get the active players: %w", err)
	}

	return players, nil
}

// DebitEntryFee takes the fee only if the player can pay it and still has fuel.
// Returns false when nothing was debited.
func (pr *playerRepository) DebitEntryFee(ctx context.Context, playerId string, fee int64) (bool, error) {
	result := pr.db.WithContext(ctx).
		Model(&models.Player{}).
		Where("id = ? AND coins >= ? AND fuel > 0", playerId, fee).
		Update("coins", gorm.Expr("coins - ?", fee))
	if result.Error != nil {
		return false, fmt.Errorf("couldn't debit the entry fee: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

// Credit adds coins to a player. Also used for refunds.
func (pr *playerRepository) Credit(ctx context.Context, playerId string, amount int64) error {
	result := pr.db.WithContext(ctx).
		Model(&models.Player{}).
		Where("id = ?", playerId).
		Update("coins", gorm.Expr("coins + ?", amount))
	if result.Error != nil {
		return fmt.Errorf("couldn't credit player %s: %w", playerId, result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("couldn't credit player %s: %w", playerId, gorm.ErrRecordNotFound)
	}

	return nil
}

// ConsumeFuel removes one unit of fuel. Returns false when the tank was already empty.
func (pr *playerRepository) ConsumeFuel(ctx context.Context, playerId string) (bool, error) {
	result := pr.db.WithContext(ctx).
		Model(&models.Player{}).
		Where("id = ? AND fuel > 0", playerId).
		Update("fuel", gorm.Expr("fuel - 1"))
	if result.Error != nil {
		return false, fmt.Errorf("couldn't consume fuel: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}
