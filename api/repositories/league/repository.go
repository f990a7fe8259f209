package leaguerepo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tsdmkp/idle-garage-game-backend/pkg/database/models"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/pvp/league"
)

// LeagueRepository is the public interface for accessing the league records.
type LeagueRepository interface {
	GetOrCreate(ctx context.Context, playerId string, snapshot string) (*models.LeagueRecord, error)
	GetByPlayerIds(ctx context.Context, playerIds []string) (map[string]models.LeagueRecord, error)
	ApplyResult(ctx context.Context, playerId string, won bool, points league.Points, snapshot string, at time.Time) error
	UpdateSnapshot(ctx context.Context, playerId string, snapshot string) error
	GetPosition(ctx context.Context, snapshot string, leaguePoints int) (int, error)
	CountInLeague(ctx context.Context, snapshot string) (int64, error)
	ResetDaily(ctx context.Context) (int64, error)
}

type leagueRepository struct {
	db *gorm.DB
}

// NewLeagueRepository creates a league repository.
func NewLeagueRepository(db *gorm.DB) LeagueRepository {
	return &leagueRepository{db: db}
}

// GetOrCreate returns the record of a player, creating it on first access.
// Concurrent callers never create two records.
func (lr *leagueRepository) GetOrCreate(ctx context.Context, playerId string, snapshot string) (*models.LeagueRecord, error) {
	db := lr.db.WithContext(ctx)

	record := models.LeagueRecord{PlayerID: playerId, LeagueSnapshot: snapshot}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("couldn't create the league record: %w", err)
	}

	var stored models.LeagueRecord
	if err := db.Where("player_id = ?", playerId).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("couldn't get the league record: %w", err)
	}

	return &stored, nil
}

// GetByPlayerIds returns the existing records of the given players, by player id.
// Players without a record are missing from the map.
func (lr *leagueRepository) GetByPlayerIds(ctx context.Context, playerIds []string) (map[string]models.LeagueRecord, error) {
	records := make(map[string]models.LeagueRecord, len(playerIds))
	if len(playerIds) == 0 {
		return records, nil
	}

	var found []models.LeagueRecord
	if err := lr.db.WithContext(ctx).Where("player_id IN ?", playerIds).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("couldn't get the league records: %w", err)
	}

	for _, record := range found {
		records[record.PlayerID] = record
	}

	return records, nil
}

// ApplyResult updates the counters of a finished battle in a single statement.
// Every right-hand side reads the values from before the update.
func (lr *leagueRepository) ApplyResult(ctx context.Context, playerId string, won bool, points league.Points, snapshot string, at time.Time) error {
	updates := map[string]any{
		"league_snapshot": snapshot,
		"last_battle_at":  at,
		"updated_at":      at,
	}

	if won {
		updates["total_wins"] = gorm.Expr("total_wins + 1")
		updates["wins_today"] = gorm.Expr("wins_today + 1")
		updates["win_streak"] = gorm.Expr("win_streak + 1")
		updates["best_win_streak"] = gorm.Expr("CASE WHEN win_streak + 1 > best_win_streak THEN win_streak + 1 ELSE best_win_streak END")
		updates["league_points"] = gorm.Expr("league_points + ?", points.Win)
	} else {
		updates["total_losses"] = gorm.Expr("total_losses + 1")
		updates["losses_today"] = gorm.Expr("losses_today + 1")
		updates["win_streak"] = 0
		updates["league_points"] = gorm.Expr("CASE WHEN league_points + ? < 0 THEN 0 ELSE league_points + ? END", points.Lose, points.Lose)
	}

	result := lr.db.WithContext(ctx).
		Model(&models.LeagueRecord{}).
		Where("player_id = ?", playerId).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("couldn't apply the battle result: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("couldn't apply the battle result to %s: %w", playerId, gorm.ErrRecordNotFound)
	}

	return nil
}

// UpdateSnapshot stores the last seen tier.
func (lr *leagueRepository) UpdateSnapshot(ctx context.Context, playerId string, snapshot string) error {
	return lr.db.WithContext(ctx).
		Model(&models.LeagueRecord{}).
		Where("player_id = ? AND (league_snapshot IS NULL OR league_snapshot <> ?)", playerId, snapshot).
		Update("league_snapshot", snapshot).Error
}

// GetPosition returns the 1-based position of a points value inside a league.
func (lr *leagueRepository) GetPosition(ctx context.Context, snapshot string, leaguePoints int) (int, error) {
	var ahead int64
	err := lr.db.WithContext(ctx).
		Model(&models.LeagueRecord{}).
		Where("league_snapshot = ? AND league_points > ?", snapshot, leaguePoints).
		Count(&ahead).Error
	if err != nil {
		return 0, fmt.Errorf("couldn't get the league position: %w", err)
	}

	return int(ahead) + 1, nil
}

// CountInLeague returns how many players were last seen in a league.
func (lr *leagueRepository) CountInLeague(ctx context.Context, snapshot string) (int64, error) {
	var total int64
	err := lr.db.WithContext(ctx).
		Model(&models.LeagueRecord{}).
		Where("league_snapshot = ?", snapshot).
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("couldn't count the league players: %w", err)
	}

	return total, nil
}

// ResetDaily zeroes the daily counters.
func (lr *leagueRepository) ResetDaily(ctx context.Context) (int64, error) {
	result := lr.db.WithContext(ctx).
		Model(&models.LeagueRecord{}).
		Where("wins_today > 0 OR losses_today > 0").
		Updates(map[string]any{"wins_today": 0, "losses_today": 0})
	if result.Error != nil {
		return 0, fmt.Errorf("couldn't reset the daily counters: %w", result.Error)
	}

	return result.RowsAffected, nil
}
