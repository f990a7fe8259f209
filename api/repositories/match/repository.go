package matchrepo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tsdmkp/idle-garage-game-backend/pkg/database/models"
)

// WindowStats is the breakdown of the matches of a player inside the limit window.
type WindowStats struct {
	Total          int64      `gorm:"column:total"`
	Exempted       int64      `gorm:"column:exempted"`
	OldestActiveAt *time.Time `gorm:"-"`
}

// Active is the amount of matches still counted by the limiter.
func (w WindowStats) Active() int64 {
	return w.Total - w.Exempted
}

// MatchRepository is the public interface for the match history.
type MatchRepository interface {
	CreateMatch(ctx context.Context, match *models.Match) error
	CountActiveSince(ctx context.Context, playerId string, since time.Time) (int64, error)
	GetWindowStats(ctx context.Context, playerId string, since time.Time) (*WindowStats, error)
	ExemptSince(ctx context.Context, playerId string, since time.Time, at time.Time) (int64, error)
	ClearExemptionsBefore(ctx context.Context, before time.Time) (int64, error)
	GetPlayerMatchHistory(ctx context.Context, playerId string, page int, limit int) ([]models.Match, int64, error)
}

type matchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a match repository.
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

// participant scopes a query to the matches where the player was on either side.
func participant(playerId string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(attacker_id = ? OR defender_id = ?)", playerId, playerId)
	}
}

// CreateMatch appends a match.
func (mr *matchRepository) CreateMatch(ctx context.Context, match *models.Match) error {
	if err := mr.db.WithContext(ctx).Create(match).Error; err != nil {
		return fmt.Errorf("couldn't create the match: %w", err)
	}
	return nil
}

// CountActiveSince counts the non exempted matches of a player since a given time.
func (mr *matchRepository) CountActiveSince(ctx context.Context, playerId string, since time.Time) (int64, error) {
	var count int64
	err := mr.db.WithContext(ctx).
		Model(&models.Match{}).
		Scopes(participant(playerId)).
		Where("match_date >= ? AND exempted_at IS NULL", since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("couldn't count the matches: %w", err)
	}

	return count, nil
}

// GetWindowStats returns the total and exempted matches since a given time, plus the oldest counted one.
func (mr *matchRepository) GetWindowStats(ctx context.Context, playerId string, since time.Time) (*WindowStats, error) {
	var stats WindowStats
	err := mr.db.WithContext(ctx).
		Model(&models.Match{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN exempted_at IS NOT NULL THEN 1 ELSE 0 END), 0) AS exempted").
		Scopes(participant(playerId)).
		Where("match_date >= ?", since).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("couldn't get the window stats: %w", err)
	}

	var oldest []models.Match
	err = mr.db.WithContext(ctx).
		Select("match_date").
		Scopes(participant(playerId)).
		Where("match_date >= ? AND exempted_at IS NULL", since).
		Order("match_date ASC").
		Limit(1).
		Find(&oldest).Error
	if err != nil {
		return nil, fmt.Errorf("couldn't get the oldest match: %w", err)
	}

	if len(oldest) == 1 {
		stats.OldestActiveAt = &oldest[0].MatchDate
	}

	return &stats, nil
}

// ExemptSince stamps every counted match of the player since a given time.
// Records are annotated, never deleted.
func (mr *matchRepository) ExemptSince(ctx context.Context, playerId string, since time.Time, at time.Time) (int64, error) {
	result := mr.db.WithContext(ctx).
		Model(&models.Match{}).
		Scopes(participant(playerId)).
		Where("match_date >= ? AND exempted_at IS NULL", since).
		Update("exempted_at", at)
	if result.Error != nil {
		return 0, fmt.Errorf("couldn't exempt the matches: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// ClearExemptionsBefore strips the exemption marker of matches older than the threshold.
// Matches newer than the threshold are never touched.
func (mr *matchRepository) ClearExemptionsBefore(ctx context.Context, before time.Time) (int64, error) {
	result := mr.db.WithContext(ctx).
		Model(&models.Match{}).
		Where("exempted_at IS NOT NULL AND match_date < ?", before).
		Update("exempted_at", nil)
	if result.Error != nil {
		return 0, fmt.Errorf("couldn't clear the exemptions: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// GetPlayerMatchHistory returns a page of matches, newest first, plus the total.
func (mr *matchRepository) GetPlayerMatchHistory(ctx context.Context, playerId string, page int, limit int) ([]models.Match, int64, error) {
	var total int64
	err := mr.db.WithContext(ctx).
		Model(&models.Match{}).
		Scopes(participant(playerId)).
		Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("couldn't count the match history: %w", err)
	}

	var matches []models.Match
	err = mr.db.WithContext(ctx).
		Scopes(participant(playerId)).
		Order("match_date DESC, id DESC").
		Limit(limit).
		Offset(max(page-1, 0) * limit).
		Find(&matches).Error
	if err != nil {
		return nil, 0, fmt.Errorf("couldn't get the match history: %w", err)
	}

	return matches, total, nil
}
