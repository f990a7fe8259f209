package models

import "time"

// LeagueRecord is the duel statistics of a player, one per player.
// The tier is never authoritative here: LeagueSnapshot is only the last seen tier, used for positions.
type LeagueRecord struct {
	PlayerID       string `gorm:"primaryKey;type:varchar(50)"`
	LeagueSnapshot string `gorm:"type:varchar(20);index:idx_league_records_snapshot_points,priority:1"`
	LeaguePoints   int    `gorm:"not null;default:0;index:idx_league_records_snapshot_points,priority:2"`
	TotalWins      int    `gorm:"not null;default:0"`
	TotalLosses    int    `gorm:"not null;default:0"`
	WinsToday      int    `gorm:"not null;default:0"`
	LossesToday    int    `gorm:"not null;default:0"`
	WinStreak      int    `gorm:"not null;default:0"`
	BestWinStreak  int    `gorm:"not null;default:0"`
	LastBattleAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
