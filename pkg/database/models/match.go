package models

import (
	"time"

	"gorm.io/datatypes"
)

// Winner values stored on a match.
const (
	WinnerAttacker = "attacker"
	WinnerDefender = "defender"
)

// Match is an append-only duel record.
// Only ExemptedAt is ever updated, by the limit exemption and its sweep.
type Match struct {
	ID              uint   `gorm:"primaryKey"`
	PublicID        string `gorm:"type:varchar(21);uniqueIndex;not null"`
	AttackerID      string `gorm:"type:varchar(50);not null;index:idx_matches_attacker_date,priority:1"`
	DefenderID      string `gorm:"type:varchar(50);not null;index:idx_matches_defender_date,priority:1"`
	League          string `gorm:"type:varchar(20);not null"`
	AttackerCarName string `gorm:"type:varchar(100)"`
	DefenderCarName string `gorm:"type:varchar(100)"`
	AttackerPower   int
	DefenderPower   int
	Winner          string `gorm:"type:varchar(10);not null"`
	AttackerReward  int64
	DefenderReward  int64
	AttackerScore   int
	DefenderScore   int
	Trace           datatypes.JSON
	MatchDate       time.Time `gorm:"not null;index:idx_matches_attacker_date,priority:2;index:idx_matches_defender_date,priority:2"`
	ExemptedAt      *time.Time
}

// AttackerWon reports if the initiating side won.
func (m *Match) AttackerWon() bool {
	return m.Winner == WinnerAttacker
}
