package models

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationPvPBattle is the kind used when a player was challenged.
const NotificationPvPBattle = "pvp_battle"

// Notification is an inbox entry of a player.
type Notification struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"type:varchar(50);not null;index:idx_notifications_user_read,priority:1"`
	Type      string `gorm:"type:varchar(50);not null"`
	Title     string `gorm:"type:varchar(255);not null"`
	Message   string `gorm:"type:text"`
	Data      datatypes.JSON
	IsRead    bool `gorm:"not null;default:false;index:idx_notifications_user_read,priority:2"`
	CreatedAt time.Time
}

// All returns every model, in dependency order. Used by test databases.
func All() []any {
	return []any{&Player{}, &LeagueRecord{}, &Bot{}, &Match{}, &Notification{}}
}
