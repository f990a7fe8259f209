package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// BotPrefix prefixes the opponent id of every bot.
const BotPrefix = "bot_"

// Bot is a synthetic opponent.
// CarPower is a display hint, the real power comes from Build (or a synthesized one).
type Bot struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"type:varchar(50);not null"`
	CarName    string `gorm:"type:varchar(100);not null"`
	CarPower   int    `gorm:"not null;index:idx_bots_league_power,priority:2"`
	Build      datatypes.JSON
	League     string `gorm:"type:varchar(20);not null;index:idx_bots_league_power,priority:1"`
	Wins       int    `gorm:"not null;default:0"`
	Losses     int    `gorm:"not null;default:0"`
	LastOnline time.Time
	IsActive   bool

	CreatedAt time.Time
}

// OpponentID is the public id of the bot.
func (b *Bot) OpponentID() string {
	return fmt.Sprintf("%s%d", BotPrefix, b.ID)
}

// ParseBotID extracts the numeric id from a bot opponent id.
func ParseBotID(opponentID string) (uint, bool) {
	raw, ok := strings.CutPrefix(opponentID, BotPrefix)
	if !ok {
		return 0, false
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}

	return uint(id), true
}
