package dto

import (
	"time"

	"github.com/tsdmkp/idle-garage-game-backend/pkg/pvp/battle"
)

// TierInfo is the public view of a league tier.
// MaxPower is nil for the open ended top tier.
type TierInfo struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	Color      string `json:"color"`
	MinPower   int    `json:"minPower"`
	MaxPower   *int   `json:"maxPower"`
	EntryFee   int64  `json:"entryFee"`
	WinReward  int64  `json:"winReward"`
	LoseReward int64  `json:"loseReward"`
}

// ReputationInfo is the display rank of a player.
type ReputationInfo struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Next     string `json:"next,omitempty"`
	Progress int    `json:"progress"`
}

// LeagueStats is the duel statistics of a player.
type LeagueStats struct {
	LeaguePoints  int        `json:"leaguePoints"`
	TotalWins     int        `json:"totalWins"`
	TotalLosses   int        `json:"totalLosses"`
	WinsToday     int        `json:"winsToday"`
	LossesToday   int        `json:"lossesToday"`
	WinStreak     int        `json:"winStreak"`
	BestWinStreak int        `json:"bestWinStreak"`
	WinRate       int        `json:"winRate"`
	LastBattleAt  *time.Time `json:"lastBattleAt"`
}

// LeagueStanding is the league view of a player, built from the current car.
type LeagueStanding struct {
	League     TierInfo       `json:"league"`
	CarName    string         `json:"carName"`
	CarPower   int            `json:"carPower"`
	Stats      LeagueStats    `json:"stats"`
	Reputation ReputationInfo `json:"reputation"`
	Position   int            `json:"position"`
	LeagueSize int64          `json:"leagueSize"`
	CanFight   bool           `json:"canFight"`
}

// Opponent types.
const (
	OpponentPlayer = "player"
	OpponentBot    = "bot"
)

// Opponent is a single matchmaking candidate.
type Opponent struct {
	Id              string    `json:"id"`
	Type            string    `json:"type"`
	Username        string    `json:"username"`
	CarName         string    `json:"carName"`
	CarPower        int       `json:"carPower"`
	League          string    `json:"league"`
	Reputation      string    `json:"reputation"`
	TotalWins       int       `json:"totalWins"`
	TotalLosses     int       `json:"totalLosses"`
	WinRate         int       `json:"winRate"`
	IsOnline        bool      `json:"isOnline"`
	LastActive      time.Time `json:"lastActive"`
	PowerDifference int       `json:"powerDifference"`
	Priority        int       `json:"priority"`
}

// OpponentList is the result of a matchmaking request.
type OpponentList struct {
	Opponents    []Opponent `json:"opponents"`
	PlayerLeague string     `json:"playerLeague"`
	PlayerPower  int        `json:"playerPower"`
	EntryFee     int64      `json:"entryFee"`
}

// Match results from the point of view of a player.
const (
	ResultWin  = "win"
	ResultLose = "lose"
)

// MatchResult is the outcome of a challenge, from the attacker point of view.
type MatchResult struct {
	MatchId       string       `json:"matchId"`
	League        string       `json:"league"`
	Winner        string       `json:"winner"`
	YourResult    string       `json:"yourResult"`
	YourReward    int64        `json:"yourReward"`
	EntryFee      int64        `json:"entryFee"`
	OpponentName  string       `json:"opponentName"`
	IsRealPlayer  bool         `json:"isRealPlayer"`
	AttackerScore int          `json:"attackerScore"`
	DefenderScore int          `json:"defenderScore"`
	Margin        int          `json:"margin"`
	Trace         battle.Trace `json:"battleDetails"`
}

// LimitStatus is the rate limit state of a player.
type LimitStatus struct {
	CanBattle    bool       `json:"canBattle"`
	CurrentCount int64      `json:"currentCount"`
	MaxAllowed   int64      `json:"maxAllowed"`
	ResetAt      *time.Time `json:"resetAt,omitempty"`
}

// LimitReset is the result of an exemption request.
type LimitReset struct {
	CanBattleNow    bool      `json:"canBattleNow"`
	CurrentCount    int64     `json:"currentCount"`
	MaxAllowed      int64     `json:"maxAllowed"`
	MatchesExempted int64     `json:"matchesReset"`
	ResetTime       time.Time `json:"resetTime"`
}

// LimitDetails is the breakdown of the matches inside the limit window.
type LimitDetails struct {
	From     time.Time   `json:"from"`
	To       time.Time   `json:"to"`
	Total    int64       `json:"total"`
	Active   int64       `json:"active"`
	Exempted int64       `json:"reset"`
	Limit    LimitStatus `json:"limit"`
}

// MatchHistoryEntry is a match from the point of view of the viewer.
type MatchHistoryEntry struct {
	MatchId       string    `json:"matchId"`
	League        string    `json:"league"`
	Role          string    `json:"yourRole"`
	Result        string    `json:"result"`
	OpponentId    string    `json:"opponentId"`
	OpponentCar   string    `json:"opponentCar"`
	YourCar       string    `json:"yourCar"`
	YourPower     int       `json:"yourPower"`
	OpponentPower int       `json:"opponentPower"`
	YourReward    int64     `json:"yourReward"`
	YourScore     int       `json:"yourScore"`
	OpponentScore int       `json:"opponentScore"`
	MatchDate     time.Time `json:"matchDate"`
}

// Pagination of a list result.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// MatchHistory is a page of the match history of a player.
type MatchHistory struct {
	Matches    []MatchHistoryEntry `json:"matches"`
	Pagination Pagination          `json:"pagination"`
}

// Notification is a single inbox entry.
type Notification struct {
	Id        uint           `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	IsRead    bool           `json:"isRead"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NotificationList is the inbox of a player.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int64          `json:"unreadCount"`
}

// BattleNotification is the data payload of a battle notification.
type BattleNotification struct {
	OpponentName string `json:"opponent_name"`
	OpponentId   string `json:"opponent_id"`
	Won          bool   `json:"won"`
	Reward       int64  `json:"reward"`
	MatchId      string `json:"match_id"`
}
