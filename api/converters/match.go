package converters

import (
	"github.com/tsdmkp/idle-garage-game-backend/api/dto"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/database/models"
)

// ConvertHistoryEntry returns a stored match as seen by one of its participants.
// Any viewer that is not the attacker is treated as the defender.
func ConvertHistoryEntry(viewerId string, match *models.Match) dto.MatchHistoryEntry {
	entry := dto.MatchHistoryEntry{
		MatchId:   match.PublicID,
		League:    match.League,
		MatchDate: match.MatchDate,
	}

	won := match.AttackerWon()
	if match.AttackerID == viewerId {
		entry.Role = models.WinnerAttacker
		entry.OpponentId = match.DefenderID
		entry.OpponentCar = match.DefenderCarName
		entry.YourCar = match.AttackerCarName
		entry.YourPower = match.AttackerPower
		entry.OpponentPower = match.DefenderPower
		entry.YourReward = match.AttackerReward
		entry.YourScore = match.AttackerScore
		entry.OpponentScore = match.DefenderScore
	} else {
		won = !won
		entry.Role = models.WinnerDefender
		entry.OpponentId = match.AttackerID
		entry.OpponentCar = match.AttackerCarName
		entry.YourCar = match.DefenderCarName
		entry.YourPower = match.DefenderPower
		entry.OpponentPower = match.AttackerPower
		entry.YourReward = match.DefenderReward
		entry.YourScore = match.DefenderScore
		entry.OpponentScore = match.AttackerScore
	}

	entry.Result = dto.ResultLose
	if won {
		entry.Result = dto.ResultWin
	}

	return entry
}

// ConvertHistory converts a page of matches for a viewer.
func ConvertHistory(viewerId string, matches []models.Match) []dto.MatchHistoryEntry {
	entries := make([]dto.MatchHistoryEntry, 0, len(matches))
	for i := range matches {
		entries = append(entries, ConvertHistoryEntry(viewerId, &matches[i]))
	}
	return entries
}
