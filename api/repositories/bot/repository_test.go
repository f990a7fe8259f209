package botrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tsdmkp/idle-garage-game-backend/internal/testutil"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/database/models"
)

func TestNewBotRepository(t *testing.T) {
	assert.NotNil(t, NewBotRepository(&gorm.DB{}))
}

func TestGetBotById(t *testing.T) {
	db := testutil.NewSQLiteConnection(t)
	repository := NewBotRepository(db)
	seedBotTestData(t, db)

	tests := []struct {
		name        string
		botId       uint
		expectedErr bool
	}{
		{name: "active bot", botId: 2},
		{name: "inactive bot", botId: 4, expectedErr: true},
		{name: "missing bot", botId: 99, expectedErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot, err := repository.GetBotById(context.Background(), tt.botId)
			if tt.expectedErr {
				assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
				assert.Nil(t, bot)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.botId, bot.ID)
		})
	}
}

func TestFindCandidates(t *testing.T) {
	db := testutil.NewSQLiteConnection(t)
	repository := NewBotRepository(db)
	seedBotTestData(t, db)

	tests := []struct {
		name     string
		league   string
		min, max int
		limit    int
		expected []uint
	}{
		{name: "range inside league", league: "SILVER", min: 170, max: 270, limit: 8, expected: []uint{2, 3}},
		{name: "inclusive bounds", league: "SILVER", min: 190, max: 285, limit: 8, expected: []uint{2, 3, 5}},
		{name: "other league excluded", league: "BRONZE", min: 100, max: 300, limit: 8, expected: []uint{1}},
		{name: "limit applies", league: "SILVER", min: 0, max: 1000, limit: 1},
		{name: "nothing in range", league: "GOLD", min: 0, max: 1000, limit: 8, expected: []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bots, err := repository.FindCandidates(context.Background(), tt.league, tt.min, tt.max, tt.limit)
			require.NoError(t, err)

			if tt.expected == nil {
				assert.Len(t, bots, tt.limit)
				return
			}

			ids := make([]uint, 0, len(bots))
			for _, b := range bots {
				ids = append(ids, b.ID)
				assert.True(t, b.IsActive)
			}
			assert.ElementsMatch(t, tt.expected, ids)
		})
	}
}

func TestRecordResult(t *testing.T) {
	db := testutil.NewSQLiteConnection(t)
	repository := NewBotRepository(db)
	seedBotTestData(t, db)
	ctx := context.Background()
	later := fixedDate.Add(time.Hour)

	require.NoError(t, repository.RecordResult(ctx, 3, true, later))
	require.NoError(t, repository.RecordResult(ctx, 3, true, later))
	require.NoError(t, repository.RecordResult(ctx, 3, false, later))

	var bot models.Bot
	require.NoError(t, db.First(&bot, 3).Error)
	assert.Equal(t, 2, bot.Wins)
	assert.Equal(t, 1, bot.Losses)
	assert.True(t, bot.LastOnline.Equal(later))

	err := repository.RecordResult(ctx, 99, true, later)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
