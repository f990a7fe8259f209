package pvpservice

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tsdmkp/idle-garage-game-backend/api/cache"
	"github.com/tsdmkp/idle-garage-game-backend/api/dto"
	matchrepo "github.com/tsdmkp/idle-garage-game-backend/api/repositories/match"
	"github.com/tsdmkp/idle-garage-game-backend/api/services/testutil"
	dbutil "github.com/tsdmkp/idle-garage-game-backend/internal/testutil"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/config"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/database/models"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/pvp/league"
)

// Simple test for asserting that everything is fine with the service creation.
func TestNewPvPService(t *testing.T) {
	service := NewPvPService(&PvPServiceDeps{DB: new(gorm.DB)})

	assert.NotNil(t, service.store)
	assert.NotNil(t, service.resolver)
	assert.Equal(t, int64(defaultMaxBattles), service.maxBattles)
	assert.Equal(t, defaultWindow, service.window)
	assert.Equal(t, defaultLockTTL, service.lockTTL)
	assert.Nil(t, service.lock)
	assert.Nil(t, service.audit)
	assert.Nil(t, service.bots)

	custom := NewPvPService(&PvPServiceDeps{
		DB:     new(gorm.DB),
		Config: config.PvPConfiguration{MaxBattlesPerHour: 5, RateWindow: 30 * time.Minute, ChallengeLockTTL: time.Second},
	})
	assert.Equal(t, int64(5), custom.maxBattles)
	assert.Equal(t, 30*time.Minute, custom.window)
	assert.Equal(t, time.Second, custom.lockTTL)
}

func TestWinRate(t *testing.T) {
	tests := []struct {
		wins, losses int
		expected     int
	}{
		{wins: 0, losses: 0, expected: 50},
		{wins: 3, losses: 1, expected: 75},
		{wins: 1, losses: 2, expected: 33},
		{wins: 2, losses: 1, expected: 67},
		{wins: 0, losses: 4, expected: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d-%d", tt.wins, tt.losses), func(t *testing.T) {
			assert.Equal(t, tt.expected, winRate(tt.wins, tt.losses))
		})
	}
}

func TestResolveChallengeValidation(t *testing.T) {
	tests := []struct {
		name        string
		opponentId  string
		expectedErr error
	}{
		{name: "missing opponent", opponentId: "", expectedErr: ErrMissingOpponent},
		{name: "blank opponent", opponentId: "   ", expectedErr: ErrMissingOpponent},
		{name: "self challenge", opponentId: "p1", expectedErr: ErrSelfChallenge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store, lock, audit := setupTestService()

			result, err := service.ResolveChallenge(context.Background(), "p1", tt.opponentId)
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Nil(t, result)

			testutil.VerifyAllMocks(t, append(store.Mocks(), lock, audit)...)
		})
	}
}

func TestResolveChallengeLock(t *testing.T) {
	t.Run("held by another request", func(t *testing.T) {
		service, _, lock, _ := setupTestService()
		lock.On("Acquire", mock.Anything, "pvp:challenge:p1", defaultLockTTL).Return(false, nil)

		_, err := service.ResolveChallenge(context.Background(), "p1", "bot_1")
		assert.ErrorIs(t, err, ErrChallengeInProgress)
		lock.AssertExpectations(t)
		lock.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	})

	t.Run("released after a rejected challenge", func(t *testing.T) {
		service, store, lock, _ := setupTestService()
		lock.On("Acquire", mock.Anything, "pvp:challenge:p1", defaultLockTTL).Return(true, nil)
		lock.On("Release", mock.Anything, "pvp:challenge:p1").Return(nil)
		store.MatchRepo.On("CountActiveSince", mock.Anything, "p1", fixedNow.Add(-time.Hour)).Return(int64(20), nil)

		_, err := service.ResolveChallenge(context.Background(), "p1", "bot_1")
		assert.ErrorIs(t, err, ErrRateLimited)

		var limited *RateLimitedError
		require.ErrorAs(t, err, &limited)
		assert.Equal(t, int64(20), limited.Current)
		assert.Equal(t, int64(20), limited.Max)
		assert.Contains(t, limited.Error(), "20/20")

		testutil.VerifyAllMocks(t, lock, store.MatchRepo)
	})

	t.Run("redis failure falls back to the database guards", func(t *testing.T) {
		service, store, lock, _ := setupTestService()
		lock.On("Acquire", mock.Anything, "pvp:challenge:p1", defaultLockTTL).Return(false, errors.New("connection refused"))
		store.MatchRepo.On("CountActiveSince", mock.Anything, "p1", mock.Anything).Return(int64(0), errors.New(dbutil.DatabaseError))

		_, err := service.ResolveChallenge(context.Background(), "p1", "bot_1")
		assert.EqualError(t, err, dbutil.DatabaseError)
		lock.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	})
}

func TestResolveChallengeAttackerChecks(t *testing.T) {
	notFound := fmt.Errorf("couldn't get the player by the ID: %w", gorm.ErrRecordNotFound)

	tests := []struct {
		name        string
		player      *models.Player
		playerErr   error
		debited     *bool
		expectedErr error
	}{
		{name: "player not found", player: (*models.Player)(nil), playerErr: notFound, expectedErr: ErrPlayerNotFound},
		{name: "no car", player: &models.Player{ID: "p1", Fuel: 3, Coins: 500}, expectedErr: ErrNoActiveCar},
		{name: "no fuel", player: newTestPlayer("p1", 16, 500, 0), expectedErr: ErrInsufficientResource},
		{name: "not enough coins", player: newTestPlayer("p1", 16, 50, 3), debited: new(bool), expectedErr: ErrInsufficientCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store, _, _ := setupTestService()
			service.lock = nil

			store.MatchRepo.On("CountActiveSince", mock.Anything, "p1", mock.Anything).Return(int64(0), nil)
			store.PlayerRepo.On("GetPlayerById", mock.Anything, "p1").Return(tt.player, tt.playerErr)
			if tt.debited != nil {
				store.PlayerRepo.On("DebitEntryFee", mock.Anything, "p1", int64(100)).Return(*tt.debited, nil)
			}

			result, err := service.ResolveChallenge(context.Background(), "p1", "bot_1")
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Nil(t, result)

			store.PlayerRepo.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
			testutil.VerifyAllMocks(t, store.Mocks()...)
		})
	}
}

func TestResolveChallengeRefundsTheFee(t *testing.T) {
	notFound := fmt.Errorf("couldn't get the bot by the ID: %w", gorm.ErrRecordNotFound)

	tests := []struct {
		name        string
		opponentId  string
		lookup      bool
		refundErr   error
		expectedErr error
	}{
		{name: "unknown bot", opponentId: "bot_9", lookup: true, expectedErr: ErrOpponentNotFound},
		{name: "malformed bot id", opponentId: "bot_abc", expectedErr: ErrOpponentNotFound},
		{name: "refund failure is joined", opponentId: "bot_9", lookup: true, refundErr: errors.New("refund failed"), expectedErr: ErrOpponentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store, _, _ := setupTestService()
			service.lock = nil

			store.MatchRepo.On("CountActiveSince", mock.Anything, "p1", mock.Anything).Return(int64(0), nil)
			store.PlayerRepo.On("GetPlayerById", mock.Anything, "p1").Return(newTestPlayer("p1", 16, 500, 3), nil)
			store.PlayerRepo.On("DebitEntryFee", mock.Anything, "p1", int64(100)).Return(true, nil)
			store.PlayerRepo.On("Credit", mock.Anything, "p1", int64(100)).Return(tt.refundErr).Once()
			if tt.lookup {
				store.BotRepo.On("GetBotById", mock.Anything, uint(9)).Return((*models.Bot)(nil), notFound)
			}

			_, err := service.ResolveChallenge(context.Background(), "p1", tt.opponentId)
			assert.ErrorIs(t, err, tt.expectedErr)
			if tt.refundErr != nil {
				assert.ErrorIs(t, err, tt.refundErr)
				assert.Contains(t, err.Error(), "couldn't refund the entry fee")
			}

			testutil.VerifyAllMocks(t, store.Mocks()...)
		})
	}
}

func TestResolveChallengeAgainstBot(t *testing.T) {
	service, store, lock, audit := setupTestService()
	isReward := mock.MatchedBy(func(amount int64) bool { return amount == 200 || amount == 40 })

	lock.On("Acquire", mock.Anything, "pvp:challenge:p1", defaultLockTTL).Return(true, nil)
	lock.On("Release", mock.Anything, "pvp:challenge:p1").Return(nil)
	store.MatchRepo.On("CountActiveSince", mock.Anything, "p1", mock.Anything).Return(int64(0), nil)
	store.PlayerRepo.On("GetPlayerById", mock.Anything, "p1").Return(newTestPlayer("p1", 16, 500, 3), nil)
	store.PlayerRepo.On("DebitEntryFee", mock.Anything, "p1", int64(100)).Return(true, nil)
	store.BotRepo.On("GetBotById", mock.Anything, uint(3)).Return(newTestBot(3, 230, "SILVER"), nil)
	store.PlayerRepo.On("Credit", mock.Anything, "p1", isReward).Return(nil).Once()
	store.PlayerRepo.On("ConsumeFuel", mock.Anything, "p1").Return(true, nil)
	store.BotRepo.On("RecordResult", mock.Anything, uint(3), mock.AnythingOfType("bool"), fixedNow).Return(nil)
	store.LeagueRepo.On("GetOrCreate", mock.Anything, "p1", "SILVER").Return(&models.LeagueRecord{PlayerID: "p1"}, nil)
	store.LeagueRepo.On("ApplyResult", mock.Anything, "p1", mock.AnythingOfType("bool"), league.DefaultPoints, "SILVER", fixedNow).Return(nil)
	store.MatchRepo.On("CreateMatch", mock.Anything, mock.MatchedBy(func(m *models.Match) bool {
		return m.PublicID == "match-id" && m.AttackerID == "p1" && m.DefenderID == "bot_3" && m.League == "SILVER" && m.AttackerPower == 220
	})).Return(nil)
	audit.On("Record", mock.Anything).Return(nil)

	result, err := service.ResolveChallenge(context.Background(), "p1", "bot_3")
	require.NoError(t, err)

	assert.Equal(t, "match-id", result.MatchId)
	assert.Equal(t, "SILVER", result.League)
	assert.Equal(t, int64(100), result.EntryFee)
	assert.False(t, result.IsRealPlayer)
	if result.YourResult == dto.ResultWin {
		assert.Equal(t, models.WinnerAttacker, result.Winner)
		assert.Equal(t, int64(200), result.YourReward)
		assert.Greater(t, result.AttackerScore, result.DefenderScore)
	} else {
		assert.Equal(t, models.WinnerDefender, result.Winner)
		assert.Equal(t, int64(40), result.YourReward)
		assert.LessOrEqual(t, result.AttackerScore, result.DefenderScore)
	}

	store.NotificationRepo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
	testutil.VerifyAllMocks(t, append(store.Mocks(), lock, audit)...)
}

func TestGetLimitStatus(t *testing.T) {
	oldest := fixedNow.Add(-40 * time.Minute)

	tests := []struct {
		name          string
		stats         *matchrepo.WindowStats
		expectedCount int64
		canBattle     bool
	}{
		{name: "empty window", stats: &matchrepo.WindowStats{}, canBattle: true},
		{name: "exempted matches don't count", stats: &matchrepo.WindowStats{Total: 25, Exempted: 10, OldestActiveAt: &oldest}, expectedCount: 15, canBattle: true},
		{name: "full window", stats: &matchrepo.WindowStats{Total: 20, OldestActiveAt: &oldest}, expectedCount: 20, canBattle: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store, _, _ := setupTestService()
			store.MatchRepo.On("GetWindowStats", mock.Anything, "p1", fixedNow.Add(-time.Hour)).Return(tt.stats, nil)

			status, err := service.GetLimitStatus(context.Background(), "p1")
			require.NoError(t, err)

			assert.Equal(t, tt.canBattle, status.CanBattle)
			assert.Equal(t, tt.expectedCount, status.CurrentCount)
			assert.Equal(t, int64(20), status.MaxAllowed)
			if tt.stats.OldestActiveAt == nil {
				assert.Nil(t, status.ResetAt)
			} else {
				require.NotNil(t, status.ResetAt)
				assert.True(t, status.ResetAt.Equal(oldest.Add(time.Hour)))
			}
		})
	}
}

func TestResetLimitWhenAllowedWritesNothing(t *testing.T) {
	service, store, _, _ := setupTestService()
	store.PlayerRepo.On("GetPlayerById", mock.Anything, "p1").Return(newTestPlayer("p1", 0, 0, 0), nil)
	store.MatchRepo.On("GetWindowStats", mock.Anything, "p1", mock.Anything).Return(&matchrepo.WindowStats{Total: 3}, nil)

	reset, err := service.ResetLimit(context.Background(), "p1")
	require.NoError(t, err)

	assert.True(t, reset.CanBattleNow)
	assert.Zero(t, reset.MatchesExempted)
	assert.Equal(t, int64(3), reset.CurrentCount)
	store.MatchRepo.AssertNotCalled(t, "ExemptSince", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSweepExemptions(t *testing.T) {
	service, store, _, _ := setupTestService()
	store.MatchRepo.On("ClearExemptionsBefore", mock.Anything, fixedNow.Add(-2*time.Hour)).Return(int64(4), nil)

	cleared, err := service.SweepExemptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), cleared)
	store.MatchRepo.AssertExpectations(t)
}

func TestListOpponents(t *testing.T) {
	service, store, _, _ := setupTestService()

	near := newTestPlayer("near", 20, 0, 0)
	near.LastExitTime = fixedNow.Add(-10 * time.Minute)
	far := newTestPlayer("far", 92, 0, 0)
	offline := newTestPlayer("offline", 0, 0, 0)
	offline.Cars = garageOf("car_001", 0, 10)
	offline.LastExitTime = fixedNow.Add(-2 * time.Hour)
	carless := &models.Player{ID: "carless"}

	store.PlayerRepo.On("GetPlayerById", mock.Anything, "p1").Return(newTestPlayer("p1", 16, 500, 3), nil)
	store.PlayerRepo.On("GetRecentlyActive", mock.Anything, "p1", fixedNow.Add(-activityWindow), playerPoolSize).
		Return([]*models.Player{near, far, carless, offline}, nil)
	store.LeagueRepo.On("GetByPlayerIds", mock.Anything, []string{"near", "offline"}).
		Return(map[string]models.LeagueRecord{"near": {PlayerID: "near", TotalWins: 3, TotalLosses: 1}}, nil)
	store.BotRepo.On("FindCandidates", mock.Anything, "SILVER", 170, 270, maxBotOpponents).
		Return([]*models.Bot{newTestBot(3, 230, "SILVER")}, nil)

	list, err := service.ListOpponents(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, "SILVER", list.PlayerLeague)
	assert.Equal(t, 220, list.PlayerPower)
	assert.Equal(t, int64(100), list.EntryFee)
	require.Len(t, list.Opponents, 3)

	first, second, bot := list.Opponents[0], list.Opponents[1], list.Opponents[2]

	assert.Equal(t, "near", first.Id)
	assert.Equal(t, dto.OpponentPlayer, first.Type)
	assert.Equal(t, 240, first.CarPower)
	assert.Equal(t, 20, first.PowerDifference)
	assert.Equal(t, 75, first.WinRate)
	assert.True(t, first.IsOnline)
	assert.Equal(t, priorityPlayer, first.Priority)

	assert.Equal(t, "offline", second.Id)
	assert.Equal(t, 170, second.CarPower)
	assert.Equal(t, 50, second.WinRate)
	assert.False(t, second.IsOnline)
	assert.Equal(t, "ROOKIE", second.Reputation)

	assert.Equal(t, "bot_3", bot.Id)
	assert.Equal(t, dto.OpponentBot, bot.Type)
	assert.True(t, bot.IsOnline)
	assert.InDelta(t, 230, bot.CarPower, 2)
	assert.Equal(t, priorityBot, bot.Priority)

	testutil.VerifyAllMocks(t, store.Mocks()...)
}

func TestListOpponentsReusesTheBotSample(t *testing.T) {
	service, store, _, _ := setupTestService()
	memCache := cache.NewMemCache(time.Minute)
	defer memCache.Close()
	service.bots = memCache

	store.PlayerRepo.On("GetPlayerById", mock.Anything, "p1").Return(newTestPlayer("p1", 16, 500, 3), nil).Twice()
	store.PlayerRepo.On("GetRecentlyActive", mock.Anything, "p1", mock.Anything, playerPoolSize).
		Return([]*models.Player{}, nil).Twice()
	store.BotRepo.On("FindCandidates", mock.Anything, "SILVER", 170, 270, maxBotOpponents).
		Return([]*models.Bot{newTestBot(3, 230, "SILVER")}, nil).Once()

	for range 2 {
		list, err := service.ListOpponents(context.Background(), "p1")
		require.NoError(t, err)
		require.Len(t, list.Opponents, 1)
		assert.Equal(t, "bot_3", list.Opponents[0].Id)
		assert.Equal(t, 220, list.PlayerPower)
	}

	testutil.VerifyAllMocks(t, store.Mocks()...)
}

func TestResolveChallengeRecountsInsideTheSettlement(t *testing.T) {
	service, store, _, _ := setupTestService()
	service.lock = nil

	// Another duel of the attacker commits between the first count and the settlement.
	store.MatchRepo.On("CountActiveSince", mock.Anything, "p1", fixedNow.Add(-time.Hour)).Return(int64(19), nil).Once()
	store.MatchRepo.On("CountActiveSince", mock.Anything, "p1", fixedNow.Add(-time.Hour)).Return(int64(20), nil).Once()
	store.PlayerRepo.On("GetPlayerById", mock.Anything, "p1").Return(newTestPlayer("p1", 16, 500, 3), nil)
	store.PlayerRepo.On("DebitEntryFee", mock.Anything, "p1", int64(100)).Return(true, nil)
	store.BotRepo.On("GetBotById", mock.Anything, uint(3)).Return(newTestBot(3, 230, "SILVER"), nil)
	store.PlayerRepo.On("ConsumeFuel", mock.Anything, "p1").Return(true, nil)
	store.PlayerRepo.On("Credit", mock.Anything, "p1", int64(100)).Return(nil).Once()

	_, err := service.ResolveChallenge(context.Background(), "p1", "bot_3")
	assert.ErrorIs(t, err, ErrRateLimited)

	var limited *RateLimitedError
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, int64(20), limited.Current)

	store.MatchRepo.AssertNotCalled(t, "CreateMatch", mock.Anything, mock.Anything)
	store.BotRepo.AssertNotCalled(t, "RecordResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	testutil.VerifyAllMocks(t, store.Mocks()...)
}
