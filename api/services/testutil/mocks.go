package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/tsdmkp/idle-garage-game-backend/api/repositories"
	botrepo "github.com/tsdmkp/idle-garage-game-backend/api/repositories/bot"
	leaguerepo "github.com/tsdmkp/idle-garage-game-backend/api/repositories/league"
	matchrepo "github.com/tsdmkp/idle-garage-game-backend/api/repositories/match"
	notificationrepo "github.com/tsdmkp/idle-garage-game-backend/api/repositories/notification"
	playerrepo "github.com/tsdmkp/idle-garage-game-backend/api/repositories/player"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/database/models"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/logger"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/pvp/league"
)

// Assert the expectations of all mocks.
func VerifyAllMocks(t *testing.T, mocks ...any) {
	t.Helper()

	for _, m := range mocks {
		if mockObj, ok := m.(interface{ AssertExpectations(*testing.T) bool }); ok {
			mockObj.AssertExpectations(t)
		}
	}
}

// ============================================================================
// Store mock, every repository is a mock on its own.
// ============================================================================

type MockStore struct {
	PlayerRepo       *MockPlayerRepository
	LeagueRepo       *MockLeagueRepository
	MatchRepo        *MockMatchRepository
	BotRepo          *MockBotRepository
	NotificationRepo *MockNotificationRepository
}

// NewMockStore creates a store with fresh repository mocks.
func NewMockStore() *MockStore {
	return &MockStore{
		PlayerRepo:       new(MockPlayerRepository),
		LeagueRepo:       new(MockLeagueRepository),
		MatchRepo:        new(MockMatchRepository),
		BotRepo:          new(MockBotRepository),
		NotificationRepo: new(MockNotificationRepository),
	}
}

func (m *MockStore) Players() playerrepo.PlayerRepository { return m.PlayerRepo }

func (m *MockStore) Leagues() leaguerepo.LeagueRepository { return m.LeagueRepo }

func (m *MockStore) Matches() matchrepo.MatchRepository { return m.MatchRepo }

func (m *MockStore) Bots() botrepo.BotRepository { return m.BotRepo }

func (m *MockStore) Notifications() notificationrepo.NotificationRepository {
	return m.NotificationRepo
}

// WithTransaction runs fn with the same mocks.
func (m *MockStore) WithTransaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	return fn(m)
}

// Mocks returns every repository mock, for VerifyAllMocks.
func (m *MockStore) Mocks() []any {
	return []any{m.PlayerRepo, m.LeagueRepo, m.MatchRepo, m.BotRepo, m.NotificationRepo}
}

// Player mock implementations.
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) GetPlayerById(ctx context.Context, playerId string) (*models.Player, error) {
	args := m.Called(ctx, playerId)
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) GetRecentlyActive(ctx context.Context, excludeId string, since time.Time, limit int) ([]*models.Player, error) {
	args := m.Called(ctx, excludeId, since, limit)
	return args.Get(0).([]*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) DebitEntryFee(ctx context.Context, playerId string, fee int64) (bool, error) {
	args := m.Called(ctx, playerId, fee)
	return args.Bool(0), args.Error(1)
}

func (m *MockPlayerRepository) Credit(ctx context.Context, playerId string, amount int64) error {
	args := m.Called(ctx, playerId, amount)
	return args.Error(0)
}

func (m *MockPlayerRepository) ConsumeFuel(ctx context.Context, playerId string) (bool, error) {
	args := m.Called(ctx, playerId)
	return args.Bool(0), args.Error(1)
}

// League mock implementations.
type MockLeagueRepository struct {
	mock.Mock
}

func (m *MockLeagueRepository) GetOrCreate(ctx context.Context, playerId string, snapshot string) (*models.LeagueRecord, error) {
	args := m.Called(ctx, playerId, snapshot)
	return args.Get(0).(*models.LeagueRecord), args.Error(1)
}

func (m *MockLeagueRepository) GetByPlayerIds(ctx context.Context, playerIds []string) (map[string]models.LeagueRecord, error) {
	args := m.Called(ctx, playerIds)
	return args.Get(0).(map[string]models.LeagueRecord), args.Error(1)
}

func (m *MockLeagueRepository) ApplyResult(ctx context.Context, playerId string, won bool, points league.Points, snapshot string, at time.Time) error {
	args := m.Called(ctx, playerId, won, points, snapshot, at)
	return args.Error(0)
}

func (m *MockLeagueRepository) UpdateSnapshot(ctx context.Context, playerId string, snapshot string) error {
	args := m.Called(ctx, playerId, snapshot)
	return args.Error(0)
}

func (m *MockLeagueRepository) GetPosition(ctx context.Context, snapshot string, leaguePoints int) (int, error) {
	args := m.Called(ctx, snapshot, leaguePoints)
	return args.Int(0), args.Error(1)
}

func (m *MockLeagueRepository) CountInLeague(ctx context.Context, snapshot string) (int64, error) {
	args := m.Called(ctx, snapshot)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeagueRepository) ResetDaily(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Match mock implementations.
type MockMatchRepository struct {
	mock.Mock
}

func (m *MockMatchRepository) CreateMatch(ctx context.Context, match *models.Match) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *MockMatchRepository) CountActiveSince(ctx context.Context, playerId string, since time.Time) (int64, error) {
	args := m.Called(ctx, playerId, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMatchRepository) GetWindowStats(ctx context.Context, playerId string, since time.Time) (*matchrepo.WindowStats, error) {
	args := m.Called(ctx, playerId, since)
	return args.Get(0).(*matchrepo.WindowStats), args.Error(1)
}

func (m *MockMatchRepository) ExemptSince(ctx context.Context, playerId string, since time.Time, at time.Time) (int64, error) {
	args := m.Called(ctx, playerId, since, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMatchRepository) ClearExemptionsBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMatchRepository) GetPlayerMatchHistory(ctx context.Context, playerId string, page int, limit int) ([]models.Match, int64, error) {
	args := m.Called(ctx, playerId, page, limit)
	return args.Get(0).([]models.Match), args.Get(1).(int64), args.Error(2)
}

// Bot mock implementations.
type MockBotRepository struct {
	mock.Mock
}

func (m *MockBotRepository) GetBotById(ctx context.Context, botId uint) (*models.Bot, error) {
	args := m.Called(ctx, botId)
	return args.Get(0).(*models.Bot), args.Error(1)
}

func (m *MockBotRepository) FindCandidates(ctx context.Context, league string, minPower int, maxPower int, limit int) ([]*models.Bot, error) {
	args := m.Called(ctx, league, minPower, maxPower, limit)
	return args.Get(0).([]*models.Bot), args.Error(1)
}

func (m *MockBotRepository) RecordResult(ctx context.Context, botId uint, won bool, at time.Time) error {
	args := m.Called(ctx, botId, won, at)
	return args.Error(0)
}

// Notification mock implementations.
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetNotifications(ctx context.Context, userId string, unreadOnly bool, limit int) ([]models.Notification, error) {
	args := m.Called(ctx, userId, unreadOnly, limit)
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userId string) (int64, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, userId string, ids []uint) (int64, error) {
	args := m.Called(ctx, userId, ids)
	return args.Get(0).(int64), args.Error(1)
}

// ============================================================================
// Side effect mocks used by the duel service.
// ============================================================================

type MockChallengeLock struct {
	mock.Mock
}

func (m *MockChallengeLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockChallengeLock) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) Record(entry logger.AuditEntry) error {
	args := m.Called(entry)
	return args.Error(0)
}
