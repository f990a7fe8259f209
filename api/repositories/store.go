package repositories

import (
	"context"

	"gorm.io/gorm"

	botrepo "github.com/tsdmkp/idle-garage-game-backend/api/repositories/bot"
	leaguerepo "github.com/tsdmkp/idle-garage-game-backend/api/repositories/league"
	matchrepo "github.com/tsdmkp/idle-garage-game-backend/api/repositories/match"
	notificationrepo "github.com/tsdmkp/idle-garage-game-backend/api/repositories/notification"
	playerrepo "github.com/tsdmkp/idle-garage-game-backend/api/repositories/player"
)

// Store aggregates every repository used by the duel system.
// Repositories returned inside WithTransaction share the same transaction.
type Store interface {
	Players() playerrepo.PlayerRepository
	Leagues() leaguerepo.LeagueRepository
	Matches() matchrepo.MatchRepository
	Bots() botrepo.BotRepository
	Notifications() notificationrepo.NotificationRepository

	WithTransaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB

	players       playerrepo.PlayerRepository
	leagues       leaguerepo.LeagueRepository
	matches       matchrepo.MatchRepository
	bots          botrepo.BotRepository
	notifications notificationrepo.NotificationRepository
}

// NewStore creates a store backed by gorm.
func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:            db,
		players:       playerrepo.NewPlayerRepository(db),
		leagues:       leaguerepo.NewLeagueRepository(db),
		matches:       matchrepo.NewMatchRepository(db),
		bots:          botrepo.NewBotRepository(db),
		notifications: notificationrepo.NewNotificationRepository(db),
	}
}

func (s *gormStore) Players() playerrepo.PlayerRepository { return s.players }

func (s *gormStore) Leagues() leaguerepo.LeagueRepository { return s.leagues }

func (s *gormStore) Matches() matchrepo.MatchRepository { return s.matches }

func (s *gormStore) Bots() botrepo.BotRepository { return s.bots }

func (s *gormStore) Notifications() notificationrepo.NotificationRepository { return s.notifications }

// WithTransaction runs fn inside a database transaction.
// Returning an error from fn rolls back every write made through tx.
func (s *gormStore) WithTransaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
