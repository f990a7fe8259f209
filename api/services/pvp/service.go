package pvpservice

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tsdmkp/idle-garage-game-backend/api/cache"
	"github.com/tsdmkp/idle-garage-game-backend/api/dto"
	"github.com/tsdmkp/idle-garage-game-backend/api/repositories"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/config"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/database/models"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/logger"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/pvp/battle"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/pvp/league"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/pvp/score"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/redis"
)

// ChallengeLock serializes the challenges of a single attacker.
type ChallengeLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// AuditRecorder keeps a record of every resolved battle.
type AuditRecorder interface {
	Record(entry logger.AuditEntry) error
}

// BotSampleCache keeps the bot candidates of a league and power range for a short time.
type BotSampleCache interface {
	GetOrLoad(key string, ttl time.Duration, load cache.LoadFunc) (any, error)
}

const (
	defaultMaxBattles = 20
	defaultWindow     = time.Hour
	defaultLockTTL    = 10 * time.Second
	botSampleTTL      = 15 * time.Second
)

// PvPService is the duel system: matchmaking, battles, settlement and the battle limit.
type PvPService struct {
	store repositories.Store
	log   zerolog.Logger

	catalog    *score.Catalog
	leagues    *league.Table
	reputation *league.ReputationTable
	points     league.Points
	resolver   *battle.Resolver

	lock  ChallengeLock
	audit AuditRecorder
	bots  BotSampleCache

	maxBattles int64
	window     time.Duration
	lockTTL    time.Duration

	now   func() time.Time
	newID func() (string, error)
}

// PvPServiceDeps is the dependency list for the duel service.
// Every optional value falls back to a default.
type PvPServiceDeps struct {
	DB     *gorm.DB
	Store  repositories.Store
	Config config.PvPConfiguration
	Logger zerolog.Logger

	Redis *redis.RedisClient
	Audit *logger.AuditLog
	Cache *cache.MemCache

	Catalog    *score.Catalog
	Leagues    *league.Table
	Reputation *league.ReputationTable
	RandSource rand.Source
	Now        func() time.Time
}

// NewPvPService creates the duel service.
func NewPvPService(deps *PvPServiceDeps) *PvPService {
	store := deps.Store
	if store == nil {
		store = repositories.NewStore(deps.DB)
	}

	catalog := deps.Catalog
	if catalog == nil {
		catalog = score.DefaultCatalog()
	}

	leagues := deps.Leagues
	if leagues == nil {
		leagues = league.DefaultTable()
	}

	reputation := deps.Reputation
	if reputation == nil {
		reputation = league.DefaultReputation()
	}

	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	service := &PvPService{
		store:      store,
		log:        deps.Logger.With().Str("service", "pvp").Logger(),
		catalog:    catalog,
		leagues:    leagues,
		reputation: reputation,
		points:     league.DefaultPoints,
		resolver:   battle.NewResolver(catalog, deps.RandSource),
		maxBattles: int64(deps.Config.MaxBattlesPerHour),
		window:     deps.Config.RateWindow,
		lockTTL:    deps.Config.ChallengeLockTTL,
		now:        now,
		newID:      func() (string, error) { return gonanoid.New() },
	}

	if service.maxBattles <= 0 {
		service.maxBattles = defaultMaxBattles
	}
	if service.window <= 0 {
		service.window = defaultWindow
	}
	if service.lockTTL <= 0 {
		service.lockTTL = defaultLockTTL
	}

	// Typed nil pointers must not end up inside the interfaces.
	if deps.Redis != nil {
		service.lock = deps.Redis
	}
	if deps.Audit != nil {
		service.audit = deps.Audit
	}
	if deps.Cache != nil {
		service.bots = deps.Cache
	}

	return service
}

// loadPlayer returns a player, mapping a missing record to notFound.
func (s *PvPService) loadPlayer(ctx context.Context, store repositories.Store, playerId string, notFound error) (*models.Player, error) {
	player, err := store.Players().GetPlayerById(ctx, playerId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", notFound, playerId)
	}
	if err != nil {
		return nil, err
	}

	return player, nil
}

// activeCar returns the car a player races with.
// Malformed garages are treated as empty, coerced levels are only logged.
func (s *PvPService) activeCar(player *models.Player) (score.Car, bool) {
	car, coercions, ok, err := player.ActiveCar()
	if err != nil {
		s.log.Warn().Err(err).Str("playerId", player.ID).Msg("unreadable garage")
		return score.Car{}, false
	}

	for _, c := range coercions {
		s.log.Warn().
			Str("playerId", player.ID).
			Str("carId", c.CarID).
			Str("slot", c.Slot).
			Str("raw", c.Raw).
			Msg("coerced car level")
	}

	return car, ok
}

// botCar returns the authoritative car of a bot.
// Bots without a readable build get levels synthesized from the declared power.
func (s *PvPService) botCar(bot *models.Bot) score.Car {
	if len(bot.Build) > 0 {
		car, _, err := score.DecodeCar(bot.Build)
		if err == nil && car.Archetype != "" {
			car.Name = bot.CarName
			return car
		}
		s.log.Warn().Err(err).Uint("botId", bot.ID).Msg("unreadable bot build, synthesizing")
	}

	car := s.catalog.SynthesizeLevels(bot.CarPower)
	car.Name = bot.CarName
	return car
}

func tierInfo(tier league.Tier) dto.TierInfo {
	info := dto.TierInfo{
		Key:        tier.Key,
		Name:       tier.Name,
		Icon:       tier.Icon,
		Color:      tier.Color,
		MinPower:   tier.MinPower,
		EntryFee:   tier.EntryFee,
		WinReward:  tier.WinReward,
		LoseReward: tier.LoseReward,
	}
	if tier.MaxPower != league.Unbounded {
		maxPower := tier.MaxPower
		info.MaxPower = &maxPower
	}

	return info
}

// winRate is the rounded win percentage, 50 when there are no games yet.
func winRate(wins, losses int) int {
	total := wins + losses
	if total <= 0 {
		return 50
	}
	return (wins*100 + total/2) / total
}
