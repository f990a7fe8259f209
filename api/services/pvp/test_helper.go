package pvpservice

import (
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/tsdmkp/idle-garage-game-backend/api/services/testutil"
	dbutil "github.com/tsdmkp/idle-garage-game-backend/internal/testutil"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/database/models"
)

var fixedNow = dbutil.FixedNow

// Helper to initialize the mocks.
func setupTestService() (*PvPService, *testutil.MockStore, *testutil.MockChallengeLock, *testutil.MockAuditRecorder) {
	store := testutil.NewMockStore()
	lock := new(testutil.MockChallengeLock)
	audit := new(testutil.MockAuditRecorder)

	service := NewPvPService(&PvPServiceDeps{
		Store:      store,
		Logger:     zerolog.Nop(),
		RandSource: rand.NewPCG(1, 2),
		Now:        dbutil.Clock(fixedNow),
	})
	service.lock = lock
	service.audit = audit
	service.newID = func() (string, error) { return "match-id", nil }

	return service, store, lock, audit
}

// newTestPlayer returns a player with a single car_001.
// Each engine level adds 5 points to the 140 of the stock car.
func newTestPlayer(id string, engine int, coins int64, fuel int) *models.Player {
	return &models.Player{
		ID:            id,
		FirstName:     "Racer " + id,
		Coins:         coins,
		Fuel:          fuel,
		SelectedCarID: "car_001",
		Cars:          dbutil.Garage("car_001", engine, 0, 0, 0),
		LastExitTime:  fixedNow.Add(-5 * time.Minute),
	}
}

func newTestBot(id uint, power int, league string) *models.Bot {
	return &models.Bot{
		ID:         id,
		Name:       "Bot",
		CarName:    "Old Japanese",
		CarPower:   power,
		League:     league,
		IsActive:   true,
		LastOnline: fixedNow.Add(-time.Hour),
	}
}

func garageOf(archetype string, engine, tires int) datatypes.JSON {
	return dbutil.Garage(archetype, engine, tires, 0, 0)
}
