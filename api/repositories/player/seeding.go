package playerrepo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tsdmkp/idle-garage-game-backend/internal/testutil"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/database/models"
)

var fixedDate = testutil.FixedNow

func seedPlayerTestData(t *testing.T, db *gorm.DB) {
	t.Helper()

	players := []*models.Player{
		{ID: "p1", FirstName: "Ana", Coins: 500, Fuel: 3, SelectedCarID: "car_002", Cars: testutil.Garage("car_002", 1, 1, 1, 1), LastExitTime: fixedDate.Add(-5 * time.Minute)},
		{ID: "p2", FirstName: "Bruno", Coins: 50, Fuel: 0, Cars: testutil.Garage("car_001", 0, 0, 0, 0), LastExitTime: fixedDate.Add(-2 * time.Hour)},
		{ID: "p3", FirstName: "Carla", Coins: 1000, Fuel: 10, Cars: testutil.Garage("car_005", 2, 2, 2, 2), LastExitTime: fixedDate.Add(-30 * time.Minute)},
		{ID: "p4", FirstName: "Diego", Coins: 10, Fuel: 5, Cars: testutil.Garage("car_003", 0, 0, 0, 0), LastExitTime: fixedDate.Add(-10 * 24 * time.Hour)},
		{ID: "p5", FirstName: "Eva", Coins: 10, Fuel: 5, Cars: nil, LastExitTime: fixedDate.Add(-time.Minute)},
		{ID: "p6", FirstName: "Fabio", Coins: 200, Fuel: 1, Cars: datatypes.JSON(`[]`), LastExitTime: fixedDate.Add(-3 * time.Minute)},
	}

	for _, p := range players {
		require.NoError(t, db.Create(p).Error)
	}
}
