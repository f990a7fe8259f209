package botrepo

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tsdmkp/idle-garage-game-backend/internal/testutil"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/database/models"
)

var fixedDate = testutil.FixedNow

func seedBotTestData(t *testing.T, db *gorm.DB) {
	t.Helper()

	bots := []*models.Bot{
		{ID: 1, Name: "Low", CarName: "Rusty", CarPower: 145, League: "BRONZE", IsActive: true, LastOnline: fixedDate},
		{ID: 2, Name: "Mid", CarName: "Nine", CarPower: 190, League: "SILVER", IsActive: true, LastOnline: fixedDate, Build: testutil.Build("car_002", 2, 2, 2, 2)},
		{ID: 3, Name: "High", CarName: "Japanese", CarPower: 240, League: "SILVER", IsActive: true, LastOnline: fixedDate},
		{ID: 4, Name: "Retired", CarName: "Japanese", CarPower: 230, League: "SILVER", IsActive: false, LastOnline: fixedDate},
		{ID: 5, Name: "Top", CarName: "Japanese", CarPower: 285, League: "SILVER", IsActive: true, LastOnline: fixedDate},
	}

	for _, b := range bots {
		require.NoError(t, db.Create(b).Error)
	}
}
