package matchrepo

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tsdmkp/idle-garage-game-backend/internal/testutil"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/database/models"
)

var fixedDate = testutil.FixedNow

func newTestMatch(attacker, defender string, at time.Time, exempted *time.Time) *models.Match {
	return &models.Match{
		PublicID:   fmt.Sprintf("m-%s-%s-%d", attacker, defender, at.UnixNano()),
		AttackerID: attacker,
		DefenderID: defender,
		League:     "SILVER",
		Winner:     models.WinnerAttacker,
		MatchDate:  at,
		ExemptedAt: exempted,
	}
}

// seedMatchTestData creates a player p1 with matches inside and outside the hour before fixedDate.
func seedMatchTestData(t *testing.T, db *gorm.DB) {
	t.Helper()

	exemptedAt := fixedDate.Add(-50 * time.Minute)
	matches := []*models.Match{
		newTestMatch("p1", "bot_1", fixedDate.Add(-10*time.Minute), nil),
		newTestMatch("p2", "p1", fixedDate.Add(-20*time.Minute), nil),
		newTestMatch("p1", "bot_2", fixedDate.Add(-40*time.Minute), &exemptedAt),
		newTestMatch("p1", "p3", fixedDate.Add(-59*time.Minute), nil),
		newTestMatch("p1", "bot_3", fixedDate.Add(-61*time.Minute), nil),
		newTestMatch("p1", "bot_4", fixedDate.Add(-3*time.Hour), &exemptedAt),
		newTestMatch("p2", "p3", fixedDate.Add(-5*time.Minute), nil),
	}

	for _, m := range matches {
		require.NoError(t, db.Create(m).Error)
	}
}
