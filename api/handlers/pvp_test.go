package handlers

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pvpservice "github.com/tsdmkp/idle-garage-game-backend/api/services/pvp"
	"github.com/tsdmkp/idle-garage-game-backend/internal/testutil"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/config"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/database/models"
)

// Helper to build an engine with the duel routes on a fresh database.
func setupTestHandler(t *testing.T, maxBattles int) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewSQLiteConnection(t)
	service := pvpservice.NewPvPService(&pvpservice.PvPServiceDeps{
		DB:         db,
		Config:     config.PvPConfiguration{MaxBattlesPerHour: maxBattles},
		Logger:     zerolog.Nop(),
		RandSource: rand.NewPCG(7, 7),
		Now:        testutil.Clock(testutil.FixedNow),
	})

	handler := NewPvPHandler(&PvPHandlerDependencies{PvPService: service, Logger: zerolog.Nop()})

	engine := gin.New()
	pvp := engine.Group("/pvp")
	pvp.GET("/league-info", handler.GetLeagueInfo)
	pvp.GET("/opponents", handler.GetOpponents)
	pvp.POST("/challenge", handler.PostChallenge)
	pvp.POST("/reset-limit", handler.PostResetLimit)
	pvp.GET("/limit-status", handler.GetLimitStatus)
	pvp.GET("/limit-details", handler.GetLimitDetails)
	pvp.GET("/match-history", handler.GetMatchHistory)
	pvp.GET("/notifications", handler.GetNotifications)
	pvp.POST("/notifications/mark-read", handler.PostMarkRead)

	return engine, db
}

func seedRacer(t *testing.T, db *gorm.DB, id string, engine int, coins int64, fuel int) {
	t.Helper()
	require.NoError(t, db.Create(&models.Player{
		ID:            id,
		Coins:         coins,
		Fuel:          fuel,
		SelectedCarID: "car_001",
		Cars:          testutil.Garage("car_001", engine, 0, 0, 0),
		LastExitTime:  testutil.FixedNow.Add(-time.Minute),
	}).Error)
}

func perform(engine *gin.Engine, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var decoded map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

func TestPvPHandlerStatusCodes(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		target         string
		body           string
		expectedStatus int
	}{
		{name: "league info without user", method: http.MethodGet, target: "/pvp/league-info", expectedStatus: http.StatusBadRequest},
		{name: "league info unknown user", method: http.MethodGet, target: "/pvp/league-info?userId=ghost", expectedStatus: http.StatusNotFound},
		{name: "league info", method: http.MethodGet, target: "/pvp/league-info?userId=p1", expectedStatus: http.StatusOK},
		{name: "league info without car", method: http.MethodGet, target: "/pvp/league-info?userId=walker", expectedStatus: http.StatusBadRequest},
		{name: "opponents", method: http.MethodGet, target: "/pvp/opponents?userId=p1", expectedStatus: http.StatusOK},
		{name: "challenge malformed body", method: http.MethodPost, target: "/pvp/challenge", body: `{"userId":`, expectedStatus: http.StatusBadRequest},
		{name: "challenge without opponent", method: http.MethodPost, target: "/pvp/challenge", body: `{"userId":"p1"}`, expectedStatus: http.StatusBadRequest},
		{name: "challenge yourself", method: http.MethodPost, target: "/pvp/challenge", body: `{"userId":"p1","opponentId":"p1"}`, expectedStatus: http.StatusBadRequest},
		{name: "challenge unknown opponent", method: http.MethodPost, target: "/pvp/challenge", body: `{"userId":"p1","opponentId":"bot_404"}`, expectedStatus: http.StatusNotFound},
		{name: "challenge without fuel", method: http.MethodPost, target: "/pvp/challenge", body: `{"userId":"tired","opponentId":"p1"}`, expectedStatus: http.StatusBadRequest},
		{name: "challenge", method: http.MethodPost, target: "/pvp/challenge", body: `{"userId":"p1","opponentId":"p2"}`, expectedStatus: http.StatusOK},
		{name: "limit status", method: http.MethodGet, target: "/pvp/limit-status?userId=p1", expectedStatus: http.StatusOK},
		{name: "limit details", method: http.MethodGet, target: "/pvp/limit-details?userId=p1", expectedStatus: http.StatusOK},
		{name: "reset limit unknown user", method: http.MethodPost, target: "/pvp/reset-limit", body: `{"userId":"ghost"}`, expectedStatus: http.StatusNotFound},
		{name: "match history", method: http.MethodGet, target: "/pvp/match-history?userId=p1&page=1&limit=5", expectedStatus: http.StatusOK},
		{name: "match history bad page", method: http.MethodGet, target: "/pvp/match-history?userId=p1&page=abc", expectedStatus: http.StatusBadRequest},
		{name: "notifications", method: http.MethodGet, target: "/pvp/notifications?userId=p2&unread=true", expectedStatus: http.StatusOK},
		{name: "mark read", method: http.MethodPost, target: "/pvp/notifications/mark-read", body: `{"userId":"p2"}`, expectedStatus: http.StatusOK},
	}

	engine, db := setupTestHandler(t, 20)
	seedRacer(t, db, "p1", 16, 1000, 10)
	seedRacer(t, db, "p2", 16, 0, 0)
	seedRacer(t, db, "tired", 16, 1000, 0)
	require.NoError(t, db.Create(&models.Player{ID: "walker"}).Error)

	// Subtests share the database and run in order.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := perform(engine, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedStatus == http.StatusOK {
				assert.Contains(t, body, "result")
			} else {
				assert.Contains(t, body, "error")
			}
		})
	}
}

func TestPostChallengeRateLimited(t *testing.T) {
	engine, db := setupTestHandler(t, 1)
	seedRacer(t, db, "p1", 16, 1000, 10)
	seedRacer(t, db, "p2", 16, 0, 0)

	w, body := perform(engine, http.MethodPost, "/pvp/challenge", `{"userId":"p1","opponentId":"p2"}`)
	require.Equal(t, http.StatusOK, w.Code)

	result := body["result"].(map[string]any)
	assert.Equal(t, "SILVER", result["league"])
	assert.Equal(t, true, result["isRealPlayer"])
	assert.Contains(t, result, "battleDetails")

	w, body = perform(engine, http.MethodPost, "/pvp/challenge", `{"userId":"p1","opponentId":"p2"}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, float64(1), body["currentCount"])
	assert.Equal(t, float64(1), body["maxAllowed"])

	// The defender hit the limit too.
	w, body = perform(engine, http.MethodGet, "/pvp/limit-status?userId=p2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["result"].(map[string]any)["canBattle"])

	w, body = perform(engine, http.MethodPost, "/pvp/reset-limit", `{"userId":"p1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	reset := body["result"].(map[string]any)
	assert.Equal(t, true, reset["canBattleNow"])
	assert.Equal(t, float64(1), reset["matchesReset"])
}

func TestPostChallengeInsufficientCoins(t *testing.T) {
	engine, db := setupTestHandler(t, 20)
	seedRacer(t, db, "poor", 16, 10, 5)
	seedRacer(t, db, "p2", 16, 0, 0)

	w, body := perform(engine, http.MethodPost, "/pvp/challenge", `{"userId":"poor","opponentId":"p2"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "SILVER")

	var player models.Player
	require.NoError(t, db.WithContext(context.Background()).First(&player, "id = ?", "poor").Error)
	assert.Equal(t, int64(10), player.Coins)
}
