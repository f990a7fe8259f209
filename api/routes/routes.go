package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/tsdmkp/idle-garage-game-backend/api/handlers"
)

type Router struct {
	Engine *gin.Engine
	api    *gin.RouterGroup
}

func NewRouter(engine *gin.Engine) *Router {
	return &Router{
		api:    engine.Group("/api/v1"),
		Engine: engine,
	}
}

func (r *Router) SetupRoutes(handlerList ...any) {
	for _, h := range handlerList {
		switch handler := h.(type) {
		case *handlers.PvPHandler:
			r.registerPvPHandler(handler)
		}
	}
}

// Register the duel handler.
func (r *Router) registerPvPHandler(handler *handlers.PvPHandler) {
	pvp := r.api.Group("/pvp")
	{
		pvp.GET("/league-info", handler.GetLeagueInfo)
		pvp.GET("/opponents", handler.GetOpponents)
		pvp.POST("/challenge", handler.PostChallenge)
		pvp.POST("/reset-limit", handler.PostResetLimit)
		pvp.GET("/limit-status", handler.GetLimitStatus)
		pvp.GET("/limit-details", handler.GetLimitDetails)
		pvp.GET("/match-history", handler.GetMatchHistory)
		pvp.GET("/notifications", handler.GetNotifications)
		pvp.POST("/notifications/mark-read", handler.PostMarkRead)
	}
}
