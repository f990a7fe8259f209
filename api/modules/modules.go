package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tsdmkp/idle-garage-game-backend/api/cache"
	"github.com/tsdmkp/idle-garage-game-backend/api/handlers"
	"github.com/tsdmkp/idle-garage-game-backend/api/middleware"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/config"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/logger"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/redis"
)

// Module containing the necessary handlers.
type Module struct {
	Router     *gin.Engine
	PvPHandler *handlers.PvPHandler
}

// ModuleDependencies are the shared resources of every handler.
// Redis and Audit are optional.
type ModuleDependencies struct {
	Config   *config.Config
	Logger   zerolog.Logger
	DB       *gorm.DB
	Redis    *redis.RedisClient
	Audit    *logger.AuditLog
	MemCache *cache.MemCache
}

// Create a new module with all the necessary handlers initialized.
func NewModule(deps *ModuleDependencies) *Module {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(deps.Logger))

	return &Module{
		Router:     router,
		PvPHandler: initializePvPHandler(deps),
	}
}
