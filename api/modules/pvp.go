package modules

import (
	"github.com/tsdmkp/idle-garage-game-backend/api/handlers"
	pvpservice "github.com/tsdmkp/idle-garage-game-backend/api/services/pvp"
)

func initializePvPHandler(deps *ModuleDependencies) *handlers.PvPHandler {
	pvpDeps := &pvpservice.PvPServiceDeps{
		DB:     deps.DB,
		Config: deps.Config.PvP,
		Logger: deps.Logger,
		Redis:  deps.Redis,
		Audit:  deps.Audit,
		Cache:  deps.MemCache,
	}

	pvpService := pvpservice.NewPvPService(pvpDeps)

	pvpHandlerDeps := &handlers.PvPHandlerDependencies{
		PvPService: pvpService,
		Logger:     deps.Logger,
	}

	return handlers.NewPvPHandler(pvpHandlerDeps)
}
