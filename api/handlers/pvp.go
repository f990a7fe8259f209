package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tsdmkp/idle-garage-game-backend/api/filters"
	pvpservice "github.com/tsdmkp/idle-garage-game-backend/api/services/pvp"
	"github.com/tsdmkp/idle-garage-game-backend/pkg/messages"
)

// PvPHandler is the handler for the duel endpoints.
type PvPHandler struct {
	PvPService *pvpservice.PvPService
	log        zerolog.Logger
}

type PvPHandlerDependencies struct {
	PvPService *pvpservice.PvPService
	Logger     zerolog.Logger
}

// NewPvPHandler creates a new instance of the duel handler.
func NewPvPHandler(deps *PvPHandlerDependencies) *PvPHandler {
	return &PvPHandler{
		PvPService: deps.PvPService,
		log:        deps.Logger,
	}
}

// GetLeagueInfo returns the league standing of a player.
func (h *PvPHandler) GetLeagueInfo(c *gin.Context) {
	var qp filters.PlayerParams
	if err := c.ShouldBindQuery(&qp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.InvalidPlayerId})
		return
	}

	standing, err := h.PvPService.GetLeagueStanding(c.Request.Context(), qp.UserId)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": standing})
}

// GetOpponents returns the matchmaking candidates of a player.
func (h *PvPHandler) GetOpponents(c *gin.Context) {
	var qp filters.PlayerParams
	if err := c.ShouldBindQuery(&qp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.InvalidPlayerId})
		return
	}

	opponents, err := h.PvPService.ListOpponents(c.Request.Context(), qp.UserId)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": opponents})
}

// PostChallenge runs a duel against the given opponent.
func (h *PvPHandler) PostChallenge(c *gin.Context) {
	var body filters.ChallengeParams
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.InvalidPlayerId})
		return
	}

	result, err := h.PvPService.ResolveChallenge(c.Request.Context(), strings.TrimSpace(body.UserId), body.OpponentId)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// PostResetLimit exempts the matches of the current window, after a watched ad.
func (h *PvPHandler) PostResetLimit(c *gin.Context) {
	var body filters.ResetLimitParams
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.InvalidPlayerId})
		return
	}

	reset, err := h.PvPService.ResetLimit(c.Request.Context(), body.UserId)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": reset})
}

// GetLimitStatus returns the battle limit of a player.
func (h *PvPHandler) GetLimitStatus(c *gin.Context) {
	var qp filters.PlayerParams
	if err := c.ShouldBindQuery(&qp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.InvalidPlayerId})
		return
	}

	status, err := h.PvPService.GetLimitStatus(c.Request.Context(), qp.UserId)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": status})
}

// GetLimitDetails returns the breakdown of the limit window.
func (h *PvPHandler) GetLimitDetails(c *gin.Context) {
	var qp filters.PlayerParams
	if err := c.ShouldBindQuery(&qp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.InvalidPlayerId})
		return
	}

	details, err := h.PvPService.GetLimitDetails(c.Request.Context(), qp.UserId)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": details})
}

// GetMatchHistory returns a page of the duels of a player.
func (h *PvPHandler) GetMatchHistory(c *gin.Context) {
	var qp filters.MatchHistoryParams
	if err := c.ShouldBindQuery(&qp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	history, err := h.PvPService.GetMatchHistory(c.Request.Context(), filters.NewMatchHistoryFilter(&qp))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": history})
}

// GetNotifications returns the inbox of a player.
func (h *PvPHandler) GetNotifications(c *gin.Context) {
	var qp filters.NotificationParams
	if err := c.ShouldBindQuery(&qp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notifications, err := h.PvPService.GetNotifications(c.Request.Context(), filters.NewNotificationFilter(&qp))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": notifications})
}

// PostMarkRead marks notifications as read.
func (h *PvPHandler) PostMarkRead(c *gin.Context) {
	var body filters.MarkReadParams
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.InvalidPlayerId})
		return
	}

	marked, err := h.PvPService.MarkNotificationsRead(c.Request.Context(), body.UserId, body.Ids)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": gin.H{"marked": marked}})
}

// writeError maps the service errors to a status code.
// Unknown errors are logged and hidden from the client.
func (h *PvPHandler) writeError(c *gin.Context, err error) {
	var limited *pvpservice.RateLimitedError
	switch {
	case errors.As(err, &limited):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":        limited.Error(),
			"currentCount": limited.Current,
			"maxAllowed":   limited.Max,
		})
	case errors.Is(err, pvpservice.ErrPlayerNotFound), errors.Is(err, pvpservice.ErrOpponentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, pvpservice.ErrNoActiveCar),
		errors.Is(err, pvpservice.ErrInsufficientResource),
		errors.Is(err, pvpservice.ErrInsufficientCurrency),
		errors.Is(err, pvpservice.ErrSelfChallenge),
		errors.Is(err, pvpservice.ErrMissingOpponent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, pvpservice.ErrChallengeInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger(c).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// logger returns the request logger, or the handler one outside the request id middleware.
func (h *PvPHandler) logger(c *gin.Context) *zerolog.Logger {
	if l := zerolog.Ctx(c.Request.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &h.log
}
