package bets

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/toto/app/api"
	"github.com/joefazee/toto/models"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// PlaceBet places a new bet for the authenticated account
func (h *Handler) PlaceBet(c *gin.Context) {
	ownerID, ok := api.ContextUserID(c)
	if !ok {
		api.UnauthorizedResponse(c)
		return
	}

	var req PlaceBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequestResponse(c, err.Error())
		return
	}

	bet, err := h.service.PlaceBet(c.Request.Context(), ownerID, &req)
	if err != nil {
		h.respondPlacementError(c, err)
		return
	}

	api.CreatedResponse(c, "Bet placed successfully", bet)
}

func (h *Handler) respondPlacementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrRecordNotFound):
		api.NotFoundResponse(c, "Round")
	case errors.Is(err, models.ErrRoundNotSeeded),
		errors.Is(err, models.ErrRoundClosed):
		api.ConflictResponse(c, err.Error())
	case errors.Is(err, models.ErrInsufficientLiquidity),
		errors.Is(err, models.ErrInsufficientReserve),
		errors.Is(err, models.ErrInsufficientBalance):
		api.ConflictResponse(c, err.Error())
	case errors.Is(err, models.ErrInvalidMatchIndex),
		errors.Is(err, models.ErrInvalidOutcome),
		errors.Is(err, models.ErrDuplicateBetLeg),
		errors.Is(err, models.ErrStakeTooSmall),
		errors.Is(err, models.ErrStakeTooLarge),
		errors.Is(err, models.ErrNoBetLegs),
		errors.Is(err, models.ErrTooManyBetLegs):
		api.BadRequestResponse(c, err.Error())
	default:
		api.InternalErrorResponse(c, "Failed to place bet")
	}
}

// CancelBet voids an active bet owned by the authenticated account
func (h *Handler) CancelBet(c *gin.Context) {
	ownerID, ok := api.ContextUserID(c)
	if !ok {
		api.UnauthorizedResponse(c)
		return
	}

	betID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || betID <= 0 {
		api.BadRequestResponse(c, "Invalid bet ID format")
		return
	}

	bet, err := h.service.CancelBet(c.Request.Context(), ownerID, betID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrRecordNotFound):
			api.NotFoundResponse(c, "Bet")
		case errors.Is(err, models.ErrNotBetOwner):
			api.ForbiddenResponse(c, err.Error())
		case errors.Is(err, models.ErrBetNotActive),
			errors.Is(err, models.ErrBetNotCancellable):
			api.ConflictResponse(c, err.Error())
		default:
			api.InternalErrorResponse(c, "Failed to cancel bet")
		}
		return
	}

	api.UpdatedResponse(c, "Bet cancelled successfully", bet)
}

// GetBet returns one bet by id
func (h *Handler) GetBet(c *gin.Context) {
	betID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || betID <= 0 {
		api.BadRequestResponse(c, "Invalid bet ID format")
		return
	}

	bet, err := h.service.GetBet(c.Request.Context(), betID)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			api.NotFoundResponse(c, "Bet")
			return
		}
		api.InternalErrorResponse(c, "Failed to get bet")
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Bet retrieved successfully", bet)
}

// GetMyBets returns the authenticated account's bets, newest first
func (h *Handler) GetMyBets(c *gin.Context) {
	ownerID, ok := api.ContextUserID(c)
	if !ok {
		api.UnauthorizedResponse(c)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	ownerBets, err := h.service.GetBetsByOwner(c.Request.Context(), ownerID, limit, offset)
	if err != nil {
		api.InternalErrorResponse(c, "Failed to get bets")
		return
	}

	api.ListResponse(c, "Bets retrieved successfully", ownerBets, len(ownerBets))
}
