package pools

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

func parseRoundID(c *gin.Context) (int64, bool) {
	roundID, err := strconv.ParseInt(c.Param("round_id"), 10, 64)
	if err != nil || roundID <= 0 {
		api.BadRequestResponse(c, "Invalid round ID format")
		return 0, false
	}
	return roundID, true
}

// GetLockedOdds returns the odds snapshot locked at seed time
func (h *Handler) GetLockedOdds(c *gin.Context) {
	roundID, ok := parseRoundID(c)
	if !ok {
		return
	}
	matchIndex, err := strconv.Atoi(c.Param("match_index"))
	if err != nil || matchIndex < 0 {
		api.BadRequestResponse(c, "Invalid match index format")
		return
	}

	odds, err := h.service.GetLockedOdds(c.Request.Context(), roundID, matchIndex)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			api.NotFoundResponse(c, "Match pool")
			return
		}
		api.InternalErrorResponse(c, "Failed to get locked odds")
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Locked odds retrieved successfully", odds)
}

// GetRoundPools returns all match pools for a round
func (h *Handler) GetRoundPools(c *gin.Context) {
	roundID, ok := parseRoundID(c)
	if !ok {
		return
	}

	matchPools, err := h.service.GetRoundPools(c.Request.Context(), roundID)
	if err != nil {
		api.InternalErrorResponse(c, "Failed to get round pools")
		return
	}

	api.ListResponse(c, "Round pools retrieved successfully", matchPools, len(matchPools))
}

// GetRoundAccounting returns the aggregate accounting for a round
func (h *Handler) GetRoundAccounting(c *gin.Context) {
	roundID, ok := parseRoundID(c)
	if !ok {
		return
	}

	accounting, err := h.service.GetRoundAccounting(c.Request.Context(), roundID)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			api.NotFoundResponse(c, "Round accounting")
			return
		}
		api.InternalErrorResponse(c, "Failed to get round accounting")
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Round accounting retrieved successfully", ToAccountingResponse(accounting))
}
