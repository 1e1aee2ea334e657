package rounds

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

// OpenRound creates a new round
func (h *Handler) OpenRound(c *gin.Context) {
	var req OpenRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequestResponse(c, err.Error())
		return
	}

	round, err := h.service.OpenRound(c.Request.Context(), &req)
	if err != nil {
		api.InternalErrorResponse(c, "Failed to open round")
		return
	}

	api.CreatedResponse(c, "Round opened successfully", round)
}

// SeedRound funds every pool of a round and publishes the entropy commitment
func (h *Handler) SeedRound(c *gin.Context) {
	roundID, ok := parseRoundID(c)
	if !ok {
		return
	}

	if err := h.service.SeedRound(c.Request.Context(), roundID); err != nil {
		switch {
		case errors.Is(err, models.ErrRecordNotFound):
			api.NotFoundResponse(c, "Round")
		case errors.Is(err, models.ErrRoundAlreadySeeded),
			errors.Is(err, models.ErrRoundNotOpen):
			api.ConflictResponse(c, err.Error())
		case errors.Is(err, models.ErrInsufficientReserve):
			api.ConflictResponse(c, err.Error())
		default:
			api.InternalErrorResponse(c, "Failed to seed round")
		}
		return
	}

	api.UpdatedResponse(c, "Round seeded successfully", gin.H{"round_id": roundID})
}

// CloseRound moves a round past its betting cutoff
func (h *Handler) CloseRound(c *gin.Context) {
	roundID, ok := parseRoundID(c)
	if !ok {
		return
	}

	if err := h.service.CloseRound(c.Request.Context(), roundID); err != nil {
		switch {
		case errors.Is(err, models.ErrRecordNotFound):
			api.NotFoundResponse(c, "Round")
		case errors.Is(err, models.ErrRoundNotOpen),
			errors.Is(err, models.ErrRoundNotClosed):
			api.ConflictResponse(c, err.Error())
		default:
			api.InternalErrorResponse(c, "Failed to close round")
		}
		return
	}

	api.UpdatedResponse(c, "Round closed successfully", gin.H{"round_id": roundID})
}

// RequestResolution triggers the randomness request for a closed round
func (h *Handler) RequestResolution(c *gin.Context) {
	roundID, ok := parseRoundID(c)
	if !ok {
		return
	}

	if err := h.service.RequestResolution(c.Request.Context(), roundID); err != nil {
		switch {
		case errors.Is(err, models.ErrRecordNotFound):
			api.NotFoundResponse(c, "Round")
		case errors.Is(err, models.ErrRoundNotClosed):
			api.ConflictResponse(c, err.Error())
		default:
			api.InternalErrorResponse(c, "Failed to request resolution")
		}
		return
	}

	api.UpdatedResponse(c, "Resolution requested", gin.H{"round_id": roundID})
}

// ResolveWithFallback settles a round whose randomness request timed out
func (h *Handler) ResolveWithFallback(c *gin.Context) {
	roundID, ok := parseRoundID(c)
	if !ok {
		return
	}

	if err := h.service.ResolveWithFallback(c.Request.Context(), roundID); err != nil {
		switch {
		case errors.Is(err, models.ErrRecordNotFound):
			api.NotFoundResponse(c, "Round")
		case errors.Is(err, models.ErrRoundNotResolving),
			errors.Is(err, models.ErrResolutionNotTimedOut):
			api.ConflictResponse(c, err.Error())
		default:
			api.InternalErrorResponse(c, "Failed to resolve round")
		}
		return
	}

	api.UpdatedResponse(c, "Round settled via fallback", gin.H{"round_id": roundID})
}

// SweepRound reclaims unclaimed funds after the claim window closes
func (h *Handler) SweepRound(c *gin.Context) {
	roundID, ok := parseRoundID(c)
	if !ok {
		return
	}

	swept, err := h.service.SweepRound(c.Request.Context(), roundID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrRecordNotFound):
			api.NotFoundResponse(c, "Round")
		case errors.Is(err, models.ErrRoundNotSettled),
			errors.Is(err, models.ErrRoundAlreadySwept),
			errors.Is(err, models.ErrClaimWindowOpen):
			api.ConflictResponse(c, err.Error())
		default:
			api.InternalErrorResponse(c, "Failed to sweep round")
		}
		return
	}

	api.UpdatedResponse(c, "Round swept successfully", swept)
}

// GetRound returns one round by id
func (h *Handler) GetRound(c *gin.Context) {
	roundID, ok := parseRoundID(c)
	if !ok {
		return
	}

	round, err := h.service.GetRound(c.Request.Context(), roundID)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			api.NotFoundResponse(c, "Round")
			return
		}
		api.InternalErrorResponse(c, "Failed to get round")
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Round retrieved successfully", round)
}

// ListRounds returns rounds newest first, optionally filtered by status
func (h *Handler) ListRounds(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	var status *models.RoundStatus
	if raw := c.Query("status"); raw != "" {
		s := models.RoundStatus(raw)
		status = &s
	}

	rounds, err := h.service.ListRounds(c.Request.Context(), status, limit, offset)
	if err != nil {
		api.InternalErrorResponse(c, "Failed to list rounds")
		return
	}

	api.ListResponse(c, "Rounds retrieved successfully", rounds, len(rounds))
}

func parseRoundID(c *gin.Context) (int64, bool) {
	roundID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || roundID <= 0 {
		api.BadRequestResponse(c, "Invalid round ID format")
		return 0, false
	}
	return roundID, true
}
