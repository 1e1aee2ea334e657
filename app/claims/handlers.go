package claims

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

// Claim pays out a winning bet to its owner, or with a bounty cut to a
// third-party claimant after the owner window closes
func (h *Handler) Claim(c *gin.Context) {
	claimantID, ok := api.ContextUserID(c)
	if !ok {
		api.UnauthorizedResponse(c)
		return
	}

	betID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || betID <= 0 {
		api.BadRequestResponse(c, "Invalid bet ID format")
		return
	}

	claim, err := h.service.Claim(c.Request.Context(), claimantID, betID)
	if err != nil {
		h.respondClaimError(c, err)
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Bet claimed successfully", claim)
}

func (h *Handler) respondClaimError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrRecordNotFound):
		api.NotFoundResponse(c, "Bet")
	case errors.Is(err, models.ErrBetLost):
		api.ConflictResponse(c, err.Error())
	case errors.Is(err, models.ErrBetAlreadyClaimed),
		errors.Is(err, models.ErrBetNotActive),
		errors.Is(err, models.ErrRoundNotSettled),
		errors.Is(err, models.ErrClaimWindowOpen):
		api.ConflictResponse(c, err.Error())
	case errors.Is(err, models.ErrPayoutBelowBountyMin):
		api.BadRequestResponse(c, err.Error())
	default:
		api.InternalErrorResponse(c, "Failed to claim bet")
	}
}

// PreviewPayout computes what a claim would pay without moving funds
func (h *Handler) PreviewPayout(c *gin.Context) {
	betID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || betID <= 0 {
		api.BadRequestResponse(c, "Invalid bet ID format")
		return
	}

	preview, err := h.service.PreviewPayout(c.Request.Context(), betID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrRecordNotFound):
			api.NotFoundResponse(c, "Bet")
		case errors.Is(err, models.ErrMatchNotFinalized):
			api.ConflictResponse(c, err.Error())
		default:
			api.InternalErrorResponse(c, "Failed to preview payout")
		}
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Payout preview", preview)
}
