package ledger

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joefazee/toto/app/api"
	"github.com/joefazee/toto/models"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateAccount creates a new user account
func (h *Handler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequestResponse(c, err.Error())
		return
	}

	account, err := h.service.CreateAccount(c.Request.Context(), &req)
	if err != nil {
		api.InternalErrorResponse(c, "Failed to create account")
		return
	}

	api.CreatedResponse(c, "Account created successfully", account)
}

// GetAccount returns a single account by id
func (h *Handler) GetAccount(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		api.BadRequestResponse(c, "Invalid account ID format")
		return
	}

	account, err := h.service.GetAccount(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			api.NotFoundResponse(c, "Account")
			return
		}
		api.InternalErrorResponse(c, "Failed to get account")
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Account retrieved successfully", account)
}

// GetAccountEntries returns the ledger entries of an account, newest first
func (h *Handler) GetAccountEntries(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		api.BadRequestResponse(c, "Invalid account ID format")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.service.GetAccountEntries(c.Request.Context(), id, limit, offset)
	if err != nil {
		api.InternalErrorResponse(c, "Failed to get account entries")
		return
	}

	api.ListResponse(c, "Entries retrieved successfully", entries, len(entries))
}

// GetReserve returns the current reserve position
func (h *Handler) GetReserve(c *gin.Context) {
	available, locked, err := h.service.ReserveBalance(c.Request.Context())
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			api.NotFoundResponse(c, "Reserve account")
			return
		}
		api.InternalErrorResponse(c, "Failed to get reserve balance")
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Reserve retrieved successfully", &ReserveResponse{
		Available: available,
		Locked:    locked,
		Total:     available.Add(locked),
	})
}
