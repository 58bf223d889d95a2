package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/moncash/moncash-backend/internal/domain"
	"github.com/moncash/moncash-backend/internal/middleware"
	"github.com/moncash/moncash-backend/internal/service"
)

// PotHandler handles savings pot HTTP requests
type PotHandler struct {
	potService *service.PotService
}

// NewPotHandler creates a new PotHandler
func NewPotHandler(potService *service.PotService) *PotHandler {
	return &PotHandler{potService: potService}
}

// PotResponse represents the savings pot in API responses
type PotResponse struct {
	Total     string `json:"total"`
	Goal      string `json:"goal"`
	Notes     string `json:"notes"`
	UpdatedAt string `json:"updatedAt"`
}

func toPotResponse(p *domain.Pot) PotResponse {
	return PotResponse{
		Total:     p.Total.StringFixed(2),
		Goal:      p.Goal.StringFixed(2),
		Notes:     p.Notes,
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}

// PotEntryResponse represents a pot deposit in API responses
type PotEntryResponse struct {
	ID          int32  `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
	CreatedAt   string `json:"createdAt"`
}

func toPotEntryResponse(e *domain.PotEntry) PotEntryResponse {
	return PotEntryResponse{
		ID:          e.ID,
		Amount:      e.Amount.StringFixed(2),
		Description: e.Description,
		Date:        e.Date.Format("2006-01-02"),
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

// GetPot godoc
// @Summary Get the savings pot
// @Description Return the caller's pot, creating an empty one on first access
// @Tags pot
// @Produce json
// @Security BearerAuth
// @Success 200 {object} PotResponse
// @Failure 401 {object} ProblemDetails
// @Router /pot [get]
func (h *PotHandler) GetPot(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	pot, err := h.potService.GetPot(ownerID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to get pot")
		return NewInternalError(c, "Failed to get pot")
	}

	return c.JSON(http.StatusOK, toPotResponse(pot))
}

// UpdatePotRequest represents the pot update request body
type UpdatePotRequest struct {
	Goal  string `json:"goal"`
	Notes string `json:"notes"`
}

// UpdatePot godoc
// @Summary Update the savings pot
// @Description Set the savings goal and notes; the total only moves through deposits
// @Tags pot
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdatePotRequest true "Pot update request"
// @Success 200 {object} PotResponse
// @Failure 400 {object} ProblemDetails
// @Router /pot [put]
func (h *PotHandler) UpdatePot(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req UpdatePotRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	goal, err := decimal.NewFromString(req.Goal)
	if err != nil {
		return NewValidationError(c, "Invalid goal", []ValidationError{
			{Field: "goal", Message: "Goal must be a valid decimal number"},
		})
	}

	pot, err := h.potService.UpdatePot(ownerID, service.UpdatePotInput{
		Goal:  goal,
		Notes: req.Notes,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Goal must not be negative", []ValidationError{
				{Field: "goal", Message: "Goal must not be negative"},
			})
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to update pot")
		return NewInternalError(c, "Failed to update pot")
	}

	return c.JSON(http.StatusOK, toPotResponse(pot))
}

// DepositRequest represents the deposit request body
type DepositRequest struct {
	Amount      string  `json:"amount"`
	Description string  `json:"description"`
	Date        *string `json:"date,omitempty"`
}

// Deposit godoc
// @Summary Deposit into the savings pot
// @Description Append a ledger entry and move the pot total
// @Tags pot
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DepositRequest true "Deposit request"
// @Success 201 {object} PotEntryResponse
// @Failure 400 {object} ProblemDetails
// @Router /pot/deposits [post]
func (h *PotHandler) Deposit(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req DepositRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Amount must be a valid decimal number"},
		})
	}

	var date *time.Time
	if req.Date != nil {
		parsed, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Date must be in YYYY-MM-DD format"},
			})
		}
		date = &parsed
	}

	entry, err := h.potService.Deposit(ownerID, service.DepositInput{
		Amount:      amount,
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Deposit must be positive", []ValidationError{
				{Field: "amount", Message: "Deposit amount must be positive"},
			})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "Invalid deposit", nil)
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to deposit")
		return NewInternalError(c, "Failed to deposit")
	}

	return c.JSON(http.StatusCreated, toPotEntryResponse(entry))
}

// GetDeposits godoc
// @Summary List pot deposits
// @Description Return the deposit ledger, newest first
// @Tags pot
// @Produce json
// @Security BearerAuth
// @Success 200 {array} PotEntryResponse
// @Failure 401 {object} ProblemDetails
// @Router /pot/deposits [get]
func (h *PotHandler) GetDeposits(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	entries, err := h.potService.ListDeposits(ownerID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to list deposits")
		return NewInternalError(c, "Failed to list deposits")
	}

	response := make([]PotEntryResponse, len(entries))
	for i, e := range entries {
		response[i] = toPotEntryResponse(e)
	}

	return c.JSON(http.StatusOK, response)
}
