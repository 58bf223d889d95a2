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

// CardHandler handles credit card HTTP requests
type CardHandler struct {
	templateService *service.TemplateService
	settingsService *service.SettingsService
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(templateService *service.TemplateService, settingsService *service.SettingsService) *CardHandler {
	return &CardHandler{
		templateService: templateService,
		settingsService: settingsService,
	}
}

// CardRequest represents the create/update card request body
type CardRequest struct {
	Name        string `json:"name"`
	DueDay      int32  `json:"dueDay"`
	CreditLimit string `json:"creditLimit"`
}

// CardResponse represents a card in API responses
type CardResponse struct {
	ID          int32  `json:"id"`
	Name        string `json:"name"`
	DueDay      int32  `json:"dueDay"`
	CreditLimit string `json:"creditLimit"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toCardResponse(card *domain.Card) CardResponse {
	return CardResponse{
		ID:          card.ID,
		Name:        card.Name,
		DueDay:      card.DueDay,
		CreditLimit: card.CreditLimit.StringFixed(2),
		Status:      string(card.Status),
		CreatedAt:   card.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   card.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateCard godoc
// @Summary Create a card
// @Description Register a credit card and materialize its invoice slot into the active period
// @Tags cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CardRequest true "Card creation request"
// @Success 201 {object} CardResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /cards [post]
func (h *CardHandler) CreateCard(c echo.Context) error {
	ctx, err := ownerPeriodContext(c, h.settingsService)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return NewUnauthorizedError(c, "Authentication required")
		}
		log.Error().Err(err).Msg("Failed to resolve active period")
		return NewInternalError(c, "Failed to resolve active period")
	}

	var req CardRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	limit, err := decimal.NewFromString(req.CreditLimit)
	if err != nil {
		return NewValidationError(c, "Invalid credit limit", []ValidationError{
			{Field: "creditLimit", Message: "Credit limit must be a valid decimal number"},
		})
	}

	card, err := h.templateService.CreateCard(ctx, service.CreateCardInput{
		Name:        req.Name,
		DueDay:      req.DueDay,
		CreditLimit: limit,
	})
	if err != nil {
		if validationErr := mapValidationError(c, err); validationErr != nil {
			return validationErr
		}
		log.Error().Err(err).Str("owner_id", ctx.OwnerID.String()).Msg("Failed to create card")
		return NewInternalError(c, "Failed to create card")
	}

	return c.JSON(http.StatusCreated, toCardResponse(card))
}

// GetCards godoc
// @Summary List cards
// @Description List the caller's cards including deactivated ones
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Success 200 {array} CardResponse
// @Failure 401 {object} ProblemDetails
// @Router /cards [get]
func (h *CardHandler) GetCards(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	cards, err := h.templateService.ListCards(ownerID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to list cards")
		return NewInternalError(c, "Failed to list cards")
	}

	response := make([]CardResponse, len(cards))
	for i, card := range cards {
		response[i] = toCardResponse(card)
	}

	return c.JSON(http.StatusOK, response)
}

// UpdateCard godoc
// @Summary Update a card
// @Description Update card name, due day or credit limit
// @Tags cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Card ID"
// @Param request body CardRequest true "Card update request"
// @Success 200 {object} CardResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /cards/{id} [put]
func (h *CardHandler) UpdateCard(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid card ID", nil)
	}

	var req CardRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	limit, err := decimal.NewFromString(req.CreditLimit)
	if err != nil {
		return NewValidationError(c, "Invalid credit limit", []ValidationError{
			{Field: "creditLimit", Message: "Credit limit must be a valid decimal number"},
		})
	}

	card, err := h.templateService.UpdateCard(ownerID, id, service.UpdateCardInput{
		Name:        req.Name,
		DueDay:      req.DueDay,
		CreditLimit: limit,
	})
	if err != nil {
		if validationErr := mapValidationError(c, err); validationErr != nil {
			return validationErr
		}
		if errors.Is(err, domain.ErrCardNotFound) {
			return NewNotFoundError(c, "Card not found")
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Int32("card_id", id).Msg("Failed to update card")
		return NewInternalError(c, "Failed to update card")
	}

	return c.JSON(http.StatusOK, toCardResponse(card))
}

// DeleteCard godoc
// @Summary Deactivate a card
// @Description Deactivate a card; existing invoice instances stay untouched
// @Tags cards
// @Security BearerAuth
// @Param id path int true "Card ID"
// @Success 204 "No Content"
// @Failure 404 {object} ProblemDetails
// @Router /cards/{id} [delete]
func (h *CardHandler) DeleteCard(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid card ID", nil)
	}

	if err := h.templateService.DeactivateCard(ownerID, id); err != nil {
		if errors.Is(err, domain.ErrCardNotFound) {
			return NewNotFoundError(c, "Card not found")
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Int32("card_id", id).Msg("Failed to deactivate card")
		return NewInternalError(c, "Failed to deactivate card")
	}

	return c.NoContent(http.StatusNoContent)
}
