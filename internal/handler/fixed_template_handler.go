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

// FixedTemplateHandler handles fixed template HTTP requests
type FixedTemplateHandler struct {
	templateService *service.TemplateService
	settingsService *service.SettingsService
}

// NewFixedTemplateHandler creates a new FixedTemplateHandler
func NewFixedTemplateHandler(templateService *service.TemplateService, settingsService *service.SettingsService) *FixedTemplateHandler {
	return &FixedTemplateHandler{
		templateService: templateService,
		settingsService: settingsService,
	}
}

// FixedTemplateRequest represents the create/update fixed template request body
type FixedTemplateRequest struct {
	Name        string  `json:"name"`
	DueDay      int32   `json:"dueDay"`
	FixedAmount bool    `json:"fixedAmount"`
	Amount      *string `json:"amount,omitempty"`
	Notes       string  `json:"notes"`
}

// FixedTemplateResponse represents a fixed template in API responses
type FixedTemplateResponse struct {
	ID          int32   `json:"id"`
	Name        string  `json:"name"`
	DueDay      int32   `json:"dueDay"`
	FixedAmount bool    `json:"fixedAmount"`
	Amount      *string `json:"amount,omitempty"`
	Notes       string  `json:"notes"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toFixedTemplateResponse(t *domain.FixedTemplate) FixedTemplateResponse {
	var amount *string
	if t.Amount != nil {
		s := t.Amount.StringFixed(2)
		amount = &s
	}
	return FixedTemplateResponse{
		ID:          t.ID,
		Name:        t.Name,
		DueDay:      t.DueDay,
		FixedAmount: t.FixedAmount,
		Amount:      amount,
		Notes:       t.Notes,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
}

func (r FixedTemplateRequest) parseAmount() (*decimal.Decimal, error) {
	if r.Amount == nil {
		return nil, nil
	}
	parsed, err := decimal.NewFromString(*r.Amount)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// CreateTemplate godoc
// @Summary Create a fixed template
// @Description Create a recurring bill definition and materialize its instance into the active period
// @Tags fixed-templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body FixedTemplateRequest true "Template creation request"
// @Success 201 {object} FixedTemplateResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /fixed-templates [post]
func (h *FixedTemplateHandler) CreateTemplate(c echo.Context) error {
	ctx, err := ownerPeriodContext(c, h.settingsService)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return NewUnauthorizedError(c, "Authentication required")
		}
		log.Error().Err(err).Msg("Failed to resolve active period")
		return NewInternalError(c, "Failed to resolve active period")
	}

	var req FixedTemplateRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := req.parseAmount()
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Amount must be a valid decimal number"},
		})
	}

	template, err := h.templateService.CreateFixedTemplate(ctx, service.CreateFixedTemplateInput{
		Name:        req.Name,
		DueDay:      req.DueDay,
		FixedAmount: req.FixedAmount,
		Amount:      amount,
		Notes:       req.Notes,
	})
	if err != nil {
		if validationErr := mapValidationError(c, err); validationErr != nil {
			return validationErr
		}
		log.Error().Err(err).Str("owner_id", ctx.OwnerID.String()).Msg("Failed to create fixed template")
		return NewInternalError(c, "Failed to create template")
	}

	return c.JSON(http.StatusCreated, toFixedTemplateResponse(template))
}

// GetTemplates godoc
// @Summary List fixed templates
// @Description List the caller's fixed templates including deactivated ones
// @Tags fixed-templates
// @Produce json
// @Security BearerAuth
// @Success 200 {array} FixedTemplateResponse
// @Failure 401 {object} ProblemDetails
// @Router /fixed-templates [get]
func (h *FixedTemplateHandler) GetTemplates(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	templates, err := h.templateService.ListFixedTemplates(ownerID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to list fixed templates")
		return NewInternalError(c, "Failed to list templates")
	}

	response := make([]FixedTemplateResponse, len(templates))
	for i, t := range templates {
		response[i] = toFixedTemplateResponse(t)
	}

	return c.JSON(http.StatusOK, response)
}

// UpdateTemplate godoc
// @Summary Update a fixed template
// @Description Update a template; existing instances keep their materialized values
// @Tags fixed-templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Param request body FixedTemplateRequest true "Template update request"
// @Success 200 {object} FixedTemplateResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /fixed-templates/{id} [put]
func (h *FixedTemplateHandler) UpdateTemplate(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid template ID", nil)
	}

	var req FixedTemplateRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := req.parseAmount()
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Amount must be a valid decimal number"},
		})
	}

	template, err := h.templateService.UpdateFixedTemplate(ownerID, id, service.UpdateFixedTemplateInput{
		Name:        req.Name,
		DueDay:      req.DueDay,
		FixedAmount: req.FixedAmount,
		Amount:      amount,
		Notes:       req.Notes,
	})
	if err != nil {
		if validationErr := mapValidationError(c, err); validationErr != nil {
			return validationErr
		}
		if errors.Is(err, domain.ErrTemplateNotFound) {
			return NewNotFoundError(c, "Template not found")
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Int32("template_id", id).Msg("Failed to update fixed template")
		return NewInternalError(c, "Failed to update template")
	}

	return c.JSON(http.StatusOK, toFixedTemplateResponse(template))
}

// DeleteTemplate godoc
// @Summary Deactivate a fixed template
// @Description Deactivate a template; its existing instances stay untouched
// @Tags fixed-templates
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 204 "No Content"
// @Failure 404 {object} ProblemDetails
// @Router /fixed-templates/{id} [delete]
func (h *FixedTemplateHandler) DeleteTemplate(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid template ID", nil)
	}

	if err := h.templateService.DeactivateFixedTemplate(ownerID, id); err != nil {
		if errors.Is(err, domain.ErrTemplateNotFound) {
			return NewNotFoundError(c, "Template not found")
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Int32("template_id", id).Msg("Failed to deactivate fixed template")
		return NewInternalError(c, "Failed to deactivate template")
	}

	return c.NoContent(http.StatusNoContent)
}
