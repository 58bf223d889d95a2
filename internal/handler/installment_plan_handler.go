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

// InstallmentPlanHandler handles installment plan HTTP requests
type InstallmentPlanHandler struct {
	templateService *service.TemplateService
	settingsService *service.SettingsService
}

// NewInstallmentPlanHandler creates a new InstallmentPlanHandler
func NewInstallmentPlanHandler(templateService *service.TemplateService, settingsService *service.SettingsService) *InstallmentPlanHandler {
	return &InstallmentPlanHandler{
		templateService: templateService,
		settingsService: settingsService,
	}
}

// CreateInstallmentPlanRequest represents the create plan request body
type CreateInstallmentPlanRequest struct {
	Name              string `json:"name"`
	InstallmentAmount string `json:"installmentAmount"`
	TotalInstallments int32  `json:"totalInstallments"`
	DueDay            int32  `json:"dueDay"`
	Notes             string `json:"notes"`
}

// UpdateInstallmentPlanRequest represents the update plan request body
type UpdateInstallmentPlanRequest struct {
	Name                  string `json:"name"`
	InstallmentAmount     string `json:"installmentAmount"`
	TotalInstallments     int32  `json:"totalInstallments"`
	RemainingInstallments int32  `json:"remainingInstallments"`
	DueDay                int32  `json:"dueDay"`
	Notes                 string `json:"notes"`
}

// InstallmentPlanResponse represents an installment plan in API responses
type InstallmentPlanResponse struct {
	ID                    int32  `json:"id"`
	Name                  string `json:"name"`
	InstallmentAmount     string `json:"installmentAmount"`
	TotalInstallments     int32  `json:"totalInstallments"`
	RemainingInstallments int32  `json:"remainingInstallments"`
	CurrentInstallment    int32  `json:"currentInstallment"`
	DueDay                int32  `json:"dueDay"`
	Notes                 string `json:"notes"`
	Status                string `json:"status"`
	CreatedAt             string `json:"createdAt"`
	UpdatedAt             string `json:"updatedAt"`
}

func toInstallmentPlanResponse(p *domain.InstallmentPlan) InstallmentPlanResponse {
	return InstallmentPlanResponse{
		ID:                    p.ID,
		Name:                  p.Name,
		InstallmentAmount:     p.InstallmentAmount.StringFixed(2),
		TotalInstallments:     p.TotalInstallments,
		RemainingInstallments: p.RemainingInstallments,
		CurrentInstallment:    p.CurrentInstallment(),
		DueDay:                p.DueDay,
		Notes:                 p.Notes,
		Status:                string(p.Status),
		CreatedAt:             p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:             p.UpdatedAt.Format(time.RFC3339),
	}
}

// CreatePlan godoc
// @Summary Create an installment plan
// @Description Create a finite recurring bill and materialize its first instance into the active period
// @Tags installment-plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateInstallmentPlanRequest true "Plan creation request"
// @Success 201 {object} InstallmentPlanResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /installment-plans [post]
func (h *InstallmentPlanHandler) CreatePlan(c echo.Context) error {
	ctx, err := ownerPeriodContext(c, h.settingsService)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return NewUnauthorizedError(c, "Authentication required")
		}
		log.Error().Err(err).Msg("Failed to resolve active period")
		return NewInternalError(c, "Failed to resolve active period")
	}

	var req CreateInstallmentPlanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.InstallmentAmount)
	if err != nil {
		return NewValidationError(c, "Invalid installment amount", []ValidationError{
			{Field: "installmentAmount", Message: "Amount must be a valid decimal number"},
		})
	}

	plan, err := h.templateService.CreateInstallmentPlan(ctx, service.CreateInstallmentPlanInput{
		Name:              req.Name,
		InstallmentAmount: amount,
		TotalInstallments: req.TotalInstallments,
		DueDay:            req.DueDay,
		Notes:             req.Notes,
	})
	if err != nil {
		if validationErr := mapValidationError(c, err); validationErr != nil {
			return validationErr
		}
		log.Error().Err(err).Str("owner_id", ctx.OwnerID.String()).Msg("Failed to create installment plan")
		return NewInternalError(c, "Failed to create plan")
	}

	return c.JSON(http.StatusCreated, toInstallmentPlanResponse(plan))
}

// GetPlans godoc
// @Summary List installment plans
// @Description List the caller's installment plans including archived ones
// @Tags installment-plans
// @Produce json
// @Security BearerAuth
// @Success 200 {array} InstallmentPlanResponse
// @Failure 401 {object} ProblemDetails
// @Router /installment-plans [get]
func (h *InstallmentPlanHandler) GetPlans(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	plans, err := h.templateService.ListInstallmentPlans(ownerID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to list installment plans")
		return NewInternalError(c, "Failed to list plans")
	}

	response := make([]InstallmentPlanResponse, len(plans))
	for i, p := range plans {
		response[i] = toInstallmentPlanResponse(p)
	}

	return c.JSON(http.StatusOK, response)
}

// UpdatePlan godoc
// @Summary Update an installment plan
// @Description Update plan fields; setting remaining to zero archives the plan
// @Tags installment-plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Plan ID"
// @Param request body UpdateInstallmentPlanRequest true "Plan update request"
// @Success 200 {object} InstallmentPlanResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /installment-plans/{id} [put]
func (h *InstallmentPlanHandler) UpdatePlan(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid plan ID", nil)
	}

	var req UpdateInstallmentPlanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.InstallmentAmount)
	if err != nil {
		return NewValidationError(c, "Invalid installment amount", []ValidationError{
			{Field: "installmentAmount", Message: "Amount must be a valid decimal number"},
		})
	}

	plan, err := h.templateService.UpdateInstallmentPlan(ownerID, id, service.UpdateInstallmentPlanInput{
		Name:                  req.Name,
		InstallmentAmount:     amount,
		TotalInstallments:     req.TotalInstallments,
		RemainingInstallments: req.RemainingInstallments,
		DueDay:                req.DueDay,
		Notes:                 req.Notes,
	})
	if err != nil {
		if validationErr := mapValidationError(c, err); validationErr != nil {
			return validationErr
		}
		if errors.Is(err, domain.ErrPlanNotFound) {
			return NewNotFoundError(c, "Plan not found")
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Int32("plan_id", id).Msg("Failed to update installment plan")
		return NewInternalError(c, "Failed to update plan")
	}

	return c.JSON(http.StatusOK, toInstallmentPlanResponse(plan))
}

// DeletePlan godoc
// @Summary Archive an installment plan
// @Description Archive a plan; remaining installments are preserved
// @Tags installment-plans
// @Security BearerAuth
// @Param id path int true "Plan ID"
// @Success 204 "No Content"
// @Failure 404 {object} ProblemDetails
// @Router /installment-plans/{id} [delete]
func (h *InstallmentPlanHandler) DeletePlan(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid plan ID", nil)
	}

	if err := h.templateService.ArchiveInstallmentPlan(ownerID, id); err != nil {
		if errors.Is(err, domain.ErrPlanNotFound) {
			return NewNotFoundError(c, "Plan not found")
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Int32("plan_id", id).Msg("Failed to archive installment plan")
		return NewInternalError(c, "Failed to archive plan")
	}

	return c.NoContent(http.StatusNoContent)
}
