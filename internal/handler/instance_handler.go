package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/moncash/moncash-backend/internal/domain"
	"github.com/moncash/moncash-backend/internal/middleware"
	"github.com/moncash/moncash-backend/internal/service"
	"github.com/moncash/moncash-backend/internal/util"
)

// InstanceHandler handles obligation instance HTTP requests
type InstanceHandler struct {
	templateService *service.TemplateService
	paymentService  *service.PaymentService
	settingsService *service.SettingsService
}

// NewInstanceHandler creates a new InstanceHandler
func NewInstanceHandler(templateService *service.TemplateService, paymentService *service.PaymentService, settingsService *service.SettingsService) *InstanceHandler {
	return &InstanceHandler{
		templateService: templateService,
		paymentService:  paymentService,
		settingsService: settingsService,
	}
}

// InstanceResponse represents an obligation instance in API responses
type InstanceResponse struct {
	ID               int32   `json:"id"`
	Year             int     `json:"year"`
	Month            int     `json:"month"`
	Name             string  `json:"name"`
	Amount           *string `json:"amount,omitempty"`
	DueDay           int32   `json:"dueDay"`
	Kind             string  `json:"kind"`
	SourceTemplateID *int32  `json:"sourceTemplateId,omitempty"`
	Paid             bool    `json:"paid"`
	Position         int32   `json:"position"`
	Notes            string  `json:"notes"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

func toInstanceResponse(i *domain.ObligationInstance) InstanceResponse {
	var amount *string
	if i.Amount != nil {
		s := i.Amount.StringFixed(2)
		amount = &s
	}
	return InstanceResponse{
		ID:               i.ID,
		Year:             i.Year,
		Month:            i.Month,
		Name:             i.Name,
		Amount:           amount,
		DueDay:           i.DueDay,
		Kind:             string(i.Kind),
		SourceTemplateID: i.SourceTemplateID,
		Paid:             i.Paid,
		Position:         i.Position,
		Notes:            i.Notes,
		CreatedAt:        i.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        i.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateInstanceRequest represents the create ad hoc instance request body
type CreateInstanceRequest struct {
	Name   string  `json:"name"`
	Amount *string `json:"amount,omitempty"`
	DueDay int32   `json:"dueDay"`
	Notes  string  `json:"notes"`
	Year   *int    `json:"year,omitempty"`
	Month  *int    `json:"month,omitempty"`
}

// activePeriod resolves the period a mutation targets: the explicit one when
// the request names it, otherwise the owner's current period
func (h *InstanceHandler) activePeriod(ctx domain.PeriodContext, year, month *int) domain.PeriodContext {
	if year != nil && month != nil {
		ctx.Period = domain.Period{Year: *year, Month: *month}
	}
	return ctx
}

// CreateInstance godoc
// @Summary Create an ad hoc obligation
// @Description Add a one-off obligation directly to a period, without a backing template
// @Tags instances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateInstanceRequest true "Ad hoc obligation request"
// @Success 201 {object} InstanceResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /instances [post]
func (h *InstanceHandler) CreateInstance(c echo.Context) error {
	ctx, err := ownerPeriodContext(c, h.settingsService)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return NewUnauthorizedError(c, "Authentication required")
		}
		log.Error().Err(err).Msg("Failed to resolve active period")
		return NewInternalError(c, "Failed to resolve active period")
	}

	var req CreateInstanceRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var amount *decimal.Decimal
	if req.Amount != nil {
		parsed, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			return NewValidationError(c, "Invalid amount", []ValidationError{
				{Field: "amount", Message: "Amount must be a valid decimal number"},
			})
		}
		amount = &parsed
	}

	ctx = h.activePeriod(ctx, req.Year, req.Month)
	if err := ctx.Period.Validate(); err != nil {
		return NewValidationError(c, "Invalid period", nil)
	}

	instance, err := h.templateService.CreateAdhocInstance(ctx, service.CreateAdhocInstanceInput{
		Name:   req.Name,
		Amount: amount,
		DueDay: req.DueDay,
		Notes:  req.Notes,
	})
	if err != nil {
		if validationErr := mapValidationError(c, err); validationErr != nil {
			return validationErr
		}
		log.Error().Err(err).Str("owner_id", ctx.OwnerID.String()).Msg("Failed to create ad hoc instance")
		return NewInternalError(c, "Failed to create instance")
	}

	return c.JSON(http.StatusCreated, toInstanceResponse(instance))
}

// SetPaidRequest represents the paid toggle request body
type SetPaidRequest struct {
	Paid bool `json:"paid"`
}

// SetPaid godoc
// @Summary Set the paid flag of an instance
// @Description Toggle an obligation instance between paid and unpaid
// @Tags instances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Instance ID"
// @Param request body SetPaidRequest true "Paid flag"
// @Success 200 {object} InstanceResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /instances/{id}/paid [patch]
func (h *InstanceHandler) SetPaid(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid instance ID", nil)
	}

	var req SetPaidRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	instance, err := h.paymentService.SetPaid(ownerID, id, req.Paid)
	if err != nil {
		if errors.Is(err, domain.ErrInstanceNotFound) {
			return NewNotFoundError(c, "Instance not found")
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Int32("instance_id", id).Msg("Failed to set paid flag")
		return NewInternalError(c, "Failed to update instance")
	}

	return c.JSON(http.StatusOK, toInstanceResponse(instance))
}

// SetAmountRequest represents the amount update request body
type SetAmountRequest struct {
	Amount string `json:"amount"`
}

// SetAmount godoc
// @Summary Set the amount of an instance
// @Description Enter the amount of a card invoice or variable bill
// @Tags instances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Instance ID"
// @Param request body SetAmountRequest true "Amount"
// @Success 200 {object} InstanceResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /instances/{id}/amount [patch]
func (h *InstanceHandler) SetAmount(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid instance ID", nil)
	}

	var req SetAmountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Amount must be a valid decimal number"},
		})
	}

	instance, err := h.paymentService.SetAmount(ownerID, id, amount)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Amount must not be negative", []ValidationError{
				{Field: "amount", Message: "Amount must not be negative"},
			})
		}
		if errors.Is(err, domain.ErrInstanceNotFound) {
			return NewNotFoundError(c, "Instance not found")
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Int32("instance_id", id).Msg("Failed to set amount")
		return NewInternalError(c, "Failed to update instance")
	}

	return c.JSON(http.StatusOK, toInstanceResponse(instance))
}

// SetNotesRequest represents the notes update request body
type SetNotesRequest struct {
	Notes string `json:"notes"`
}

// SetNotes godoc
// @Summary Set the notes of an instance
// @Description Update instance notes; notes on fixed bills propagate to the template
// @Tags instances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Instance ID"
// @Param request body SetNotesRequest true "Notes"
// @Success 200 {object} InstanceResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /instances/{id}/notes [patch]
func (h *InstanceHandler) SetNotes(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid instance ID", nil)
	}

	var req SetNotesRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	instance, err := h.paymentService.SetNotes(ownerID, id, req.Notes)
	if err != nil {
		if errors.Is(err, domain.ErrInstanceNotFound) {
			return NewNotFoundError(c, "Instance not found")
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Int32("instance_id", id).Msg("Failed to set notes")
		return NewInternalError(c, "Failed to update instance")
	}

	return c.JSON(http.StatusOK, toInstanceResponse(instance))
}

// ReorderRequest represents the reorder request body
type ReorderRequest struct {
	OrderedIDs []int32 `json:"orderedIds"`
}

// Reorder godoc
// @Summary Reorder the instances of a period
// @Description Persist a new display order for the given instances
// @Tags instances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ReorderRequest true "Ordered instance IDs"
// @Success 204 "No Content"
// @Failure 400 {object} ProblemDetails
// @Router /instances/order [put]
func (h *InstanceHandler) Reorder(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req ReorderRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if len(req.OrderedIDs) == 0 {
		return NewValidationError(c, "Ordered IDs are required", []ValidationError{
			{Field: "orderedIds", Message: "At least one instance ID is required"},
		})
	}

	if err := h.paymentService.Reorder(ownerID, req.OrderedIDs); err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Reorder partially failed")
		return NewInternalError(c, "Failed to persist the full order")
	}

	return c.NoContent(http.StatusNoContent)
}

// ownerPeriodContext builds the caller's active period context from their
// settings. Used by every create that materializes into the active period.
func ownerPeriodContext(c echo.Context, settingsService *service.SettingsService) (domain.PeriodContext, error) {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return domain.PeriodContext{}, domain.ErrUnauthorized
	}
	settings, err := settingsService.GetSettings(ownerID)
	if err != nil {
		return domain.PeriodContext{}, err
	}
	return domain.PeriodContext{
		OwnerID: ownerID,
		Period:  util.CurrentPeriod(settings.ReferenceDay),
	}, nil
}

// parseIDParam parses the :id path parameter
func parseIDParam(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidInput
	}
	return int32(id), nil
}

// mapValidationError converts domain validation sentinels into 400 responses.
// Returns nil when err is not a validation error.
func mapValidationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Name is required", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Name is too long", []ValidationError{
			{Field: "name", Message: "Name exceeds the maximum length"},
		})
	case errors.Is(err, domain.ErrInvalidDueDay):
		return NewValidationError(c, "Invalid due day", []ValidationError{
			{Field: "dueDay", Message: "Due day must be between 1 and 31"},
		})
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Amount must be positive"},
		})
	case errors.Is(err, domain.ErrInvalidInstallments):
		return NewValidationError(c, "Invalid installments", []ValidationError{
			{Field: "totalInstallments", Message: "Installment counts are out of range"},
		})
	case errors.Is(err, domain.ErrInvalidPeriod):
		return NewValidationError(c, "Invalid period", nil)
	case errors.Is(err, domain.ErrInvalidCategory):
		return NewValidationError(c, "Invalid category", []ValidationError{
			{Field: "category", Message: "Category is not one of the known values"},
		})
	}
	return nil
}
