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

// SettingsHandler handles settings HTTP requests
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// SettingsResponse represents settings in API responses
type SettingsResponse struct {
	InitialMonthlyBalance string `json:"initialMonthlyBalance"`
	ReferenceDay          int32  `json:"referenceDay"`
	UpdatedAt             string `json:"updatedAt"`
}

func toSettingsResponse(s *domain.Settings) SettingsResponse {
	return SettingsResponse{
		InitialMonthlyBalance: s.InitialMonthlyBalance.StringFixed(2),
		ReferenceDay:          s.ReferenceDay,
		UpdatedAt:             s.UpdatedAt.Format(time.RFC3339),
	}
}

// GetSettings godoc
// @Summary Get settings
// @Description Return the caller's settings, falling back to defaults
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SettingsResponse
// @Failure 401 {object} ProblemDetails
// @Router /settings [get]
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	settings, err := h.settingsService.GetSettings(ownerID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to get settings")
		return NewInternalError(c, "Failed to get settings")
	}

	return c.JSON(http.StatusOK, toSettingsResponse(settings))
}

// UpdateSettingsRequest represents the settings update request body
type UpdateSettingsRequest struct {
	InitialMonthlyBalance string `json:"initialMonthlyBalance"`
	ReferenceDay          int32  `json:"referenceDay"`
}

// UpdateSettings godoc
// @Summary Update settings
// @Description Store the initial monthly balance and the period reference day
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateSettingsRequest true "Settings update request"
// @Success 200 {object} SettingsResponse
// @Failure 400 {object} ProblemDetails
// @Router /settings [put]
func (h *SettingsHandler) UpdateSettings(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	balance, err := decimal.NewFromString(req.InitialMonthlyBalance)
	if err != nil {
		return NewValidationError(c, "Invalid balance", []ValidationError{
			{Field: "initialMonthlyBalance", Message: "Balance must be a valid decimal number"},
		})
	}

	settings, err := h.settingsService.UpdateSettings(ownerID, service.UpdateSettingsInput{
		InitialMonthlyBalance: balance,
		ReferenceDay:          req.ReferenceDay,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Balance must not be negative", []ValidationError{
				{Field: "initialMonthlyBalance", Message: "Balance must not be negative"},
			})
		}
		if errors.Is(err, domain.ErrInvalidReferenceDay) {
			return NewValidationError(c, "Invalid reference day", []ValidationError{
				{Field: "referenceDay", Message: "Reference day must be between 1 and 31"},
			})
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to update settings")
		return NewInternalError(c, "Failed to update settings")
	}

	return c.JSON(http.StatusOK, toSettingsResponse(settings))
}
