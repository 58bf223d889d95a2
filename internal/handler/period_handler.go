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

// PeriodHandler handles period navigation HTTP requests
type PeriodHandler struct {
	materializationService *service.MaterializationService
	expenseService         *service.ExpenseService
	settingsService        *service.SettingsService
}

// NewPeriodHandler creates a new PeriodHandler
func NewPeriodHandler(materializationService *service.MaterializationService, expenseService *service.ExpenseService, settingsService *service.SettingsService) *PeriodHandler {
	return &PeriodHandler{
		materializationService: materializationService,
		expenseService:         expenseService,
		settingsService:        settingsService,
	}
}

// TotalsResponse represents period totals in API responses
type TotalsResponse struct {
	TotalPaid       string `json:"totalPaid"`
	TotalPending    string `json:"totalPending"`
	TotalExpenses   string `json:"totalExpenses"`
	CurrentBalance  string `json:"currentBalance"`
	Overdue         string `json:"overdue"`
	ProgressPercent int    `json:"progressPercent"`
	AllPaid         bool   `json:"allPaid"`
}

// PeriodResponse represents a period with its instances and totals
type PeriodResponse struct {
	Year      int                `json:"year"`
	Month     int                `json:"month"`
	Instances []InstanceResponse `json:"instances"`
	Expenses  []ExpenseResponse  `json:"expenses"`
	Totals    TotalsResponse     `json:"totals"`
	Warnings  []string           `json:"warnings,omitempty"`
}

func toTotalsResponse(t service.Totals, overdue decimal.Decimal) TotalsResponse {
	return TotalsResponse{
		TotalPaid:       t.TotalPaid.StringFixed(2),
		TotalPending:    t.TotalPending.StringFixed(2),
		TotalExpenses:   t.TotalExpenses.StringFixed(2),
		CurrentBalance:  t.CurrentBalance.StringFixed(2),
		Overdue:         overdue.StringFixed(2),
		ProgressPercent: t.ProgressPercent,
		AllPaid:         t.AllPaid,
	}
}

// GetCurrent godoc
// @Summary Get the current period
// @Description Return the caller's active period with its instances and totals, materializing it on first visit
// @Tags periods
// @Produce json
// @Security BearerAuth
// @Success 200 {object} PeriodResponse
// @Failure 401 {object} ProblemDetails
// @Router /periods/current [get]
func (h *PeriodHandler) GetCurrent(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	settings, err := h.settingsService.GetSettings(ownerID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to load settings")
		return NewInternalError(c, "Failed to load settings")
	}

	period := util.CurrentPeriod(settings.ReferenceDay)
	return h.renderPeriod(c, domain.PeriodContext{OwnerID: ownerID, Period: period}, settings)
}

// GetByYearMonth godoc
// @Summary Get a specific period
// @Description Return the given period with its instances and totals, materializing it on first visit
// @Tags periods
// @Produce json
// @Security BearerAuth
// @Param year path int true "Year"
// @Param month path int true "Month"
// @Success 200 {object} PeriodResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /periods/{year}/{month} [get]
func (h *PeriodHandler) GetByYearMonth(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 2000 || year > 2100 {
		return NewValidationError(c, "Invalid year", []ValidationError{
			{Field: "year", Message: "Year must be between 2000 and 2100"},
		})
	}

	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		return NewValidationError(c, "Invalid month", []ValidationError{
			{Field: "month", Message: "Month must be between 1 and 12"},
		})
	}

	settings, err := h.settingsService.GetSettings(ownerID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to load settings")
		return NewInternalError(c, "Failed to load settings")
	}

	ctx := domain.PeriodContext{OwnerID: ownerID, Period: domain.Period{Year: year, Month: month}}
	return h.renderPeriod(c, ctx, settings)
}

// renderPeriod materializes the period when needed and assembles the full
// response. A partial materialization still returns the surviving instances,
// with a warning line per failed template.
func (h *PeriodHandler) renderPeriod(c echo.Context, ctx domain.PeriodContext, settings *domain.Settings) error {
	var warnings []string

	instances, err := h.materializationService.SwitchPeriod(ctx)
	if err != nil {
		var matErr *domain.MaterializationError
		if errors.As(err, &matErr) {
			for _, f := range matErr.Failures {
				warnings = append(warnings, "could not materialize "+f.Name)
			}
		} else {
			if errors.Is(err, domain.ErrInvalidPeriod) {
				return NewValidationError(c, "Invalid period", nil)
			}
			log.Error().Err(err).Str("owner_id", ctx.OwnerID.String()).Str("period", ctx.Period.String()).Msg("Failed to switch period")
			return NewInternalError(c, "Failed to load period")
		}
	}

	expenses, err := h.expenseService.ListExpensesInPeriod(ctx.OwnerID, ctx.Period, settings.ReferenceDay)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ctx.OwnerID.String()).Msg("Failed to load expenses")
		return NewInternalError(c, "Failed to load expenses")
	}

	totals := service.ComputeTotals(instances, expenses, settings.InitialMonthlyBalance)
	overdue := service.OverdueAmount(instances, ctx.Period, time.Now().UTC())

	instanceResponses := make([]InstanceResponse, len(instances))
	for i, inst := range instances {
		instanceResponses[i] = toInstanceResponse(inst)
	}
	expenseResponses := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		expenseResponses[i] = toExpenseResponse(e)
	}

	return c.JSON(http.StatusOK, PeriodResponse{
		Year:      ctx.Period.Year,
		Month:     ctx.Period.Month,
		Instances: instanceResponses,
		Expenses:  expenseResponses,
		Totals:    toTotalsResponse(totals, overdue),
		Warnings:  warnings,
	})
}
