package handler

import (
	"errors"
	"io"
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

// ExpenseHandler handles expense HTTP requests
type ExpenseHandler struct {
	expenseService *service.ExpenseService
	receiptService *service.ReceiptService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *service.ExpenseService, receiptService *service.ReceiptService) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		receiptService: receiptService,
	}
}

// CreateExpenseRequest represents the create expense request body
type CreateExpenseRequest struct {
	Amount      string  `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Date        *string `json:"date,omitempty"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID          int32  `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	HasReceipt  bool   `json:"hasReceipt"`
	CreatedAt   string `json:"createdAt"`
}

func toExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Amount:      e.Amount.StringFixed(2),
		Description: e.Description,
		Category:    string(e.Category),
		Date:        e.Date.Format("2006-01-02"),
		HasReceipt:  e.ReceiptPath != nil,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

// CreateExpense godoc
// @Summary Create an expense
// @Description Record an ad hoc expense
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateExpenseRequest true "Expense creation request"
// @Success 201 {object} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /expenses [post]
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateExpenseRequest
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

	expense, err := h.expenseService.CreateExpense(ownerID, service.CreateExpenseInput{
		Amount:      amount,
		Description: req.Description,
		Category:    domain.ExpenseCategory(req.Category),
		Date:        date,
	})
	if err != nil {
		if validationErr := mapValidationError(c, err); validationErr != nil {
			return validationErr
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "Invalid expense", nil)
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to create expense")
		return NewInternalError(c, "Failed to create expense")
	}

	return c.JSON(http.StatusCreated, toExpenseResponse(expense))
}

// GetExpenses godoc
// @Summary List expenses
// @Description List the caller's expenses, newest first
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ExpenseResponse
// @Failure 401 {object} ProblemDetails
// @Router /expenses [get]
func (h *ExpenseHandler) GetExpenses(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	expenses, err := h.expenseService.ListExpenses(ownerID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to list expenses")
		return NewInternalError(c, "Failed to list expenses")
	}

	response := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		response[i] = toExpenseResponse(e)
	}

	return c.JSON(http.StatusOK, response)
}

// DeleteExpense godoc
// @Summary Delete an expense
// @Description Remove an expense and its receipt
// @Tags expenses
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Success 204 "No Content"
// @Failure 404 {object} ProblemDetails
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	// Detach a receipt first so the stored variants don't leak
	if h.receiptService.IsEnabled() {
		if err := h.receiptService.DetachReceipt(c.Request().Context(), ownerID, id); err != nil &&
			!errors.Is(err, service.ErrNoReceipt) && !errors.Is(err, domain.ErrExpenseNotFound) {
			log.Warn().Err(err).Str("owner_id", ownerID.String()).Int32("expense_id", id).Msg("Failed to detach receipt before delete")
		}
	}

	if err := h.expenseService.DeleteExpense(ownerID, id); err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return NewNotFoundError(c, "Expense not found")
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Int32("expense_id", id).Msg("Failed to delete expense")
		return NewInternalError(c, "Failed to delete expense")
	}

	return c.NoContent(http.StatusNoContent)
}

// AttachReceipt godoc
// @Summary Attach a receipt to an expense
// @Description Upload a receipt image; replaces any previous receipt
// @Tags expenses
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Param file formData file true "Receipt image"
// @Success 200 {object} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /expenses/{id}/receipt [post]
func (h *ExpenseHandler) AttachReceipt(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt uploads are disabled (storage not configured)")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	expense, err := h.receiptService.AttachReceipt(c.Request().Context(), ownerID, id, data, file.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReceiptTooLarge):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "File too large. Maximum size is 5MB"},
			})
		case errors.Is(err, service.ErrInvalidReceiptFormat):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid format. Supported: JPEG, PNG, WebP"},
			})
		case errors.Is(err, service.ErrReceiptTooSmall):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Image too small. Minimum 50x50 pixels"},
			})
		case errors.Is(err, service.ErrInvalidReceiptData):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid image data"},
			})
		case errors.Is(err, domain.ErrExpenseNotFound):
			return NewNotFoundError(c, "Expense not found")
		default:
			log.Error().Err(err).Str("owner_id", ownerID.String()).Int32("expense_id", id).Msg("Failed to attach receipt")
			return NewInternalError(c, "Failed to attach receipt")
		}
	}

	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// DetachReceipt godoc
// @Summary Detach the receipt of an expense
// @Description Remove the stored receipt variants
// @Tags expenses
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Success 204 "No Content"
// @Failure 404 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /expenses/{id}/receipt [delete]
func (h *ExpenseHandler) DetachReceipt(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt storage not configured")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	if err := h.receiptService.DetachReceipt(c.Request().Context(), ownerID, id); err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return NewNotFoundError(c, "Expense not found")
		}
		if errors.Is(err, service.ErrNoReceipt) {
			return NewNotFoundError(c, "Expense has no receipt")
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Int32("expense_id", id).Msg("Failed to detach receipt")
		return NewInternalError(c, "Failed to detach receipt")
	}

	return c.NoContent(http.StatusNoContent)
}

// GetReceiptURLs godoc
// @Summary Get presigned receipt URLs
// @Description Return short-lived URLs for the receipt variants
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Success 200 {object} service.ReceiptURLs
// @Failure 404 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /expenses/{id}/receipt [get]
func (h *ExpenseHandler) GetReceiptURLs(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt storage not configured")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	urls, err := h.receiptService.ReceiptURLs(c.Request().Context(), ownerID, id)
	if err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return NewNotFoundError(c, "Expense not found")
		}
		if errors.Is(err, service.ErrNoReceipt) {
			return NewNotFoundError(c, "Expense has no receipt")
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Int32("expense_id", id).Msg("Failed to presign receipt URLs")
		return NewInternalError(c, "Failed to generate receipt URLs")
	}

	return c.JSON(http.StatusOK, urls)
}
