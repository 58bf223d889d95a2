package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/moncash/moncash-backend/internal/domain"
	"github.com/moncash/moncash-backend/internal/service"
	"github.com/moncash/moncash-backend/internal/testutil"
	"github.com/moncash/moncash-backend/internal/util"
)

type periodTestEnv struct {
	handler      *PeriodHandler
	templateRepo *testutil.MockFixedTemplateRepository
	planRepo     *testutil.MockInstallmentPlanRepository
	cardRepo     *testutil.MockCardRepository
	instanceRepo *testutil.MockInstanceRepository
	expenseRepo  *testutil.MockExpenseRepository
	settingsRepo *testutil.MockSettingsRepository
	ownerID      uuid.UUID
}

func newPeriodTestEnv(t *testing.T, referenceDay int32, balance int64) *periodTestEnv {
	t.Helper()

	env := &periodTestEnv{
		templateRepo: testutil.NewMockFixedTemplateRepository(),
		planRepo:     testutil.NewMockInstallmentPlanRepository(),
		cardRepo:     testutil.NewMockCardRepository(),
		instanceRepo: testutil.NewMockInstanceRepository(),
		expenseRepo:  testutil.NewMockExpenseRepository(),
		settingsRepo: testutil.NewMockSettingsRepository(),
		ownerID:      uuid.New(),
	}

	markerRepo := testutil.NewMockPeriodMarkerRepository()
	materializationService := service.NewMaterializationService(
		env.templateRepo, env.planRepo, env.cardRepo, env.instanceRepo, markerRepo)
	expenseService := service.NewExpenseService(env.expenseRepo)
	settingsService := service.NewSettingsService(env.settingsRepo)

	if _, err := env.settingsRepo.Upsert(&domain.Settings{
		OwnerID:               env.ownerID,
		InitialMonthlyBalance: decimal.NewFromInt(balance),
		ReferenceDay:          referenceDay,
	}); err != nil {
		t.Fatalf("Failed to seed settings: %v", err)
	}

	env.handler = NewPeriodHandler(materializationService, expenseService, settingsService)
	return env
}

func (env *periodTestEnv) getByYearMonth(e *echo.Echo, year, month string) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/periods/"+year+"/"+month, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("year", "month")
	c.SetParamValues(year, month)
	setupAuthContextWithOwner(c, "auth0|period", "period@example.com", "", "", env.ownerID)
	return rec, env.handler.GetByYearMonth(c)
}

func TestGetCurrent_MaterializesFirstVisit(t *testing.T) {
	e := echo.New()
	env := newPeriodTestEnv(t, 1, 1000)

	amount := decimal.RequireFromString("150.00")
	env.templateRepo.AddTemplate(&domain.FixedTemplate{
		ID:          1,
		OwnerID:     env.ownerID,
		Name:        "Rent",
		DueDay:      5,
		FixedAmount: true,
		Amount:      &amount,
		Status:      domain.StatusActive,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/periods/current", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContextWithOwner(c, "auth0|period", "period@example.com", "", "", env.ownerID)

	err := env.handler.GetCurrent(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response PeriodResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	expected := util.CurrentPeriod(1)
	if response.Year != expected.Year || response.Month != expected.Month {
		t.Errorf("Expected period %d-%d, got %d-%d", expected.Year, expected.Month, response.Year, response.Month)
	}
	if len(response.Instances) != 1 {
		t.Fatalf("Expected 1 instance, got %d", len(response.Instances))
	}
	if response.Instances[0].Name != "Rent" {
		t.Errorf("Expected instance 'Rent', got %s", response.Instances[0].Name)
	}
	if response.Totals.TotalPending != "150.00" {
		t.Errorf("Expected pending '150.00', got %s", response.Totals.TotalPending)
	}
	if response.Totals.CurrentBalance != "1000.00" {
		t.Errorf("Expected balance '1000.00', got %s", response.Totals.CurrentBalance)
	}
}

func TestGetCurrent_MissingOwnerID(t *testing.T) {
	e := echo.New()
	env := newPeriodTestEnv(t, 1, 1000)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/periods/current", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := env.handler.GetCurrent(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestGetByYearMonth_InvalidParams(t *testing.T) {
	e := echo.New()
	env := newPeriodTestEnv(t, 1, 1000)

	tests := []struct {
		name  string
		year  string
		month string
	}{
		{"year too small", "1999", "5"},
		{"year too large", "2101", "5"},
		{"year not a number", "abc", "5"},
		{"month zero", "2026", "0"},
		{"month too large", "2026", "13"},
		{"month not a number", "2026", "xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := env.getByYearMonth(e, tt.year, tt.month)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestGetByYearMonth_IncludesPeriodExpenses(t *testing.T) {
	e := echo.New()
	env := newPeriodTestEnv(t, 1, 1000)

	env.expenseRepo.AddExpense(&domain.Expense{
		ID:          1,
		OwnerID:     env.ownerID,
		Amount:      decimal.RequireFromString("40.00"),
		Description: "Groceries",
		Category:    domain.CategoryFood,
		Date:        time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC),
	})
	// Outside the requested period, must not show up
	env.expenseRepo.AddExpense(&domain.Expense{
		ID:          2,
		OwnerID:     env.ownerID,
		Amount:      decimal.RequireFromString("99.00"),
		Description: "Old purchase",
		Category:    domain.CategoryOther,
		Date:        time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
	})

	rec, err := env.getByYearMonth(e, "2026", "5")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response PeriodResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if len(response.Expenses) != 1 {
		t.Fatalf("Expected 1 expense, got %d", len(response.Expenses))
	}
	if response.Expenses[0].Description != "Groceries" {
		t.Errorf("Expected expense 'Groceries', got %s", response.Expenses[0].Description)
	}
	if response.Totals.TotalExpenses != "40.00" {
		t.Errorf("Expected expenses '40.00', got %s", response.Totals.TotalExpenses)
	}
	if response.Totals.CurrentBalance != "960.00" {
		t.Errorf("Expected balance '960.00', got %s", response.Totals.CurrentBalance)
	}
}

func TestGetByYearMonth_RevisitDoesNotDuplicate(t *testing.T) {
	e := echo.New()
	env := newPeriodTestEnv(t, 1, 1000)

	amount := decimal.RequireFromString("150.00")
	env.templateRepo.AddTemplate(&domain.FixedTemplate{
		ID:          1,
		OwnerID:     env.ownerID,
		Name:        "Rent",
		DueDay:      5,
		FixedAmount: true,
		Amount:      &amount,
		Status:      domain.StatusActive,
	})

	for i := 0; i < 2; i++ {
		rec, err := env.getByYearMonth(e, "2026", "5")
		if err != nil {
			t.Fatalf("Visit %d: expected no error, got %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("Visit %d: expected status 200, got %d", i+1, rec.Code)
		}

		var response PeriodResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if len(response.Instances) != 1 {
			t.Errorf("Visit %d: expected 1 instance, got %d", i+1, len(response.Instances))
		}
	}
}

func TestGetByYearMonth_PartialMaterializationWarns(t *testing.T) {
	e := echo.New()
	env := newPeriodTestEnv(t, 1, 1000)

	rent := decimal.RequireFromString("150.00")
	env.templateRepo.AddTemplate(&domain.FixedTemplate{
		ID:          1,
		OwnerID:     env.ownerID,
		Name:        "Rent",
		DueDay:      5,
		FixedAmount: true,
		Amount:      &rent,
		Status:      domain.StatusActive,
	})
	internet := decimal.RequireFromString("60.00")
	env.templateRepo.AddTemplate(&domain.FixedTemplate{
		ID:          2,
		OwnerID:     env.ownerID,
		Name:        "Internet",
		DueDay:      12,
		FixedAmount: true,
		Amount:      &internet,
		Status:      domain.StatusActive,
	})

	// Fail the Rent insert, let everything else land
	nextID := int32(1)
	env.instanceRepo.CreateFn = func(i *domain.ObligationInstance) (*domain.ObligationInstance, error) {
		if i.Name == "Rent" {
			return nil, errors.New("insert failed")
		}
		created := *i
		created.ID = nextID
		nextID++
		env.instanceRepo.AddInstance(&created)
		return &created, nil
	}

	rec, err := env.getByYearMonth(e, "2026", "5")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response PeriodResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if len(response.Instances) != 1 {
		t.Fatalf("Expected 1 surviving instance, got %d", len(response.Instances))
	}
	if response.Instances[0].Name != "Internet" {
		t.Errorf("Expected surviving instance 'Internet', got %s", response.Instances[0].Name)
	}
	if len(response.Warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(response.Warnings))
	}
	if response.Warnings[0] != "could not materialize Rent" {
		t.Errorf("Unexpected warning: %s", response.Warnings[0])
	}
}
