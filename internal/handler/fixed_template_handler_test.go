package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/moncash/moncash-backend/internal/domain"
	"github.com/moncash/moncash-backend/internal/service"
	"github.com/moncash/moncash-backend/internal/testutil"
	"github.com/moncash/moncash-backend/internal/util"
)

type templateTestEnv struct {
	fixedHandler *FixedTemplateHandler
	planHandler  *InstallmentPlanHandler
	cardHandler  *CardHandler
	templateRepo *testutil.MockFixedTemplateRepository
	planRepo     *testutil.MockInstallmentPlanRepository
	cardRepo     *testutil.MockCardRepository
	instanceRepo *testutil.MockInstanceRepository
	markerRepo   *testutil.MockPeriodMarkerRepository
	ownerID      uuid.UUID
}

func newTemplateTestEnv(t *testing.T) *templateTestEnv {
	t.Helper()

	env := &templateTestEnv{
		templateRepo: testutil.NewMockFixedTemplateRepository(),
		planRepo:     testutil.NewMockInstallmentPlanRepository(),
		cardRepo:     testutil.NewMockCardRepository(),
		instanceRepo: testutil.NewMockInstanceRepository(),
		markerRepo:   testutil.NewMockPeriodMarkerRepository(),
		ownerID:      uuid.New(),
	}

	templateService := service.NewTemplateService(
		env.templateRepo, env.planRepo, env.cardRepo, env.instanceRepo, env.markerRepo)
	settingsService := service.NewSettingsService(testutil.NewMockSettingsRepository())

	env.fixedHandler = NewFixedTemplateHandler(templateService, settingsService)
	env.planHandler = NewInstallmentPlanHandler(templateService, settingsService)
	env.cardHandler = NewCardHandler(templateService, settingsService)
	return env
}

func (env *templateTestEnv) jsonRequest(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContextWithOwner(c, "auth0|template", "template@example.com", "", "", env.ownerID)
	return c, rec
}

func TestCreateTemplate_FixedAmount(t *testing.T) {
	e := echo.New()
	env := newTemplateTestEnv(t)

	body := `{"name":"Rent","dueDay":5,"fixedAmount":true,"amount":"150.00"}`
	c, rec := env.jsonRequest(e, http.MethodPost, "/api/v1/fixed-templates", body)

	err := env.fixedHandler.CreateTemplate(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response FixedTemplateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Name != "Rent" {
		t.Errorf("Expected name 'Rent', got %s", response.Name)
	}
	if !response.FixedAmount || response.Amount == nil || *response.Amount != "150.00" {
		t.Errorf("Expected fixed amount '150.00', got %v", response.Amount)
	}
	if response.Status != string(domain.StatusActive) {
		t.Errorf("Expected status 'active', got %s", response.Status)
	}
}

func TestCreateTemplate_VariableAmount(t *testing.T) {
	e := echo.New()
	env := newTemplateTestEnv(t)

	body := `{"name":"Electricity","dueDay":20,"fixedAmount":false}`
	c, rec := env.jsonRequest(e, http.MethodPost, "/api/v1/fixed-templates", body)

	err := env.fixedHandler.CreateTemplate(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	var response FixedTemplateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.FixedAmount {
		t.Error("Expected a variable-amount template")
	}
	if response.Amount != nil {
		t.Errorf("Expected no amount, got %v", *response.Amount)
	}
}

func TestCreateTemplate_ValidationFailures(t *testing.T) {
	e := echo.New()
	env := newTemplateTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"name":"","dueDay":5,"fixedAmount":false}`},
		{"due day zero", `{"name":"Rent","dueDay":0,"fixedAmount":false}`},
		{"due day too large", `{"name":"Rent","dueDay":32,"fixedAmount":false}`},
		{"fixed without amount", `{"name":"Rent","dueDay":5,"fixedAmount":true}`},
		{"fixed with zero amount", `{"name":"Rent","dueDay":5,"fixedAmount":true,"amount":"0.00"}`},
		{"unparseable amount", `{"name":"Rent","dueDay":5,"fixedAmount":true,"amount":"abc"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := env.jsonRequest(e, http.MethodPost, "/api/v1/fixed-templates", tt.body)
			err := env.fixedHandler.CreateTemplate(c)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestCreateTemplate_MaterializesIntoVisitedPeriod(t *testing.T) {
	e := echo.New()
	env := newTemplateTestEnv(t)

	// The active period was already materialized, so the new template's
	// instance lands there immediately
	period := domain.PeriodContext{OwnerID: env.ownerID}
	periodService := service.NewMaterializationService(
		env.templateRepo, env.planRepo, env.cardRepo, env.instanceRepo, env.markerRepo)
	period.Period = util.CurrentPeriod(domain.DefaultReferenceDay)
	if _, err := periodService.SwitchPeriod(period); err != nil {
		t.Fatalf("Failed to materialize period: %v", err)
	}

	body := `{"name":"Gym","dueDay":3,"fixedAmount":true,"amount":"30.00"}`
	c, rec := env.jsonRequest(e, http.MethodPost, "/api/v1/fixed-templates", body)

	if err := env.fixedHandler.CreateTemplate(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	instances, err := env.instanceRepo.ListByPeriod(env.ownerID, period.Period.Year, period.Period.Month)
	if err != nil {
		t.Fatalf("Failed to list instances: %v", err)
	}
	if len(instances) != 1 {
		t.Fatalf("Expected 1 instance in the active period, got %d", len(instances))
	}
	if instances[0].Name != "Gym" {
		t.Errorf("Expected instance 'Gym', got %s", instances[0].Name)
	}
}

func TestCreateTemplate_SkipsUnvisitedPeriod(t *testing.T) {
	e := echo.New()
	env := newTemplateTestEnv(t)

	body := `{"name":"Gym","dueDay":3,"fixedAmount":true,"amount":"30.00"}`
	c, rec := env.jsonRequest(e, http.MethodPost, "/api/v1/fixed-templates", body)

	if err := env.fixedHandler.CreateTemplate(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	// Nothing materialized: the template is picked up when the period is
	// first visited, inserting now would collide with that
	if len(env.instanceRepo.Instances) != 0 {
		t.Errorf("Expected no instances, got %d", len(env.instanceRepo.Instances))
	}
}

func TestGetTemplates(t *testing.T) {
	e := echo.New()
	env := newTemplateTestEnv(t)

	amount := decimal.RequireFromString("150.00")
	env.templateRepo.AddTemplate(&domain.FixedTemplate{
		ID: 1, OwnerID: env.ownerID, Name: "Rent", DueDay: 5,
		FixedAmount: true, Amount: &amount, Status: domain.StatusActive,
	})
	env.templateRepo.AddTemplate(&domain.FixedTemplate{
		ID: 2, OwnerID: uuid.New(), Name: "Not mine", DueDay: 5,
		Status: domain.StatusActive,
	})

	c, rec := env.jsonRequest(e, http.MethodGet, "/api/v1/fixed-templates", "")

	err := env.fixedHandler.GetTemplates(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []FixedTemplateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("Expected 1 template, got %d", len(response))
	}
	if response[0].Name != "Rent" {
		t.Errorf("Expected template 'Rent', got %s", response[0].Name)
	}
}

func TestUpdateTemplate_Success(t *testing.T) {
	e := echo.New()
	env := newTemplateTestEnv(t)

	amount := decimal.RequireFromString("150.00")
	env.templateRepo.AddTemplate(&domain.FixedTemplate{
		ID: 1, OwnerID: env.ownerID, Name: "Rent", DueDay: 5,
		FixedAmount: true, Amount: &amount, Status: domain.StatusActive,
	})

	body := `{"name":"Rent (new lease)","dueDay":7,"fixedAmount":true,"amount":"175.00"}`
	c, rec := env.jsonRequest(e, http.MethodPut, "/api/v1/fixed-templates/1", body)
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := env.fixedHandler.UpdateTemplate(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response FixedTemplateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Name != "Rent (new lease)" {
		t.Errorf("Expected updated name, got %s", response.Name)
	}
	if response.DueDay != 7 {
		t.Errorf("Expected due day 7, got %d", response.DueDay)
	}
	if response.Amount == nil || *response.Amount != "175.00" {
		t.Errorf("Expected amount '175.00', got %v", response.Amount)
	}
}

func TestUpdateTemplate_NotFound(t *testing.T) {
	e := echo.New()
	env := newTemplateTestEnv(t)

	body := `{"name":"Rent","dueDay":5,"fixedAmount":false}`
	c, rec := env.jsonRequest(e, http.MethodPut, "/api/v1/fixed-templates/99", body)
	c.SetParamNames("id")
	c.SetParamValues("99")

	err := env.fixedHandler.UpdateTemplate(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestDeleteTemplate_Deactivates(t *testing.T) {
	e := echo.New()
	env := newTemplateTestEnv(t)

	amount := decimal.RequireFromString("150.00")
	env.templateRepo.AddTemplate(&domain.FixedTemplate{
		ID: 1, OwnerID: env.ownerID, Name: "Rent", DueDay: 5,
		FixedAmount: true, Amount: &amount, Status: domain.StatusActive,
	})

	c, rec := env.jsonRequest(e, http.MethodDelete, "/api/v1/fixed-templates/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := env.fixedHandler.DeleteTemplate(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rec.Code)
	}

	// Soft delete: the row survives with deactivated status
	template, err := env.templateRepo.GetByID(env.ownerID, 1)
	if err != nil {
		t.Fatalf("Failed to reload template: %v", err)
	}
	if template.Status != domain.StatusDeactivated {
		t.Errorf("Expected status 'deactivated', got %s", template.Status)
	}
}
