package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/moncash/moncash-backend/internal/service"
	"github.com/moncash/moncash-backend/internal/testutil"
)

func newPotTestHandler() (*PotHandler, *testutil.MockPotRepository, uuid.UUID) {
	potRepo := testutil.NewMockPotRepository()
	potService := service.NewPotService(potRepo)
	return NewPotHandler(potService), potRepo, uuid.New()
}

func potJSONRequest(e *echo.Echo, ownerID uuid.UUID, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContextWithOwner(c, "auth0|pot", "pot@example.com", "", "", ownerID)
	return c, rec
}

func TestGetPot_CreatesEmptyOnFirstAccess(t *testing.T) {
	e := echo.New()
	handler, _, ownerID := newPotTestHandler()

	c, rec := potJSONRequest(e, ownerID, http.MethodGet, "/api/v1/pot", "")

	err := handler.GetPot(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response PotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Total != "0.00" {
		t.Errorf("Expected total '0.00', got %s", response.Total)
	}
	if response.Goal != "0.00" {
		t.Errorf("Expected goal '0.00', got %s", response.Goal)
	}
}

func TestUpdatePot_SetsGoal(t *testing.T) {
	e := echo.New()
	handler, _, ownerID := newPotTestHandler()

	body := `{"goal":"3000.00","notes":"emergency fund"}`
	c, rec := potJSONRequest(e, ownerID, http.MethodPut, "/api/v1/pot", body)

	err := handler.UpdatePot(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response PotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Goal != "3000.00" {
		t.Errorf("Expected goal '3000.00', got %s", response.Goal)
	}
	if response.Notes != "emergency fund" {
		t.Errorf("Expected notes 'emergency fund', got %s", response.Notes)
	}
	// The total never moves through goal updates
	if response.Total != "0.00" {
		t.Errorf("Expected total '0.00', got %s", response.Total)
	}
}

func TestUpdatePot_NegativeGoal(t *testing.T) {
	e := echo.New()
	handler, _, ownerID := newPotTestHandler()

	body := `{"goal":"-100.00"}`
	c, rec := potJSONRequest(e, ownerID, http.MethodPut, "/api/v1/pot", body)

	err := handler.UpdatePot(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestDeposit_MovesTotal(t *testing.T) {
	e := echo.New()
	handler, _, ownerID := newPotTestHandler()

	body := `{"amount":"250.00","description":"May savings","date":"2026-05-28"}`
	c, rec := potJSONRequest(e, ownerID, http.MethodPost, "/api/v1/pot/deposits", body)

	err := handler.Deposit(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var entry PotEntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if entry.Amount != "250.00" {
		t.Errorf("Expected amount '250.00', got %s", entry.Amount)
	}
	if entry.Date != "2026-05-28" {
		t.Errorf("Expected date '2026-05-28', got %s", entry.Date)
	}

	// The pot total follows the deposit
	c2, rec2 := potJSONRequest(e, ownerID, http.MethodGet, "/api/v1/pot", "")
	if err := handler.GetPot(c2); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	var pot PotResponse
	if err := json.Unmarshal(rec2.Body.Bytes(), &pot); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if pot.Total != "250.00" {
		t.Errorf("Expected total '250.00', got %s", pot.Total)
	}
}

func TestDeposit_InvalidAmount(t *testing.T) {
	e := echo.New()
	handler, _, ownerID := newPotTestHandler()

	tests := []struct {
		name string
		body string
	}{
		{"zero", `{"amount":"0.00"}`},
		{"negative", `{"amount":"-10.00"}`},
		{"unparseable", `{"amount":"ten"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := potJSONRequest(e, ownerID, http.MethodPost, "/api/v1/pot/deposits", tt.body)
			err := handler.Deposit(c)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestGetDeposits_NewestFirst(t *testing.T) {
	e := echo.New()
	handler, _, ownerID := newPotTestHandler()

	for _, body := range []string{
		`{"amount":"100.00","description":"first"}`,
		`{"amount":"200.00","description":"second"}`,
	} {
		c, rec := potJSONRequest(e, ownerID, http.MethodPost, "/api/v1/pot/deposits", body)
		if err := handler.Deposit(c); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d", rec.Code)
		}
	}

	c, rec := potJSONRequest(e, ownerID, http.MethodGet, "/api/v1/pot/deposits", "")
	if err := handler.GetDeposits(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []PotEntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 2 {
		t.Fatalf("Expected 2 deposits, got %d", len(response))
	}
	if response[0].Description != "second" {
		t.Errorf("Expected newest deposit first, got %s", response[0].Description)
	}
}
