package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/moncash/moncash-backend/internal/domain"
)

func TestCreateCard_Success(t *testing.T) {
	e := echo.New()
	env := newTemplateTestEnv(t)

	body := `{"name":"Visa Gold","dueDay":8,"creditLimit":"2500.00"}`
	c, rec := env.jsonRequest(e, http.MethodPost, "/api/v1/cards", body)

	err := env.cardHandler.CreateCard(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response CardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Name != "Visa Gold" {
		t.Errorf("Expected name 'Visa Gold', got %s", response.Name)
	}
	if response.CreditLimit != "2500.00" {
		t.Errorf("Expected credit limit '2500.00', got %s", response.CreditLimit)
	}
	if response.Status != string(domain.StatusActive) {
		t.Errorf("Expected status 'active', got %s", response.Status)
	}
}

func TestCreateCard_ValidationFailures(t *testing.T) {
	e := echo.New()
	env := newTemplateTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"name":"","dueDay":8,"creditLimit":"2500.00"}`},
		{"invalid due day", `{"name":"Visa","dueDay":0,"creditLimit":"2500.00"}`},
		{"unparseable limit", `{"name":"Visa","dueDay":8,"creditLimit":"abc"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := env.jsonRequest(e, http.MethodPost, "/api/v1/cards", tt.body)
			err := env.cardHandler.CreateCard(c)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestGetCards(t *testing.T) {
	e := echo.New()
	env := newTemplateTestEnv(t)

	env.cardRepo.AddCard(&domain.Card{
		ID:          1,
		OwnerID:     env.ownerID,
		Name:        "Visa Gold",
		DueDay:      8,
		CreditLimit: decimal.RequireFromString("2500.00"),
		Status:      domain.StatusActive,
	})

	c, rec := env.jsonRequest(e, http.MethodGet, "/api/v1/cards", "")

	err := env.cardHandler.GetCards(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []CardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("Expected 1 card, got %d", len(response))
	}
}

func TestUpdateCard_NotFound(t *testing.T) {
	e := echo.New()
	env := newTemplateTestEnv(t)

	body := `{"name":"Visa Gold","dueDay":8,"creditLimit":"3000.00"}`
	c, rec := env.jsonRequest(e, http.MethodPut, "/api/v1/cards/99", body)
	c.SetParamNames("id")
	c.SetParamValues("99")

	err := env.cardHandler.UpdateCard(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestDeleteCard_Deactivates(t *testing.T) {
	e := echo.New()
	env := newTemplateTestEnv(t)

	env.cardRepo.AddCard(&domain.Card{
		ID:          1,
		OwnerID:     env.ownerID,
		Name:        "Visa Gold",
		DueDay:      8,
		CreditLimit: decimal.RequireFromString("2500.00"),
		Status:      domain.StatusActive,
	})

	c, rec := env.jsonRequest(e, http.MethodDelete, "/api/v1/cards/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := env.cardHandler.DeleteCard(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rec.Code)
	}

	card, err := env.cardRepo.GetByID(env.ownerID, 1)
	if err != nil {
		t.Fatalf("Failed to reload card: %v", err)
	}
	if card.Status != domain.StatusDeactivated {
		t.Errorf("Expected status 'deactivated', got %s", card.Status)
	}
}
