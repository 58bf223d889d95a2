package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/moncash/moncash-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, authHandler *AuthHandler, periodHandler *PeriodHandler, instanceHandler *InstanceHandler, fixedTemplateHandler *FixedTemplateHandler, planHandler *InstallmentPlanHandler, cardHandler *CardHandler, expenseHandler *ExpenseHandler, potHandler *PotHandler, settingsHandler *SettingsHandler) {
	// API version 1
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	if rateLimiter != nil {
		api.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.POST("/callback", authHandler.Callback)
	auth.GET("/me", authHandler.Me)
	auth.POST("/logout", authHandler.Logout)

	// Period routes
	periods := api.Group("/periods")
	periods.GET("/current", periodHandler.GetCurrent)
	periods.GET("/:year/:month", periodHandler.GetByYearMonth)

	// Obligation instance routes
	instances := api.Group("/instances")
	instances.POST("", instanceHandler.CreateInstance)
	instances.PUT("/order", instanceHandler.Reorder)
	instances.PATCH("/:id/paid", instanceHandler.SetPaid)
	instances.PATCH("/:id/amount", instanceHandler.SetAmount)
	instances.PATCH("/:id/notes", instanceHandler.SetNotes)

	// Fixed template routes
	fixedTemplates := api.Group("/fixed-templates")
	fixedTemplates.POST("", fixedTemplateHandler.CreateTemplate)
	fixedTemplates.GET("", fixedTemplateHandler.GetTemplates)
	fixedTemplates.PUT("/:id", fixedTemplateHandler.UpdateTemplate)
	fixedTemplates.DELETE("/:id", fixedTemplateHandler.DeleteTemplate)

	// Installment plan routes
	plans := api.Group("/installment-plans")
	plans.POST("", planHandler.CreatePlan)
	plans.GET("", planHandler.GetPlans)
	plans.PUT("/:id", planHandler.UpdatePlan)
	plans.DELETE("/:id", planHandler.DeletePlan)

	// Card routes
	cards := api.Group("/cards")
	cards.POST("", cardHandler.CreateCard)
	cards.GET("", cardHandler.GetCards)
	cards.PUT("/:id", cardHandler.UpdateCard)
	cards.DELETE("/:id", cardHandler.DeleteCard)

	// Expense routes
	expenses := api.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)
	expenses.POST("/:id/receipt", expenseHandler.AttachReceipt)
	expenses.GET("/:id/receipt", expenseHandler.GetReceiptURLs)
	expenses.DELETE("/:id/receipt", expenseHandler.DetachReceipt)

	// Savings pot routes
	pot := api.Group("/pot")
	pot.GET("", potHandler.GetPot)
	pot.PUT("", potHandler.UpdatePot)
	pot.POST("/deposits", potHandler.Deposit)
	pot.GET("/deposits", potHandler.GetDeposits)

	// Settings routes
	settings := api.Group("/settings")
	settings.GET("", settingsHandler.GetSettings)
	settings.PUT("", settingsHandler.UpdateSettings)
}
