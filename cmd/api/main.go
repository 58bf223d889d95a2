package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/moncash/moncash-backend/docs"
	"github.com/moncash/moncash-backend/internal/config"
	"github.com/moncash/moncash-backend/internal/handler"
	"github.com/moncash/moncash-backend/internal/middleware"
	"github.com/moncash/moncash-backend/internal/repository/postgres"
	"github.com/moncash/moncash-backend/internal/repository/storage"
	"github.com/moncash/moncash-backend/internal/service"
	"github.com/moncash/moncash-backend/internal/websocket"
)

// @title MonCash API
// @version 1.0
// @description Personal finance tracker: monthly obligations, installments, card invoices, expenses and savings.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Run database migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}
	log.Info().Msg("Migrations applied")

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)
	templateRepo := postgres.NewFixedTemplateRepository(pool)
	planRepo := postgres.NewInstallmentPlanRepository(pool)
	cardRepo := postgres.NewCardRepository(pool)
	instanceRepo := postgres.NewInstanceRepository(pool)
	markerRepo := postgres.NewPeriodMarkerRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	potRepo := postgres.NewPotRepository(pool)

	// Initialize receipt storage when configured
	var receiptStorage storage.ReceiptRepository
	if cfg.S3.Enabled() {
		s3Repo, err := storage.NewS3ReceiptRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize receipt storage")
		}
		receiptStorage = s3Repo
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Receipt storage enabled")
	} else {
		log.Warn().Msg("Receipt storage not configured, receipt uploads disabled")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, settingsRepo)
	settingsService := service.NewSettingsService(settingsRepo)
	templateService := service.NewTemplateService(templateRepo, planRepo, cardRepo, instanceRepo, markerRepo)
	materializationService := service.NewMaterializationService(templateRepo, planRepo, cardRepo, instanceRepo, markerRepo)
	paymentService := service.NewPaymentService(instanceRepo, planRepo, templateRepo)
	expenseService := service.NewExpenseService(expenseRepo)
	potService := service.NewPotService(potRepo)
	receiptService := service.NewReceiptService(receiptStorage, expenseRepo)

	// Initialize WebSocket hub and connect it to the services
	hub := websocket.NewHub()
	templateService.SetEventPublisher(hub)
	materializationService.SetEventPublisher(hub)
	paymentService.SetEventPublisher(hub)
	expenseService.SetEventPublisher(hub)
	potService.SetEventPublisher(hub)
	settingsService.SetEventPublisher(hub)

	// Initialize auth middleware with owner lookup
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, authService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}

	// Per-owner rate limiting
	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// WebSocket token validator
	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience, authService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WebSocket token validator")
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	periodHandler := handler.NewPeriodHandler(materializationService, expenseService, settingsService)
	instanceHandler := handler.NewInstanceHandler(templateService, paymentService, settingsService)
	fixedTemplateHandler := handler.NewFixedTemplateHandler(templateService, settingsService)
	planHandler := handler.NewInstallmentPlanHandler(templateService, settingsService)
	cardHandler := handler.NewCardHandler(templateService, settingsService)
	expenseHandler := handler.NewExpenseHandler(expenseService, receiptService)
	potHandler := handler.NewPotHandler(potService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	wsHandler := handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// API documentation
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", handler.ServeOpenAPI3Spec)

	// WebSocket endpoint (token passed as query parameter)
	e.GET("/ws", wsHandler.HandleWS)

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, authHandler, periodHandler, instanceHandler, fixedTemplateHandler, planHandler, cardHandler, expenseHandler, potHandler, settingsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
