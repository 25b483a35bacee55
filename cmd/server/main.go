package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	_ "conftix/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"conftix/internal/auth"
	"conftix/internal/cache"
	"conftix/internal/config"
	"conftix/internal/db"
	"conftix/internal/handler"
	"conftix/internal/mailer"
	"conftix/internal/model"
	"conftix/internal/payment"
	"conftix/internal/repository"
	"conftix/internal/router"
	"conftix/internal/service"
)

// @title Conference Ticketing API
// @version 1.0
// @description Conference ticketing API with attendee profiles, badge customization, and card payments.
// @host localhost:8080
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.Ticket{},
			&model.Order{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Order{},
		&model.Ticket{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	orderRepo := repository.NewOrderRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize collaborators
	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	gateway := payment.NewStripeGateway(cfg.StripeKey)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, mail)
	profileService := service.NewProfileService(userRepo, orderRepo, cacheClient, nil)
	orderService := service.NewOrderService(orderRepo)
	billingService := service.NewBillingService(orderRepo, gateway, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	profileHandler := handler.NewProfileHandler(profileService)
	orderHandler := handler.NewOrderHandler(orderService, billingService)

	// Register routes
	router.Register(
		e,
		cfg,
		authHandler,
		profileHandler,
		orderHandler,
	)

	if cfg.SwaggerHost != "" {
		swaggerURL := cfg.SwaggerHost
		if !strings.HasPrefix(swaggerURL, "http://") && !strings.HasPrefix(swaggerURL, "https://") {
			swaggerURL = "http://" + swaggerURL
		}
		log.Printf("Swagger documentation available at: %s/swagger/index.html", swaggerURL)
	} else {
		log.Printf("Swagger documentation available at: http://localhost:%s/swagger/index.html", cfg.ServerPort)
	}

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
