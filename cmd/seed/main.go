package main

import (
	"context"
	"log"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"conftix/internal/config"
	"conftix/internal/db"
	"conftix/internal/model"
	"conftix/internal/repository"
)

// Demo fixtures: a standard attendee with a full profile and a corporate
// attendee whose badge company comes from the order's billing identity.
type seedUser struct {
	name     string
	email    string
	password string
	order    *seedOrder
}

type seedOrder struct {
	rate        model.OrderRate
	billingName string
	prices      []string
}

var seedUsers = []seedUser{
	{
		name:     "Alice",
		email:    "alice@example.com",
		password: "Pa55w0rd!",
		order: &seedOrder{
			rate:   model.RateStandard,
			prices: []string{"95.00"},
		},
	},
	{
		name:     "Bob",
		email:    "bob@example.com",
		password: "Pa55w0rd!",
		order: &seedOrder{
			rate:        model.RateCorporate,
			billingName: "Sirius Cybernetics Corp.",
			prices:      []string{"150.00", "150.00"},
		},
	},
	{
		name:     "Carol",
		email:    "carol@example.com",
		password: "Pa55w0rd!",
	},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Order{}, &model.Ticket{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	orderRepo := repository.NewOrderRepository(gormDB)
	ctx := context.Background()

	created, skipped := 0, 0
	for _, su := range seedUsers {
		existing, err := userRepo.FindByEmail(ctx, su.email)
		if err != nil && err != gorm.ErrRecordNotFound {
			log.Fatalf("Error checking user %s: %v", su.email, err)
		}
		if existing != nil {
			log.Printf("User %s already exists, skipping", su.email)
			skipped++
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Error hashing password for %s: %v", su.email, err)
		}

		user := &model.User{
			Name:         su.name,
			Email:        su.email,
			PasswordHash: string(hash),
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Error creating user %s: %v", su.email, err)
		}
		created++

		if su.order == nil {
			continue
		}

		order := &model.Order{
			UserID:      user.ID,
			Rate:        su.order.rate,
			Status:      model.OrderStatusConfirmed,
			BillingName: su.order.billingName,
		}
		for _, p := range su.order.prices {
			price, err := decimal.NewFromString(p)
			if err != nil {
				log.Fatalf("Invalid seed price %q: %v", p, err)
			}
			order.Tickets = append(order.Tickets, model.Ticket{
				Description: ticketDescription(su.order.rate),
				Price:       price,
			})
		}
		if err := orderRepo.Create(ctx, order); err != nil {
			log.Fatalf("Error creating order for %s: %v", su.email, err)
		}
		log.Printf("Created %s order %s for %s", order.Rate, order.ID, su.email)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", created)
	log.Printf("  - Existing users skipped: %d", skipped)
}

func ticketDescription(rate model.OrderRate) string {
	if rate == model.RateCorporate {
		return "Corporate conference ticket"
	}
	return "Conference ticket"
}
