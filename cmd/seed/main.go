package main

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/fieldservice-app/config"
	"github.com/yeremiapane/fieldservice-app/database"
	"github.com/yeremiapane/fieldservice-app/models"
	"github.com/yeremiapane/fieldservice-app/utils"
	"gorm.io/gorm"
)

var users = []models.User{
	{FirstName: "Ada", LastName: "Admin", Email: "admin@fieldservice.local", Role: models.RoleAdmin, IsActive: true},
	{FirstName: "Dana", LastName: "Reyes", Email: "dana@fieldservice.local", Phone: "+1-555-0100", Role: models.RoleCustomer, IsActive: true},
	{FirstName: "Sam", LastName: "Okafor", Email: "sam@fieldservice.local", Phone: "+1-555-0101", Role: models.RoleTechnician, IsActive: true},
	{FirstName: "Lee", LastName: "Park", Email: "lee@fieldservice.local", Phone: "+1-555-0102", Role: models.RoleTechnician, IsActive: true},
}

var offerings = []models.Service{
	{Name: "AC Maintenance", Description: "Filter cleaning and refrigerant check", BasePrice: decimal.RequireFromString("75.00"), EstimatedDuration: 60, IsActive: true},
	{Name: "Boiler Repair", Description: "Diagnosis and repair of gas boilers", BasePrice: decimal.RequireFromString("120.50"), EstimatedDuration: 90, IsActive: true},
	{Name: "Duct Cleaning", Description: "Full residential duct cleaning", BasePrice: decimal.RequireFromString("199.99"), EstimatedDuration: 180, IsActive: true},
}

func main() {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}
	utils.SetJWTSecret(cfg.JWTSecret)

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate: %v", err)
	}

	for i := range users {
		u, created, err := seedUser(db, users[i])
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to seed user %s: %v", users[i].Email, err)
		}
		token, err := utils.GenerateToken(u.ID, u.Role)
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to sign token: %v", err)
		}
		status := "exists"
		if created {
			status = "created"
		}
		fmt.Printf("%-10s %-28s %s (%s)\n  token: %s\n", u.Role, u.Email, u.ID, status, token)
	}

	for i := range offerings {
		s, created, err := seedService(db, offerings[i])
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to seed service %s: %v", offerings[i].Name, err)
		}
		if created {
			fmt.Printf("Created service: %s %s\n", s.ID, s.Name)
		} else {
			fmt.Printf("Service already exists: %s %s\n", s.ID, s.Name)
		}
	}
}

// seedUser membuat user bila email belum terdaftar
func seedUser(db *gorm.DB, u models.User) (models.User, bool, error) {
	var existing models.User
	err := db.Where("email = ?", u.Email).First(&existing).Error
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return u, false, err
	}
	if err := db.Create(&u).Error; err != nil {
		return u, false, err
	}
	return u, true, nil
}

func seedService(db *gorm.DB, s models.Service) (models.Service, bool, error) {
	var existing models.Service
	err := db.Where("name = ?", s.Name).First(&existing).Error
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return s, false, err
	}
	if err := db.Create(&s).Error; err != nil {
		return s, false, err
	}
	return s, true, nil
}
