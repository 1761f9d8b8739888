package main

import (
	"log"
	"time"

	"github.com/freightdesk/backend/internal/db"
	"github.com/freightdesk/backend/internal/models"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Connect to database
	db.Connect()

	// Run migrations first
	log.Println("Running database migrations...")
	db.AutoMigrate()

	log.Println("Seeding database with sample data...")

	if err := seedUsers(); err != nil {
		log.Printf("Error seeding users: %v", err)
	}
	if err := seedSuppliersAndShipments(); err != nil {
		log.Printf("Error seeding suppliers and shipments: %v", err)
	}

	log.Println("Database seeding completed successfully!")
}

func seedUsers() error {
	users := []struct {
		Email     string
		Password  string
		FirstName string
		LastName  string
		Role      models.UserRole
	}{
		{"admin@freightdesk.local", "admin123", "Ada", "Okafor", models.RoleAdmin},
		{"manager@freightdesk.local", "manager123", "Marta", "Silva", models.RoleBranchManager},
		{"supervisor@freightdesk.local", "super123", "Samir", "Haddad", models.RoleSupervisor},
		{"operator@freightdesk.local", "operator123", "Omar", "Diallo", models.RoleOperator},
	}

	for _, u := range users {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Error hashing password for %s: %v", u.Email, err)
			continue
		}

		user := models.User{
			Email:     u.Email,
			Password:  string(hashedPassword),
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Role:      u.Role,
		}

		var existing models.User
		if err := db.DB.Where("email = ?", user.Email).First(&existing).Error; err != nil {
			if err := db.DB.Create(&user).Error; err != nil {
				log.Printf("Error creating user %s: %v", user.Email, err)
			} else {
				log.Printf("Created user: %s (%s)", user.Email, user.Role)
			}
		} else {
			log.Printf("User already exists: %s", user.Email)
		}
	}

	return nil
}

func seedSuppliersAndShipments() error {
	branch := models.Branch{Name: "Rotterdam Warehouse", Code: "RTM-01"}
	var existingBranch models.Branch
	if err := db.DB.Where("code = ?", branch.Code).First(&existingBranch).Error; err != nil {
		if err := db.DB.Create(&branch).Error; err != nil {
			return err
		}
	} else {
		branch = existingBranch
	}

	suppliers := []models.Supplier{
		{Name: "Mekong Agro Export", Code: "SUP-MAE", Country: "VN"},
		{Name: "Parana Grains SA", Code: "SUP-PGS", Country: "AR"},
	}

	now := time.Now()
	for i := range suppliers {
		var existing models.Supplier
		if err := db.DB.Where("code = ?", suppliers[i].Code).First(&existing).Error; err != nil {
			if err := db.DB.Create(&suppliers[i]).Error; err != nil {
				log.Printf("Error creating supplier %s: %v", suppliers[i].Code, err)
				continue
			}
		} else {
			suppliers[i] = existing
		}

		shipment := models.Shipment{
			RefCode:    suppliers[i].Code + "-2026-001",
			SupplierID: suppliers[i].ID,
			BranchID:   &branch.ID,
			ArrivedAt:  &now,
		}
		var existingShipment models.Shipment
		if err := db.DB.Where("ref_code = ?", shipment.RefCode).First(&existingShipment).Error; err != nil {
			if err := db.DB.Create(&shipment).Error; err != nil {
				log.Printf("Error creating shipment %s: %v", shipment.RefCode, err)
			} else {
				log.Printf("Created shipment: %s", shipment.RefCode)
			}
		}
	}

	return nil
}
