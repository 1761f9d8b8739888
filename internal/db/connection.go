package db

import (
	"fmt"
	"log"
	"os"

	"github.com/freightdesk/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect initializes the database connection
func Connect() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})

	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	log.Println("Database connected successfully")
}

// AutoMigrate runs database migrations. Order matters: referenced tables
// migrate before the tables holding foreign keys to them.
func AutoMigrate() {
	migrations := []struct {
		name  string
		model interface{}
	}{
		{"User", &models.User{}},
		{"Branch", &models.Branch{}},
		{"Supplier", &models.Supplier{}},
		{"Shipment", &models.Shipment{}},
		{"Incident", &models.Incident{}},
		{"SampleCard", &models.SampleCard{}},
		{"Media", &models.Media{}},
		{"ReviewAction", &models.ReviewAction{}},
		{"SupplierDeliveryRecord", &models.SupplierDeliveryRecord{}},
	}

	for _, m := range migrations {
		if err := DB.AutoMigrate(m.model); err != nil {
			log.Printf("%s migration failed: %v", m.name, err)
			return
		}
	}

	log.Println("All database migrations completed successfully")
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
