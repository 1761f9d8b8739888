package services

import (
	"fmt"
	"testing"

	"github.com/freightdesk/backend/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// openTestDB returns an isolated in-memory database with the full schema
// migrated. Connections are capped at one so every query sees the same
// memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to access underlying database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Branch{},
		&models.Supplier{},
		&models.Shipment{},
		&models.Incident{},
		&models.SampleCard{},
		&models.Media{},
		&models.ReviewAction{},
		&models.SupplierDeliveryRecord{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}

	return db
}

var shipmentSeq int

// seedShipment creates a supplier and one of its shipments.
func seedShipment(t *testing.T, db *gorm.DB) *models.Shipment {
	t.Helper()

	shipmentSeq++
	supplier := models.Supplier{
		Name:    fmt.Sprintf("Test Supplier %d", shipmentSeq),
		Code:    fmt.Sprintf("SUP-%03d", shipmentSeq),
		Country: "VN",
	}
	if err := db.Create(&supplier).Error; err != nil {
		t.Fatalf("Failed to seed supplier: %v", err)
	}

	shipment := models.Shipment{
		RefCode:    fmt.Sprintf("%s-2026-%03d", supplier.Code, shipmentSeq),
		SupplierID: supplier.ID,
	}
	if err := db.Create(&shipment).Error; err != nil {
		t.Fatalf("Failed to seed shipment: %v", err)
	}
	return &shipment
}

// seedIncident creates a draft incident with its full sample grid through
// the incident service.
func seedIncident(t *testing.T, db *gorm.DB, issueTypes ...models.IssueType) *models.Incident {
	t.Helper()

	if len(issueTypes) == 0 {
		issueTypes = []models.IssueType{models.IssueBroken}
	}

	shipment := seedShipment(t, db)
	svc := NewIncidentService(db, NewHoldService(db))
	incident, err := svc.Create(1, CreateIncidentInput{
		ShipmentID: shipment.ID,
		IssueTypes: issueTypes,
	})
	if err != nil {
		t.Fatalf("Failed to seed incident: %v", err)
	}
	return incident
}

// setIncidentStatus moves an incident directly into the given status for
// test setup, bypassing the workflow.
func setIncidentStatus(t *testing.T, db *gorm.DB, incidentID uint, status models.IncidentStatus) {
	t.Helper()

	if err := db.Model(&models.Incident{}).Where("id = ?", incidentID).Update("status", status).Error; err != nil {
		t.Fatalf("Failed to set incident status: %v", err)
	}
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
