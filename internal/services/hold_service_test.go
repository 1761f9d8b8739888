package services

import (
	"errors"
	"testing"

	"github.com/freightdesk/backend/internal/models"
)

func TestHoldApplyAndRelease(t *testing.T) {
	db := openTestDB(t)
	shipment := seedShipment(t, db)
	svc := NewHoldService(db)

	if err := svc.Apply(db, shipment.ID, HoldReasonIncidentPending, HoldSourceQualityIncident); err != nil {
		t.Fatalf("Failed to apply hold: %v", err)
	}

	var reloaded models.Shipment
	if err := db.First(&reloaded, shipment.ID).Error; err != nil {
		t.Fatalf("Failed to reload shipment: %v", err)
	}
	if !reloaded.OnHold {
		t.Error("Expected shipment on hold")
	}
	if reloaded.HoldSource == nil || *reloaded.HoldSource != HoldSourceQualityIncident {
		t.Errorf("Expected quality_incident source tag, got %v", reloaded.HoldSource)
	}

	if err := svc.Release(db, shipment.ID, HoldSourceQualityIncident); err != nil {
		t.Fatalf("Failed to release hold: %v", err)
	}
	if err := db.First(&reloaded, shipment.ID).Error; err != nil {
		t.Fatalf("Failed to reload shipment: %v", err)
	}
	if reloaded.OnHold || reloaded.HoldReason != nil || reloaded.HoldSource != nil {
		t.Error("Expected hold columns cleared after release")
	}
}

func TestHoldLastWriterWins(t *testing.T) {
	db := openTestDB(t)
	shipment := seedShipment(t, db)
	svc := NewHoldService(db)

	if err := svc.Apply(db, shipment.ID, "customs inspection", "customs"); err != nil {
		t.Fatalf("Failed to apply first hold: %v", err)
	}
	if err := svc.Apply(db, shipment.ID, HoldReasonIncidentPending, HoldSourceQualityIncident); err != nil {
		t.Fatalf("Failed to apply second hold: %v", err)
	}

	var reloaded models.Shipment
	if err := db.First(&reloaded, shipment.ID).Error; err != nil {
		t.Fatalf("Failed to reload shipment: %v", err)
	}
	if reloaded.HoldReason == nil || *reloaded.HoldReason != HoldReasonIncidentPending {
		t.Errorf("Expected last writer's reason, got %v", reloaded.HoldReason)
	}
	if reloaded.HoldSource == nil || *reloaded.HoldSource != HoldSourceQualityIncident {
		t.Errorf("Expected last writer's source, got %v", reloaded.HoldSource)
	}
}

func TestHoldUnknownShipment(t *testing.T) {
	db := openTestDB(t)
	svc := NewHoldService(db)

	if err := svc.Apply(db, 9999, HoldReasonIncidentPending, HoldSourceQualityIncident); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected not found on apply, got %v", err)
	}
	if err := svc.Release(db, 9999, HoldSourceQualityIncident); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected not found on release, got %v", err)
	}
}
