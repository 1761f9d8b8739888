package services

import (
	"errors"
	"testing"

	"github.com/freightdesk/backend/internal/models"
)

func TestRecordSampleDefaultsWeight(t *testing.T) {
	db := openTestDB(t)
	incident := seedIncident(t, db)
	svc := NewSampleService(db)

	card, err := svc.RecordSample(incident.ID, models.SlotF1, RecordSampleInput{
		BrokenG:    50,
		IsComplete: true,
	})
	if err != nil {
		t.Fatalf("Failed to record sample: %v", err)
	}
	if card.WeightG != models.DefaultSampleWeightG {
		t.Errorf("Expected default weight %f, got %f", models.DefaultSampleWeightG, card.WeightG)
	}
	if card.DefectPct() != 5 {
		t.Errorf("Expected 5%% defects against default weight, got %f", card.DefectPct())
	}
}

func TestRecordSampleRejectsDefectsOverWeight(t *testing.T) {
	db := openTestDB(t)
	incident := seedIncident(t, db)
	svc := NewSampleService(db)

	// Establish a prior valid state for the slot.
	if _, err := svc.RecordSample(incident.ID, models.SlotB3, RecordSampleInput{
		WeightG:    floatPtr(500),
		BrokenG:    10,
		IsComplete: true,
	}); err != nil {
		t.Fatalf("Failed to record initial sample: %v", err)
	}

	_, err := svc.RecordSample(incident.ID, models.SlotB3, RecordSampleInput{
		WeightG: floatPtr(500),
		BrokenG: 300,
		MoldG:   300,
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Expected invalid argument when defects exceed weight, got %v", err)
	}

	// Defects equal to weight are the accepted boundary.
	if _, err := svc.RecordSample(incident.ID, models.SlotB2, RecordSampleInput{
		WeightG:    floatPtr(500),
		BrokenG:    250,
		MoldG:      250,
		IsComplete: true,
	}); err != nil {
		t.Errorf("Expected defects equal to weight to be accepted, got %v", err)
	}

	// The rejected write left the prior card state untouched.
	var card models.SampleCard
	if err := db.Where("incident_id = ? AND slot = ?", incident.ID, models.SlotB3).First(&card).Error; err != nil {
		t.Fatalf("Failed to reload card: %v", err)
	}
	if card.BrokenG != 10 || card.WeightG != 500 || !card.IsComplete {
		t.Errorf("Expected prior card state preserved, got broken=%f weight=%f complete=%v",
			card.BrokenG, card.WeightG, card.IsComplete)
	}
}

func TestRecordSampleValidation(t *testing.T) {
	db := openTestDB(t)
	incident := seedIncident(t, db)
	svc := NewSampleService(db)

	_, err := svc.RecordSample(incident.ID, "F7", RecordSampleInput{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected not found for unknown slot, got %v", err)
	}

	_, err = svc.RecordSample(9999, models.SlotF1, RecordSampleInput{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected not found for unknown incident, got %v", err)
	}

	_, err = svc.RecordSample(incident.ID, models.SlotF1, RecordSampleInput{WeightG: floatPtr(0)})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected invalid argument for zero weight, got %v", err)
	}

	_, err = svc.RecordSample(incident.ID, models.SlotF1, RecordSampleInput{BrokenG: -1})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected invalid argument for negative defects, got %v", err)
	}
}

func TestRecomputeAggregatesAveragesCompleteCardsOnly(t *testing.T) {
	db := openTestDB(t)
	incident := seedIncident(t, db)
	svc := NewSampleService(db)

	// An incomplete measurement contributes weight sums but no average.
	if _, err := svc.RecordSample(incident.ID, models.SlotF1, RecordSampleInput{
		WeightG: floatPtr(1000),
		BrokenG: 100,
	}); err != nil {
		t.Fatalf("Failed to record incomplete sample: %v", err)
	}

	var reloaded models.Incident
	if err := db.First(&reloaded, incident.ID).Error; err != nil {
		t.Fatalf("Failed to reload incident: %v", err)
	}
	if reloaded.AvgDefectPct != nil {
		t.Errorf("Expected nil average with no complete cards, got %v", *reloaded.AvgDefectPct)
	}
	if reloaded.BrokenG != 100 {
		t.Errorf("Expected broken sum 100, got %f", reloaded.BrokenG)
	}
	// 8 untouched default cards plus the recorded one.
	if reloaded.TotalSampleWeightG != 9000 {
		t.Errorf("Expected total sample weight 9000, got %f", reloaded.TotalSampleWeightG)
	}

	// Two complete cards at 2% and 6% average to 4%.
	if _, err := svc.RecordSample(incident.ID, models.SlotF1, RecordSampleInput{
		WeightG:    floatPtr(1000),
		BrokenG:    20,
		IsComplete: true,
	}); err != nil {
		t.Fatalf("Failed to record sample: %v", err)
	}
	if _, err := svc.RecordSample(incident.ID, models.SlotM1, RecordSampleInput{
		WeightG:    floatPtr(500),
		MoldG:      30,
		IsComplete: true,
	}); err != nil {
		t.Fatalf("Failed to record sample: %v", err)
	}

	if err := db.First(&reloaded, incident.ID).Error; err != nil {
		t.Fatalf("Failed to reload incident: %v", err)
	}
	if reloaded.AvgDefectPct == nil || *reloaded.AvgDefectPct != 4 {
		t.Errorf("Expected average defect pct 4, got %v", reloaded.AvgDefectPct)
	}
}

func TestGetCardsFixedOrder(t *testing.T) {
	db := openTestDB(t)
	incident := seedIncident(t, db)
	svc := NewSampleService(db)

	cards, err := svc.GetCards(incident.ID)
	if err != nil {
		t.Fatalf("Failed to load cards: %v", err)
	}
	if len(cards) != 9 {
		t.Fatalf("Expected 9 cards, got %d", len(cards))
	}
	for i, slot := range models.SampleSlots {
		if cards[i].Slot != slot {
			t.Errorf("Position %d: expected slot %s, got %s", i, slot, cards[i].Slot)
		}
	}
}
