package services

import (
	"errors"
	"testing"

	"github.com/freightdesk/backend/internal/models"
	"gorm.io/gorm"
)

func newReviewService(db *gorm.DB) *ReviewService {
	holds := NewHoldService(db)
	return NewReviewService(db, holds, NewSampleService(db), NewOutcomeService(db))
}

var supervisor = Actor{ID: 7, Role: models.RoleSupervisor}

// submittedIncident builds an incident with one complete sample carrying
// the given defect percentage and moves it to SUBMITTED.
func submittedIncident(t *testing.T, db *gorm.DB, defectPct float64) *models.Incident {
	t.Helper()

	incident := seedIncident(t, db)
	samples := NewSampleService(db)
	if _, err := samples.RecordSample(incident.ID, models.SlotF1, RecordSampleInput{
		WeightG:    floatPtr(1000),
		BrokenG:    defectPct * 10,
		IsComplete: true,
	}); err != nil {
		t.Fatalf("Failed to record sample: %v", err)
	}

	incidents := NewIncidentService(db, NewHoldService(db))
	submitted, err := incidents.Submit(incident.ID)
	if err != nil {
		t.Fatalf("Failed to submit incident: %v", err)
	}
	return submitted
}

func TestReviewForbiddenForOperatorInAnyState(t *testing.T) {
	db := openTestDB(t)
	incident := seedIncident(t, db)
	svc := newReviewService(db)
	operator := Actor{ID: 3, Role: models.RoleOperator}

	statuses := []models.IncidentStatus{
		models.StatusDraft,
		models.StatusSubmitted,
		models.StatusUnderReview,
		models.StatusActionSet,
		models.StatusClosed,
	}
	for _, status := range statuses {
		setIncidentStatus(t, db, incident.ID, status)
		_, err := svc.Review(incident.ID, operator, ReviewInput{Action: models.ActionAddNote})
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Status %s: expected forbidden for operator, got %v", status, err)
		}
	}

	// The role gate fires before existence is checked.
	_, err := svc.Review(9999, operator, ReviewInput{Action: models.ActionAddNote})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected forbidden before lookup of unknown incident, got %v", err)
	}
}

func TestReviewClearHoldReleasesShipment(t *testing.T) {
	db := openTestDB(t)
	incident := submittedIncident(t, db, 2)
	svc := newReviewService(db)

	reviewed, err := svc.Review(incident.ID, supervisor, ReviewInput{
		Action: models.ActionClearHold,
		Notes:  "within tolerance",
	})
	if err != nil {
		t.Fatalf("Failed to clear hold: %v", err)
	}
	if reviewed.Status != models.StatusActionSet {
		t.Errorf("Expected status ACTION_SET, got %s", reviewed.Status)
	}

	var shipment models.Shipment
	if err := db.First(&shipment, incident.ShipmentID).Error; err != nil {
		t.Fatalf("Failed to reload shipment: %v", err)
	}
	if shipment.OnHold {
		t.Error("Expected hold to be released")
	}
	if shipment.HoldReason != nil || shipment.HoldSource != nil {
		t.Errorf("Expected hold reason and source cleared, got %v / %v", shipment.HoldReason, shipment.HoldSource)
	}

	if len(reviewed.ReviewActions) != 1 || reviewed.ReviewActions[0].Action != models.ActionClearHold {
		t.Errorf("Expected one clear_hold audit record, got %v", reviewed.ReviewActions)
	}
}

func TestReviewKeepHoldLeavesShipmentHeld(t *testing.T) {
	db := openTestDB(t)
	incident := submittedIncident(t, db, 2)
	svc := newReviewService(db)

	reviewed, err := svc.Review(incident.ID, supervisor, ReviewInput{Action: models.ActionKeepHold})
	if err != nil {
		t.Fatalf("Failed to keep hold: %v", err)
	}
	if reviewed.Status != models.StatusActionSet {
		t.Errorf("Expected status ACTION_SET, got %s", reviewed.Status)
	}

	var shipment models.Shipment
	if err := db.First(&shipment, incident.ShipmentID).Error; err != nil {
		t.Fatalf("Failed to reload shipment: %v", err)
	}
	if !shipment.OnHold {
		t.Error("Expected shipment to remain on hold")
	}
}

func TestReviewCloseClassifiesOutcome(t *testing.T) {
	tests := []struct {
		name      string
		defectPct float64
		expected  models.DeliveryOutcome
	}{
		{"boundary stays partial", 5.0, models.OutcomePartialIssue},
		{"above boundary is major", 5.01, models.OutcomeMajorIssue},
		{"low defects are partial", 1.5, models.OutcomePartialIssue},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			db := openTestDB(t)
			incident := submittedIncident(t, db, test.defectPct)
			svc := newReviewService(db)

			if _, err := svc.Review(incident.ID, supervisor, ReviewInput{Action: models.ActionKeepHold}); err != nil {
				t.Fatalf("Failed to set action: %v", err)
			}

			closed, err := svc.Review(incident.ID, supervisor, ReviewInput{Action: models.ActionClose})
			if err != nil {
				t.Fatalf("Failed to close incident: %v", err)
			}
			if closed.Status != models.StatusClosed {
				t.Errorf("Expected status CLOSED, got %s", closed.Status)
			}
			if closed.ClosedAt == nil {
				t.Error("Expected closed_at to be set")
			}

			var record models.SupplierDeliveryRecord
			if err := db.Where("shipment_id = ?", incident.ShipmentID).First(&record).Error; err != nil {
				t.Fatalf("Failed to load delivery record: %v", err)
			}
			if record.FinalOutcome != test.expected {
				t.Errorf("Expected outcome %s, got %s", test.expected, record.FinalOutcome)
			}
			if !record.HasQualityIssues {
				t.Error("Expected quality issues flag on delivery record")
			}
			if record.DeliveryDate.IsZero() {
				t.Error("Expected delivery date to be set on created record")
			}
		})
	}
}

func TestReviewCloseUpdatesExistingDeliveryRecord(t *testing.T) {
	db := openTestDB(t)
	incident := submittedIncident(t, db, 8)
	svc := newReviewService(db)

	existing := models.SupplierDeliveryRecord{
		ShipmentID:   incident.ShipmentID,
		SupplierID:   incident.Shipment.SupplierID,
		SupplierName: "stale name",
		FinalOutcome: models.OutcomePartialIssue,
	}
	if err := db.Create(&existing).Error; err != nil {
		t.Fatalf("Failed to seed delivery record: %v", err)
	}

	if _, err := svc.Review(incident.ID, supervisor, ReviewInput{Action: models.ActionKeepHold}); err != nil {
		t.Fatalf("Failed to set action: %v", err)
	}
	if _, err := svc.Review(incident.ID, supervisor, ReviewInput{Action: models.ActionClose}); err != nil {
		t.Fatalf("Failed to close incident: %v", err)
	}

	var count int64
	if err := db.Model(&models.SupplierDeliveryRecord{}).Where("shipment_id = ?", incident.ShipmentID).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count delivery records: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected one delivery record per shipment, got %d", count)
	}

	var record models.SupplierDeliveryRecord
	if err := db.First(&record, existing.ID).Error; err != nil {
		t.Fatalf("Failed to reload delivery record: %v", err)
	}
	if record.FinalOutcome != models.OutcomeMajorIssue {
		t.Errorf("Expected record reclassified as major_issue, got %s", record.FinalOutcome)
	}
	if !record.HasQualityIssues {
		t.Error("Expected quality issues flag after close")
	}
}

func TestReviewRequestResampleResetsTargets(t *testing.T) {
	db := openTestDB(t)
	incident := submittedIncident(t, db, 3)
	svc := newReviewService(db)

	reviewed, err := svc.Review(incident.ID, supervisor, ReviewInput{
		Action:      models.ActionRequestResample,
		TargetSlots: []models.SampleSlot{models.SlotF1},
	})
	if err != nil {
		t.Fatalf("Failed to request resample: %v", err)
	}
	if reviewed.Status != models.StatusUnderReview {
		t.Errorf("Expected status UNDER_REVIEW, got %s", reviewed.Status)
	}

	var card models.SampleCard
	if err := db.Where("incident_id = ? AND slot = ?", incident.ID, models.SlotF1).First(&card).Error; err != nil {
		t.Fatalf("Failed to reload card: %v", err)
	}
	if card.IsComplete {
		t.Error("Expected targeted card to be marked incomplete")
	}

	// No complete cards remain, so the aggregate average goes null.
	if reviewed.AvgDefectPct != nil {
		t.Errorf("Expected nil average after resample reset, got %v", *reviewed.AvgDefectPct)
	}
}

func TestReviewAddNoteIsAuditOnly(t *testing.T) {
	db := openTestDB(t)
	incident := submittedIncident(t, db, 3)
	svc := newReviewService(db)

	reviewed, err := svc.Review(incident.ID, supervisor, ReviewInput{
		Action: models.ActionAddNote,
		Notes:  "photos requested from the dock team",
	})
	if err != nil {
		t.Fatalf("Failed to add note: %v", err)
	}
	if reviewed.Status != models.StatusSubmitted {
		t.Errorf("Expected status unchanged, got %s", reviewed.Status)
	}
	if len(reviewed.ReviewActions) != 1 || reviewed.ReviewActions[0].Notes != "photos requested from the dock team" {
		t.Errorf("Expected one note audit record, got %v", reviewed.ReviewActions)
	}
}

func TestReviewRejectsUnknownAction(t *testing.T) {
	db := openTestDB(t)
	incident := submittedIncident(t, db, 3)
	svc := newReviewService(db)

	_, err := svc.Review(incident.ID, supervisor, ReviewInput{Action: "ESCALATE"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected invalid argument for unknown action, got %v", err)
	}
}

func TestReviewTransitionConflicts(t *testing.T) {
	db := openTestDB(t)
	incident := seedIncident(t, db)
	svc := newReviewService(db)

	tests := []struct {
		name   string
		status models.IncidentStatus
		action models.ReviewActionType
	}{
		{"hold decision on draft", models.StatusDraft, models.ActionClearHold},
		{"hold decision on closed", models.StatusClosed, models.ActionKeepHold},
		{"close before action set", models.StatusSubmitted, models.ActionClose},
		{"close a closed incident", models.StatusClosed, models.ActionClose},
		{"resample a closed incident", models.StatusClosed, models.ActionRequestResample},
	}

	for _, test := range tests {
		setIncidentStatus(t, db, incident.ID, test.status)
		_, err := svc.Review(incident.ID, supervisor, ReviewInput{Action: test.action})
		if !errors.Is(err, ErrConflict) {
			t.Errorf("%s: expected conflict, got %v", test.name, err)
		}
	}

	_, err := svc.Review(9999, supervisor, ReviewInput{Action: models.ActionAddNote})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected not found for unknown incident, got %v", err)
	}
}
