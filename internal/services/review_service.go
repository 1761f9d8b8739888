package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/freightdesk/backend/internal/logger"
	"github.com/freightdesk/backend/internal/models"
	"gorm.io/gorm"
)

// Actor is the already-authenticated identity issuing a review action.
type Actor struct {
	ID   uint
	Role models.UserRole
}

type ReviewInput struct {
	Action      models.ReviewActionType `json:"action" binding:"required"`
	Notes       string                  `json:"notes"`
	TargetSlots []models.SampleSlot     `json:"targetSlots"`
}

// ReviewService processes supervisory decisions: one audit record plus
// the action's side effects, all in a single transaction.
type ReviewService struct {
	db       *gorm.DB
	holds    *HoldService
	samples  *SampleService
	outcomes *OutcomeService
}

func NewReviewService(db *gorm.DB, holds *HoldService, samples *SampleService, outcomes *OutcomeService) *ReviewService {
	return &ReviewService{
		db:       db,
		holds:    holds,
		samples:  samples,
		outcomes: outcomes,
	}
}

// Review applies one review action to an incident. The role gate runs
// before any state is read so unauthorized actors learn nothing about
// the incident.
func (rs *ReviewService) Review(incidentID uint, actor Actor, in ReviewInput) (*models.Incident, error) {
	if !actor.Role.IsPrivileged() {
		return nil, fmt.Errorf("%w: role %s may not review incidents", ErrForbidden, actor.Role)
	}

	var incident models.Incident
	err := rs.db.Preload("Shipment").Preload("Shipment.Supplier").First(&incident, incidentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: incident %d", ErrNotFound, incidentID)
		}
		return nil, fmt.Errorf("failed to load incident: %w", err)
	}

	if err := rs.checkTransition(&incident, in.Action); err != nil {
		return nil, err
	}

	tx := rs.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	audit := models.ReviewAction{
		IncidentID:  incidentID,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		Action:      in.Action,
		Notes:       in.Notes,
		TargetSlots: in.TargetSlots,
	}
	if err := tx.Create(&audit).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to record review action: %w", err)
	}

	updates := map[string]interface{}{}

	switch in.Action {
	case models.ActionClearHold:
		if err := rs.holds.Release(tx, incident.ShipmentID, HoldSourceQualityIncident); err != nil {
			tx.Rollback()
			return nil, err
		}
		updates["status"] = models.StatusActionSet

	case models.ActionKeepHold:
		updates["status"] = models.StatusActionSet

	case models.ActionClose:
		now := time.Now()
		updates["status"] = models.StatusClosed
		updates["closed_at"] = &now

		avgDefectPct := 0.0
		if incident.AvgDefectPct != nil {
			avgDefectPct = *incident.AvgDefectPct
		}
		var supplierID uint
		supplierName := ""
		if incident.Shipment != nil {
			supplierID = incident.Shipment.SupplierID
			supplierName = incident.Shipment.Supplier.Name
		}
		if err := rs.outcomes.Classify(tx, incident.ShipmentID, supplierID, supplierName, avgDefectPct); err != nil {
			tx.Rollback()
			return nil, err
		}

	case models.ActionRequestResample:
		if len(in.TargetSlots) > 0 {
			if err := tx.Model(&models.SampleCard{}).
				Where("incident_id = ? AND slot IN ?", incidentID, in.TargetSlots).
				Update("is_complete", false).Error; err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("failed to reset sample cards: %w", err)
			}
			if err := rs.samples.RecomputeAggregates(tx, incidentID); err != nil {
				tx.Rollback()
				return nil, err
			}
		}
		updates["status"] = models.StatusUnderReview

	case models.ActionAddNote:
		// Audit record only.

	default:
		tx.Rollback()
		return nil, fmt.Errorf("%w: unknown review action %q", ErrInvalidArgument, in.Action)
	}

	if len(updates) > 0 {
		if err := tx.Model(&models.Incident{}).Where("id = ?", incidentID).Updates(updates).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to update incident status: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit review action: %w", err)
	}

	logger.WithIncident(incidentID).Info("Review action processed", map[string]interface{}{
		"action":     in.Action,
		"actor_id":   actor.ID,
		"actor_role": actor.Role,
	})

	var reloaded models.Incident
	err = rs.db.
		Preload("Shipment").
		Preload("SampleCards", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("ReviewActions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&reloaded, incidentID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to reload incident: %w", err)
	}
	return &reloaded, nil
}

// checkTransition enforces the observed status machine: hold decisions
// from SUBMITTED/UNDER_REVIEW, close from ACTION_SET, resample from any
// active state. Notes may be added at any time.
func (rs *ReviewService) checkTransition(incident *models.Incident, action models.ReviewActionType) error {
	switch action {
	case models.ActionClearHold, models.ActionKeepHold:
		if incident.Status != models.StatusSubmitted && incident.Status != models.StatusUnderReview {
			return fmt.Errorf("%w: cannot decide hold for incident in status %s", ErrConflict, incident.Status)
		}
	case models.ActionClose:
		if incident.Status != models.StatusActionSet {
			return fmt.Errorf("%w: cannot close incident in status %s", ErrConflict, incident.Status)
		}
	case models.ActionRequestResample:
		if incident.Status == models.StatusClosed {
			return fmt.Errorf("%w: cannot request resample on a closed incident", ErrConflict)
		}
	case models.ActionAddNote:
		// Always allowed.
	default:
		return fmt.Errorf("%w: unknown review action %q", ErrInvalidArgument, action)
	}
	return nil
}
