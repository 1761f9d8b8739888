package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/freightdesk/backend/internal/logger"
	"github.com/freightdesk/backend/internal/models"
	"gorm.io/gorm"
)

// IncidentService owns the incident entity and its status state machine.
type IncidentService struct {
	db    *gorm.DB
	holds *HoldService
}

func NewIncidentService(db *gorm.DB, holds *HoldService) *IncidentService {
	return &IncidentService{
		db:    db,
		holds: holds,
	}
}

type CreateIncidentInput struct {
	ShipmentID   uint               `json:"shipmentId" binding:"required"`
	IssueTypes   []models.IssueType `json:"issueTypes" binding:"required"`
	IssueSubtype *string            `json:"issueSubtype"`
	Description  string             `json:"description"`
	BranchID     *uint              `json:"branchId"`
}

// Create opens a new incident in DRAFT, builds its full 9-slot sample
// grid and puts the shipment on hold, all in one transaction.
func (is *IncidentService) Create(creatorID uint, in CreateIncidentInput) (*models.Incident, error) {
	if len(in.IssueTypes) == 0 {
		return nil, fmt.Errorf("%w: at least one issue type is required", ErrInvalidArgument)
	}
	for _, t := range in.IssueTypes {
		if !models.ValidIssueType(t) {
			return nil, fmt.Errorf("%w: unknown issue type %q", ErrInvalidArgument, t)
		}
	}

	var shipment models.Shipment
	if err := is.db.First(&shipment, in.ShipmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: shipment %d", ErrNotFound, in.ShipmentID)
		}
		return nil, fmt.Errorf("failed to load shipment: %w", err)
	}

	subtype := ""
	if in.IssueSubtype != nil {
		subtype = *in.IssueSubtype
	}
	weighingRequired := models.ComputeWeighingRequired(in.IssueTypes, subtype)

	incident := models.Incident{
		ShipmentID:   in.ShipmentID,
		BranchID:     in.BranchID,
		CreatedBy:    creatorID,
		IssueTypes:   in.IssueTypes,
		IssueSubtype: in.IssueSubtype,
		Description:  in.Description,
		Status:       models.StatusDraft,
	}

	tx := is.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&incident).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create incident: %w", err)
	}

	for _, slot := range models.SampleSlots {
		card := models.SampleCard{
			IncidentID:       incident.ID,
			Slot:             slot,
			Group:            slot.Group(),
			WeightG:          models.DefaultSampleWeightG,
			WeighingRequired: weighingRequired,
		}
		if err := tx.Create(&card).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create sample card %s: %w", slot, err)
		}
	}

	if err := is.holds.Apply(tx, in.ShipmentID, HoldReasonIncidentPending, HoldSourceQualityIncident); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit incident creation: %w", err)
	}

	logger.WithIncident(incident.ID).Info("Incident created", map[string]interface{}{
		"shipment_id":       in.ShipmentID,
		"issue_types":       in.IssueTypes,
		"weighing_required": weighingRequired,
		"created_by":        creatorID,
	})

	return is.Get(incident.ID)
}

// UpdateIncidentInput is a sparse patch; nil fields are left untouched.
type UpdateIncidentInput struct {
	IssueTypes   *[]models.IssueType `json:"issueTypes"`
	IssueSubtype *string             `json:"issueSubtype"`
	Description  *string             `json:"description"`

	MoistureSeen *bool `json:"moistureSeen"`
	BadSmell     *bool `json:"badSmell"`
	TornBagCount *int  `json:"tornBagCount"`
	Condensation *bool `json:"condensation"`

	AffectedQtyMin  *float64 `json:"affectedQtyMin"`
	AffectedQtyMax  *float64 `json:"affectedQtyMax"`
	AffectedQtyMode *float64 `json:"affectedQtyMode"`

	MoisturePct *float64 `json:"moisturePct"`
}

// Update merges the provided fields into a DRAFT or SUBMITTED incident.
// The weighing_required flag is fixed at creation and never recomputed.
func (is *IncidentService) Update(id uint, in UpdateIncidentInput) (*models.Incident, error) {
	var incident models.Incident
	if err := is.db.First(&incident, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: incident %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load incident: %w", err)
	}

	if incident.Status != models.StatusDraft && incident.Status != models.StatusSubmitted {
		return nil, fmt.Errorf("%w: incident in status %s cannot be updated", ErrConflict, incident.Status)
	}

	if in.IssueTypes != nil {
		if len(*in.IssueTypes) == 0 {
			return nil, fmt.Errorf("%w: at least one issue type is required", ErrInvalidArgument)
		}
		for _, t := range *in.IssueTypes {
			if !models.ValidIssueType(t) {
				return nil, fmt.Errorf("%w: unknown issue type %q", ErrInvalidArgument, t)
			}
		}
		incident.IssueTypes = *in.IssueTypes
	}
	if in.IssueSubtype != nil {
		incident.IssueSubtype = in.IssueSubtype
	}
	if in.Description != nil {
		incident.Description = *in.Description
	}
	if in.MoistureSeen != nil {
		incident.MoistureSeen = in.MoistureSeen
	}
	if in.BadSmell != nil {
		incident.BadSmell = in.BadSmell
	}
	if in.TornBagCount != nil {
		incident.TornBagCount = in.TornBagCount
	}
	if in.Condensation != nil {
		incident.Condensation = in.Condensation
	}
	if in.AffectedQtyMin != nil {
		incident.AffectedQtyMin = in.AffectedQtyMin
	}
	if in.AffectedQtyMax != nil {
		incident.AffectedQtyMax = in.AffectedQtyMax
	}
	if in.AffectedQtyMode != nil {
		incident.AffectedQtyMode = in.AffectedQtyMode
	}
	if in.MoisturePct != nil {
		incident.MoisturePct = in.MoisturePct
	}

	if err := is.db.Save(&incident).Error; err != nil {
		return nil, fmt.Errorf("failed to update incident: %w", err)
	}

	return is.Get(id)
}

// Submit moves a DRAFT incident to SUBMITTED. At least one complete
// sample card or one attached media record is required.
func (is *IncidentService) Submit(id uint) (*models.Incident, error) {
	var incident models.Incident
	if err := is.db.First(&incident, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: incident %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load incident: %w", err)
	}

	if incident.Status != models.StatusDraft {
		return nil, fmt.Errorf("%w: only draft incidents can be submitted (status %s)", ErrConflict, incident.Status)
	}

	var completeCards int64
	if err := is.db.Model(&models.SampleCard{}).
		Where("incident_id = ? AND is_complete = ?", id, true).
		Count(&completeCards).Error; err != nil {
		return nil, fmt.Errorf("failed to count sample cards: %w", err)
	}

	var mediaCount int64
	if err := is.db.Model(&models.Media{}).Where("incident_id = ?", id).Count(&mediaCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count media: %w", err)
	}

	if completeCards == 0 && mediaCount == 0 {
		return nil, fmt.Errorf("%w: submit requires at least one completed sample or one media attachment", ErrInvalidArgument)
	}

	now := time.Now()
	if err := is.db.Model(&incident).Updates(map[string]interface{}{
		"status":       models.StatusSubmitted,
		"submitted_at": &now,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to submit incident: %w", err)
	}

	logger.WithIncident(id).Info("Incident submitted", map[string]interface{}{
		"complete_cards": completeCards,
		"media_count":    mediaCount,
	})

	return is.Get(id)
}

// Get loads an incident with its grid, media, audit trail and shipment.
func (is *IncidentService) Get(id uint) (*models.Incident, error) {
	var incident models.Incident
	err := is.db.
		Preload("Shipment").
		Preload("Shipment.Supplier").
		Preload("Branch").
		Preload("SampleCards", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Media").
		Preload("ReviewActions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&incident, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: incident %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load incident: %w", err)
	}
	return &incident, nil
}

// List returns incidents newest-first with optional status/branch filters.
func (is *IncidentService) List(status *models.IncidentStatus, branchID *uint, page, limit int) ([]models.Incident, int64, error) {
	query := is.db.Model(&models.Incident{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if branchID != nil {
		query = query.Where("branch_id = ?", *branchID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count incidents: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var incidents []models.Incident
	err := query.
		Preload("Shipment").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&incidents).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list incidents: %w", err)
	}

	return incidents, total, nil
}

// SummaryStats aggregates incident counts per status plus the overall
// average defect percentage, optionally scoped to a branch.
type SummaryStats struct {
	CountsByStatus map[models.IncidentStatus]int64 `json:"countsByStatus"`
	Total          int64                           `json:"total"`
	AvgDefectPct   *float64                        `json:"avgDefectPct"`
}

func (is *IncidentService) SummaryStats(branchID *uint) (*SummaryStats, error) {
	stats := &SummaryStats{
		CountsByStatus: make(map[models.IncidentStatus]int64),
	}

	scoped := func() *gorm.DB {
		q := is.db.Model(&models.Incident{})
		if branchID != nil {
			q = q.Where("branch_id = ?", *branchID)
		}
		return q
	}

	type statusCount struct {
		Status models.IncidentStatus
		Count  int64
	}
	var rows []statusCount
	if err := scoped().Select("status, count(*) as count").Group("status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count incidents by status: %w", err)
	}
	for _, row := range rows {
		stats.CountsByStatus[row.Status] = row.Count
		stats.Total += row.Count
	}

	var avg sql.NullFloat64
	if err := scoped().Where("avg_defect_pct IS NOT NULL").
		Select("avg(avg_defect_pct)").Scan(&avg).Error; err != nil {
		return nil, fmt.Errorf("failed to average defect percentage: %w", err)
	}
	if avg.Valid {
		stats.AvgDefectPct = &avg.Float64
	}

	return stats, nil
}
