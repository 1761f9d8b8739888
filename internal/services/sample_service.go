package services

import (
	"errors"
	"fmt"

	"github.com/freightdesk/backend/internal/logger"
	"github.com/freightdesk/backend/internal/models"
	"gorm.io/gorm"
)

// SampleService owns the 9-slot sampling grid. Cards are only ever
// mutated through RecordSample so the defects-vs-weight invariant holds
// at all times.
type SampleService struct {
	db *gorm.DB
}

func NewSampleService(db *gorm.DB) *SampleService {
	return &SampleService{db: db}
}

// RecordSampleInput carries one measurement for a single slot. A nil
// weight means the default sample weight applies.
type RecordSampleInput struct {
	WeightG    *float64 `json:"weightG"`
	BrokenG    float64  `json:"brokenG"`
	MoldG      float64  `json:"moldG"`
	ForeignG   float64  `json:"foreignG"`
	OtherG     float64  `json:"otherG"`
	IsComplete bool     `json:"isComplete"`
	Notes      *string  `json:"notes"`
}

// RecordSample validates and stores one sample measurement, then
// recomputes the incident's aggregate fields in the same transaction.
// A measurement whose defects exceed the sample weight is rejected and
// the prior card state is left untouched.
func (ss *SampleService) RecordSample(incidentID uint, slot models.SampleSlot, in RecordSampleInput) (*models.SampleCard, error) {
	if !models.ValidSampleSlot(slot) {
		return nil, fmt.Errorf("%w: sample slot %q", ErrNotFound, slot)
	}

	weight := models.DefaultSampleWeightG
	if in.WeightG != nil {
		weight = *in.WeightG
	}
	if weight <= 0 {
		return nil, fmt.Errorf("%w: sample weight must be positive", ErrInvalidArgument)
	}
	if in.BrokenG < 0 || in.MoldG < 0 || in.ForeignG < 0 || in.OtherG < 0 {
		return nil, fmt.Errorf("%w: defect weights must not be negative", ErrInvalidArgument)
	}

	totalDefects := in.BrokenG + in.MoldG + in.ForeignG + in.OtherG
	if totalDefects > weight {
		return nil, fmt.Errorf("%w: total defects %.1fg exceed sample weight %.1fg", ErrInvalidArgument, totalDefects, weight)
	}

	tx := ss.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var card models.SampleCard
	if err := tx.Where("incident_id = ? AND slot = ?", incidentID, slot).First(&card).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: sample card %s of incident %d", ErrNotFound, slot, incidentID)
		}
		return nil, fmt.Errorf("failed to load sample card: %w", err)
	}

	card.WeightG = weight
	card.BrokenG = in.BrokenG
	card.MoldG = in.MoldG
	card.ForeignG = in.ForeignG
	card.OtherG = in.OtherG
	card.IsComplete = in.IsComplete
	if in.Notes != nil {
		card.Notes = *in.Notes
	}

	if err := tx.Save(&card).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to save sample card: %w", err)
	}

	if err := ss.RecomputeAggregates(tx, incidentID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit sample update: %w", err)
	}

	logger.WithIncident(incidentID).Info("Sample recorded", map[string]interface{}{
		"slot":          slot,
		"weight_g":      weight,
		"total_defects": totalDefects,
		"is_complete":   in.IsComplete,
	})

	return &card, nil
}

// RecomputeAggregates refreshes the incident's measurement summary from
// its 9 cards. The average defect percentage covers only cards marked
// complete and is null while none are.
func (ss *SampleService) RecomputeAggregates(tx *gorm.DB, incidentID uint) error {
	var cards []models.SampleCard
	if err := tx.Where("incident_id = ?", incidentID).Find(&cards).Error; err != nil {
		return fmt.Errorf("failed to load sample cards: %w", err)
	}

	var totalWeight, broken, mold, foreign, other float64
	var pctSum float64
	completeCount := 0

	for i := range cards {
		card := &cards[i]
		totalWeight += card.WeightG
		broken += card.BrokenG
		mold += card.MoldG
		foreign += card.ForeignG
		other += card.OtherG
		if card.IsComplete {
			pctSum += card.DefectPct()
			completeCount++
		}
	}

	var avgDefectPct *float64
	if completeCount > 0 {
		avg := pctSum / float64(completeCount)
		avgDefectPct = &avg
	}

	if err := tx.Model(&models.Incident{}).Where("id = ?", incidentID).Updates(map[string]interface{}{
		"total_sample_weight_g": totalWeight,
		"broken_g":              broken,
		"mold_g":                mold,
		"foreign_g":             foreign,
		"other_g":               other,
		"avg_defect_pct":        avgDefectPct,
	}).Error; err != nil {
		return fmt.Errorf("failed to update incident aggregates: %w", err)
	}

	return nil
}

// GetCards returns the incident's grid in fixed slot order.
func (ss *SampleService) GetCards(incidentID uint) ([]models.SampleCard, error) {
	var cards []models.SampleCard
	if err := ss.db.Where("incident_id = ?", incidentID).Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to load sample cards: %w", err)
	}

	ordered := make([]models.SampleCard, 0, len(cards))
	for _, slot := range models.SampleSlots {
		for i := range cards {
			if cards[i].Slot == slot {
				ordered = append(ordered, cards[i])
				break
			}
		}
	}
	return ordered, nil
}
