package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/freightdesk/backend/internal/logger"
	"github.com/freightdesk/backend/internal/models"
	"gorm.io/gorm"
)

// MajorIssueThresholdPct separates partial from major delivery issues.
// The boundary value itself still classifies as partial.
const MajorIssueThresholdPct = 5.0

// ClassifyOutcome maps an average defect percentage to a delivery outcome.
func ClassifyOutcome(avgDefectPct float64) models.DeliveryOutcome {
	if avgDefectPct > MajorIssueThresholdPct {
		return models.OutcomeMajorIssue
	}
	return models.OutcomePartialIssue
}

// OutcomeService writes the supplier delivery scorecard when an incident
// is closed.
type OutcomeService struct {
	db *gorm.DB
}

func NewOutcomeService(db *gorm.DB) *OutcomeService {
	return &OutcomeService{db: db}
}

// Classify upserts the delivery record for the shipment. When the
// delivery was never explicitly confirmed there is no prior record; one
// is created dated today.
func (oc *OutcomeService) Classify(tx *gorm.DB, shipmentID, supplierID uint, supplierName string, avgDefectPct float64) error {
	outcome := ClassifyOutcome(avgDefectPct)

	var record models.SupplierDeliveryRecord
	err := tx.Where("shipment_id = ?", shipmentID).First(&record).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load delivery record: %w", err)
		}
		record = models.SupplierDeliveryRecord{
			ShipmentID:       shipmentID,
			SupplierID:       supplierID,
			SupplierName:     supplierName,
			DeliveryDate:     time.Now(),
			FinalOutcome:     outcome,
			HasQualityIssues: true,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create delivery record: %w", err)
		}
	} else {
		if err := tx.Model(&record).Updates(map[string]interface{}{
			"final_outcome":      outcome,
			"has_quality_issues": true,
			"supplier_name":      supplierName,
		}).Error; err != nil {
			return fmt.Errorf("failed to update delivery record: %w", err)
		}
	}

	logger.WithShipment(shipmentID).Info("Delivery outcome classified", map[string]interface{}{
		"supplier_id":    supplierID,
		"avg_defect_pct": avgDefectPct,
		"outcome":        outcome,
	})
	return nil
}
