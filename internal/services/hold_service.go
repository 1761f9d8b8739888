package services

import (
	"fmt"

	"github.com/freightdesk/backend/internal/logger"
	"github.com/freightdesk/backend/internal/models"
	"gorm.io/gorm"
)

// Hold reasons and source tags written by this subsystem. The source tag
// identifies which workflow last touched the hold columns; concurrent
// writers from other workflows still overwrite (last writer wins).
const (
	HoldSourceQualityIncident = "quality_incident"

	HoldReasonIncidentPending = "quality issue reported - pending incident review"
)

// HoldService is the single authority for a shipment's hold flag.
type HoldService struct {
	db *gorm.DB
}

func NewHoldService(db *gorm.DB) *HoldService {
	return &HoldService{db: db}
}

// Apply puts the shipment on hold. The write is an unconditional
// overwrite executed on the caller's transaction handle.
func (hs *HoldService) Apply(tx *gorm.DB, shipmentID uint, reason, source string) error {
	res := tx.Model(&models.Shipment{}).Where("id = ?", shipmentID).Updates(map[string]interface{}{
		"on_hold":     true,
		"hold_reason": reason,
		"hold_source": source,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to apply hold: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: shipment %d", ErrNotFound, shipmentID)
	}

	logger.WithShipment(shipmentID).Info("Hold applied", map[string]interface{}{
		"reason": reason,
		"source": source,
	})
	return nil
}

// Release clears the hold flag, reason and source.
func (hs *HoldService) Release(tx *gorm.DB, shipmentID uint, source string) error {
	res := tx.Model(&models.Shipment{}).Where("id = ?", shipmentID).Updates(map[string]interface{}{
		"on_hold":     false,
		"hold_reason": nil,
		"hold_source": nil,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to release hold: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: shipment %d", ErrNotFound, shipmentID)
	}

	logger.WithShipment(shipmentID).Info("Hold released", map[string]interface{}{
		"source": source,
	})
	return nil
}
