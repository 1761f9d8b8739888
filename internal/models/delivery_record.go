package models

import (
	"time"
)

type DeliveryOutcome string

const (
	OutcomePartialIssue DeliveryOutcome = "partial_issue"
	OutcomeMajorIssue   DeliveryOutcome = "major_issue"
)

// SupplierDeliveryRecord is the supplier scorecard row for one shipment,
// upserted when an incident is closed.
type SupplierDeliveryRecord struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	ShipmentID       uint            `json:"shipmentId" gorm:"not null;uniqueIndex"`
	SupplierID       uint            `json:"supplierId" gorm:"not null;index"`
	SupplierName     string          `json:"supplierName"`
	DeliveryDate     time.Time       `json:"deliveryDate"`
	FinalOutcome     DeliveryOutcome `json:"finalOutcome"`
	HasQualityIssues bool            `json:"hasQualityIssues" gorm:"not null;default:false"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func (SupplierDeliveryRecord) TableName() string {
	return "supplier_delivery_records"
}
