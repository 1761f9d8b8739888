package models

import (
	"time"

	"gorm.io/gorm"
)

// Shipment is a received consignment. The hold columns are written only
// through the hold service; every mutation records its source tag.
type Shipment struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	RefCode    string         `json:"refCode" gorm:"uniqueIndex;not null"`
	SupplierID uint           `json:"supplierId" gorm:"not null;index"`
	Supplier   Supplier       `json:"supplier" gorm:"foreignKey:SupplierID"`
	BranchID   *uint          `json:"branchId"`
	Branch     *Branch        `json:"branch,omitempty" gorm:"foreignKey:BranchID"`
	OnHold     bool           `json:"onHold" gorm:"not null;default:false"`
	HoldReason *string        `json:"holdReason"`
	HoldSource *string        `json:"holdSource"`
	ArrivedAt  *time.Time     `json:"arrivedAt"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Shipment) TableName() string {
	return "shipments"
}
