package models

import (
	"time"

	"gorm.io/gorm"
)

type Supplier struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"not null"`
	Code         string         `json:"code" gorm:"uniqueIndex;not null"`
	ContactEmail string         `json:"contactEmail"`
	Country      string         `json:"country"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Supplier) TableName() string {
	return "suppliers"
}

// Branch is a warehouse/office unit used for incident routing.
type Branch struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Code      string    `json:"code" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Branch) TableName() string {
	return "branches"
}
