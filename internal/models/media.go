package models

import (
	"time"
)

type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
)

// Media references an evidentiary file attached to an incident. Rows are
// hard-deleted on removal together with the stored file.
type Media struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	IncidentID   uint        `json:"incidentId" gorm:"not null;index"`
	SampleCardID *uint       `json:"sampleCardId"`
	SampleCard   *SampleCard `json:"sampleCard,omitempty" gorm:"foreignKey:SampleCardID"`
	Kind         MediaKind   `json:"kind" gorm:"not null"`
	Slot         string      `json:"slot" gorm:"not null"`
	FilePath     string      `json:"-" gorm:"not null"`
	FileURL      string      `json:"fileUrl" gorm:"not null"`
	Watermark    *string     `json:"watermark"`
	UploadedBy   uint        `json:"uploadedBy" gorm:"not null"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (Media) TableName() string {
	return "incident_media"
}
