package models

import (
	"time"
)

type ReviewActionType string

const (
	ActionRequestResample ReviewActionType = "REQUEST_RESAMPLE"
	ActionKeepHold        ReviewActionType = "KEEP_HOLD"
	ActionClearHold       ReviewActionType = "CLEAR_HOLD"
	ActionClose           ReviewActionType = "CLOSE"
	ActionAddNote         ReviewActionType = "ADD_NOTE"
)

// ReviewAction is an append-only audit record of a supervisory decision.
type ReviewAction struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	IncidentID  uint             `json:"incidentId" gorm:"not null;index"`
	ActorID     uint             `json:"actorId" gorm:"not null"`
	Actor       *User            `json:"actor,omitempty" gorm:"foreignKey:ActorID"`
	ActorRole   UserRole         `json:"actorRole" gorm:"not null"`
	Action      ReviewActionType `json:"action" gorm:"not null"`
	Notes       string           `json:"notes" gorm:"type:text"`
	TargetSlots []SampleSlot     `json:"targetSlots" gorm:"serializer:json"`
	CreatedAt   time.Time        `json:"createdAt"`
}

func (ReviewAction) TableName() string {
	return "review_actions"
}
