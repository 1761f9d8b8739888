package models

import (
	"time"
)

type SampleSlot string
type SampleGroup string

const (
	GroupFront  SampleGroup = "front"
	GroupMiddle SampleGroup = "middle"
	GroupBack   SampleGroup = "back"
)

const (
	SlotF1 SampleSlot = "F1"
	SlotF2 SampleSlot = "F2"
	SlotF3 SampleSlot = "F3"
	SlotM1 SampleSlot = "M1"
	SlotM2 SampleSlot = "M2"
	SlotM3 SampleSlot = "M3"
	SlotB1 SampleSlot = "B1"
	SlotB2 SampleSlot = "B2"
	SlotB3 SampleSlot = "B3"
)

// SampleSlots is the complete sampling grid. Every incident owns exactly
// one card per slot, created together with the incident.
var SampleSlots = [9]SampleSlot{
	SlotF1, SlotF2, SlotF3,
	SlotM1, SlotM2, SlotM3,
	SlotB1, SlotB2, SlotB3,
}

// Group returns the fixed container section for a slot.
func (s SampleSlot) Group() SampleGroup {
	switch s {
	case SlotF1, SlotF2, SlotF3:
		return GroupFront
	case SlotM1, SlotM2, SlotM3:
		return GroupMiddle
	case SlotB1, SlotB2, SlotB3:
		return GroupBack
	}
	return ""
}

// ValidSampleSlot reports whether s is one of the 9 fixed slots.
func ValidSampleSlot(s SampleSlot) bool {
	return s.Group() != ""
}

// DefaultSampleWeightG is assumed when a sample is recorded without an
// explicit weight.
const DefaultSampleWeightG = 1000.0

type SampleCard struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	IncidentID uint        `json:"incidentId" gorm:"not null;uniqueIndex:idx_incident_slot"`
	Slot       SampleSlot  `json:"slot" gorm:"not null;uniqueIndex:idx_incident_slot;size:2"`
	Group      SampleGroup `json:"group" gorm:"column:slot_group;not null;size:10"`

	WeightG  float64 `json:"weightG" gorm:"not null;default:1000"`
	BrokenG  float64 `json:"brokenG" gorm:"not null;default:0"`
	MoldG    float64 `json:"moldG" gorm:"not null;default:0"`
	ForeignG float64 `json:"foreignG" gorm:"not null;default:0"`
	OtherG   float64 `json:"otherG" gorm:"not null;default:0"`

	WeighingRequired bool   `json:"weighingRequired" gorm:"not null"`
	IsComplete       bool   `json:"isComplete" gorm:"not null;default:false"`
	Notes            string `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (SampleCard) TableName() string {
	return "sample_cards"
}

// TotalDefectsG sums the per-category defect grams on the card.
func (sc *SampleCard) TotalDefectsG() float64 {
	return sc.BrokenG + sc.MoldG + sc.ForeignG + sc.OtherG
}

// DefectPct is the defect share of the sampled weight, in percent.
func (sc *SampleCard) DefectPct() float64 {
	if sc.WeightG <= 0 {
		return 0
	}
	return sc.TotalDefectsG() / sc.WeightG * 100
}
