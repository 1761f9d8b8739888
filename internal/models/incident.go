package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type IncidentStatus string

const (
	StatusDraft       IncidentStatus = "DRAFT"
	StatusSubmitted   IncidentStatus = "SUBMITTED"
	StatusUnderReview IncidentStatus = "UNDER_REVIEW"
	StatusActionSet   IncidentStatus = "ACTION_SET"
	StatusClosed      IncidentStatus = "CLOSED"
)

type IssueType string

const (
	IssueBroken        IssueType = "broken"
	IssueMold          IssueType = "mold"
	IssueMoisture      IssueType = "moisture"
	IssueForeignMatter IssueType = "foreign_matter"
	IssueWrongSpec     IssueType = "wrong_spec"
	IssueDamaged       IssueType = "damaged"
)

// ValidIssueType reports whether t belongs to the closed issue-type set.
func ValidIssueType(t IssueType) bool {
	switch t {
	case IssueBroken, IssueMold, IssueMoisture, IssueForeignMatter, IssueWrongSpec, IssueDamaged:
		return true
	}
	return false
}

// Subtypes of "damaged" that still require quantitative weighing.
const (
	SubtypeWetExternal = "wet_external"
	SubtypeDirty       = "dirty"
	SubtypeTornBag     = "torn_bag"
)

// ComputeWeighingRequired decides once, at incident creation, whether
// defect-weight sampling applies. Weighing is skipped only when every
// issue type is "damaged" and the subtype is cosmetic (not wet_external,
// dirty or torn_bag).
func ComputeWeighingRequired(types []IssueType, subtype string) bool {
	for _, t := range types {
		if t != IssueDamaged {
			return true
		}
	}
	switch subtype {
	case SubtypeWetExternal, SubtypeDirty, SubtypeTornBag:
		return true
	}
	return false
}

type Incident struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ShipmentID uint      `json:"shipmentId" gorm:"not null;index"`
	Shipment   *Shipment `json:"shipment,omitempty" gorm:"foreignKey:ShipmentID"`
	BranchID   *uint     `json:"branchId" gorm:"index"`
	Branch     *Branch   `json:"branch,omitempty" gorm:"foreignKey:BranchID"`
	CreatedBy  uint      `json:"createdBy" gorm:"not null"`
	Creator    *User     `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`

	IssueTypes   []IssueType `json:"issueTypes" gorm:"serializer:json;not null"`
	IssueSubtype *string     `json:"issueSubtype"`
	Description  string      `json:"description" gorm:"type:text"`

	// Container condition as observed at opening.
	MoistureSeen *bool `json:"moistureSeen"`
	BadSmell     *bool `json:"badSmell"`
	TornBagCount *int  `json:"tornBagCount"`
	Condensation *bool `json:"condensation"`

	// Operator's rough impact estimate, independent of measured samples.
	AffectedQtyMin  *float64 `json:"affectedQtyMin"`
	AffectedQtyMax  *float64 `json:"affectedQtyMax"`
	AffectedQtyMode *float64 `json:"affectedQtyMode"`

	// Aggregates over the sample grid, recomputed on every sample write.
	TotalSampleWeightG float64  `json:"totalSampleWeightG"`
	BrokenG            float64  `json:"brokenG"`
	MoldG              float64  `json:"moldG"`
	ForeignG           float64  `json:"foreignG"`
	OtherG             float64  `json:"otherG"`
	MoisturePct        *float64 `json:"moisturePct"`
	AvgDefectPct       *float64 `json:"avgDefectPct"`

	Status      IncidentStatus `json:"status" gorm:"not null;default:'DRAFT'"`
	SubmittedAt *time.Time     `json:"submittedAt"`
	ClosedAt    *time.Time     `json:"closedAt"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	SampleCards   []SampleCard   `json:"sampleCards,omitempty" gorm:"foreignKey:IncidentID"`
	Media         []Media        `json:"media,omitempty" gorm:"foreignKey:IncidentID"`
	ReviewActions []ReviewAction `json:"reviewActions,omitempty" gorm:"foreignKey:IncidentID"`
}

func (Incident) TableName() string {
	return "quality_incidents"
}

func (i *Incident) Validate() error {
	if i.ShipmentID == 0 {
		return fmt.Errorf("shipment ID is required")
	}
	if len(i.IssueTypes) == 0 {
		return fmt.Errorf("at least one issue type is required")
	}
	for _, t := range i.IssueTypes {
		if !ValidIssueType(t) {
			return fmt.Errorf("unknown issue type %q", t)
		}
	}
	return nil
}
