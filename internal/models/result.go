package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	// AssessmentTypeAutomatic marks results produced by automated checks.
	AssessmentTypeAutomatic = "AUTOMATIC"
	// AssessmentTypeManual marks results produced by a human grader.
	AssessmentTypeManual = "MANUAL"
	// AssessmentTypeAutomaticAthena marks results produced by the Athena
	// feedback suggestion system.
	AssessmentTypeAutomaticAthena = "AUTOMATIC_ATHENA"
)

// Result is the grade record for one submission attempt. A result with a
// completion date is submitted and falls under the override rules; without
// one it is a draft the assessor may still edit freely.
type Result struct {
	ID              uint                 `gorm:"primaryKey" json:"id"`
	ParticipationID uint                 `gorm:"not null;index" json:"participation_id"`
	Participation   StudentParticipation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"participation"`
	AssessmentType  string               `gorm:"size:32;not null" json:"assessment_type"`
	CompletionDate  *time.Time           `json:"completion_date"`
	Rated           bool                 `gorm:"not null;default:false" json:"rated"`
	Score           *float64             `json:"score"`
	AssessorID      *uint                `json:"assessor_id"`
	Assessor        *User                `gorm:"foreignKey:AssessorID" json:"assessor,omitempty"`
	Feedback        datatypes.JSON       `gorm:"type:json" json:"feedback"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// IsSubmitted reports whether the result has been finalized by its assessor.
func (r Result) IsSubmitted() bool {
	return r.CompletionDate != nil
}

// HasAssessor reports whether a grader is recorded on the result.
func (r Result) HasAssessor() bool {
	return r.AssessorID != nil
}
