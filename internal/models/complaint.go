package models

import "time"

const (
	// ComplaintTypeComplaint is a formal objection that must be reviewed by a
	// different grader than the original assessor.
	ComplaintTypeComplaint = "COMPLAINT"
	// ComplaintTypeMoreFeedback asks the original assessor for clarification
	// without contesting the grade.
	ComplaintTypeMoreFeedback = "MORE_FEEDBACK"
)

// Complaint is a student's formal objection to a result. Once Accepted is
// non-nil the complaint is terminal and its response can no longer change.
type Complaint struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ResultID      uint       `gorm:"not null;uniqueIndex:idx_complaints_result_type" json:"result_id"`
	Result        Result     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"result"`
	ComplaintType string     `gorm:"size:32;not null;uniqueIndex:idx_complaints_result_type" json:"complaint_type"`
	ComplaintText string     `gorm:"type:text" json:"complaint_text"`
	Accepted      *bool      `json:"accepted"`
	SubmittedTime *time.Time `json:"submitted_time"`
	ParticipantID uint       `gorm:"not null;index" json:"participant_id"`
	Participant   User       `gorm:"foreignKey:ParticipantID" json:"participant"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsResolved reports whether the complaint reached its terminal state.
func (c Complaint) IsResolved() bool {
	return c.Accepted != nil
}
