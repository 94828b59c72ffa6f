package models

import "time"

// Course groups exercises and carries the complaint configuration that
// applies to all of them.
type Course struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Title               string    `gorm:"size:255;not null" json:"title"`
	ShortName           string    `gorm:"size:64" json:"short_name"`
	InstructorGroupName string    `gorm:"size:128" json:"instructor_group_name"`
	TutorGroupName      string    `gorm:"size:128" json:"tutor_group_name"`
	// MaxComplaintTextLimit bounds the length of a student's complaint text.
	MaxComplaintTextLimit int `gorm:"not null;default:2000" json:"max_complaint_text_limit"`
	// MaxComplaintResponseTextLimit bounds the length of a reviewer's response.
	MaxComplaintResponseTextLimit int `gorm:"not null;default:2000" json:"max_complaint_response_text_limit"`
	// MaxComplaintTimeDays is the window after a result is finalized during
	// which students may still file a complaint.
	MaxComplaintTimeDays int       `gorm:"not null;default:7" json:"max_complaint_time_days"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
