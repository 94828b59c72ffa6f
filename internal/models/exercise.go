package models

import "time"

// Exercise is a gradable unit inside a course. Exam exercises carry the exam
// scheduling dates instead of a course assessment due date.
type Exercise struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	CourseID uint   `gorm:"not null;index" json:"course_id"`
	Course   Course `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course"`
	Title    string `gorm:"size:255;not null" json:"title"`
	// TeamMode means submissions belong to a team owned by a single tutor.
	TeamMode bool `gorm:"not null;default:false" json:"team_mode"`
	// AssessmentDueDate closes the grading window for course exercises.
	AssessmentDueDate *time.Time `json:"assessment_due_date"`
	ExamExercise      bool       `gorm:"not null;default:false" json:"exam_exercise"`
	// ExamEndDate is the latest individual working end across all students.
	ExamEndDate *time.Time `json:"exam_end_date"`
	// ExamPublishResultsDate closes the grading window for exam exercises.
	ExamPublishResultsDate *time.Time `json:"exam_publish_results_date"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// RelevantDueDate returns the deadline that gates overriding a submitted
// result: the publish-results date for exam exercises, the assessment due
// date otherwise. Nil means there is no deadline.
func (e Exercise) RelevantDueDate() *time.Time {
	if e.ExamExercise {
		return e.ExamPublishResultsDate
	}
	return e.AssessmentDueDate
}
