package service

import (
	"time"

	"github.com/gradeflow/assess-api/internal/models"
)

// AssessmentEligibilityService decides whether a user may create or override
// an assessment for a participation. Both checks are pure functions of their
// inputs and the injected clock; they never touch the database.
type AssessmentEligibilityService interface {
	IsAllowedAssessor(result *models.Result, exercise models.Exercise, participation models.StudentParticipation, user models.User) bool
	IsAllowedToOverride(result *models.Result, exercise models.Exercise, participation models.StudentParticipation, user models.User, isAtLeastInstructor bool) bool
}

type assessmentEligibilityService struct {
	now func() time.Time
}

// NewAssessmentEligibilityService constructs the eligibility engine.
func NewAssessmentEligibilityService() AssessmentEligibilityService {
	return &assessmentEligibilityService{now: time.Now}
}

// IsAllowedAssessor reports whether the user may act as assessor for the
// given (possibly absent) result. In team mode only the tutor owning the
// team qualifies. For individual exercises anyone qualifies for the first
// assessment; once a result exists its recorded assessor keeps exclusive
// rights until an instructor steps in.
func (s *assessmentEligibilityService) IsAllowedAssessor(result *models.Result, exercise models.Exercise, participation models.StudentParticipation, user models.User) bool {
	if exercise.TeamMode {
		return participation.IsOwnedBy(user.ID)
	}
	if result == nil {
		return true
	}

	return !result.HasAssessor() || *result.AssessorID == user.ID
}

// IsAllowedToOverride reports whether the user may create a new result or
// override the existing one right now.
//
// Drafts stay freely editable by the allowed assessor regardless of
// deadlines; the due date exists to stop late changes, not ongoing grading.
// Instructors are never time-boxed. A submitted result becomes immutable to
// its grader once the relevant due date has passed.
func (s *assessmentEligibilityService) IsAllowedToOverride(result *models.Result, exercise models.Exercise, participation models.StudentParticipation, user models.User, isAtLeastInstructor bool) bool {
	now := s.now()
	allowedAssessor := s.IsAllowedAssessor(result, exercise, participation, user)

	if result == nil {
		if exercise.ExamExercise && !isAtLeastInstructor {
			// Grading of exam submissions only opens once the last student
			// has finished working and closes when results go public. The
			// publish instant itself counts as closed.
			if exercise.ExamEndDate != nil && now.Before(*exercise.ExamEndDate) {
				return false
			}
			if exercise.ExamPublishResultsDate != nil && !now.Before(*exercise.ExamPublishResultsDate) {
				return false
			}
		}
		return allowedAssessor || isAtLeastInstructor
	}

	if !result.IsSubmitted() {
		return allowedAssessor || isAtLeastInstructor
	}

	if isAtLeastInstructor {
		return true
	}

	due := exercise.RelevantDueDate()

	return allowedAssessor && (due == nil || now.Before(*due))
}
