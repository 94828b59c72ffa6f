package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gradeflow/assess-api/internal/models"
	"github.com/gradeflow/assess-api/internal/repository"
)

func TestOverrideEligibilityForAssessor(t *testing.T) {
	db := setupTestDB(t)
	sc := seedAssessment(t, db)
	svc := newAssessmentService(db)

	view, err := svc.OverrideEligibility(context.Background(), sc.result.ID, sc.assessor.ID)
	require.NoError(t, err)
	require.Equal(t, sc.result.ID, view.ResultID)
	require.True(t, view.AllowedAssessor)
	require.True(t, view.AllowedToOverride, "no due date leaves the override window open")
	require.False(t, view.Instructor)
}

func TestOverrideEligibilityAfterDueDate(t *testing.T) {
	db := setupTestDB(t)
	sc := seedAssessment(t, db)
	due := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&models.Exercise{}).Where("id = ?", sc.exercise.ID).Update("assessment_due_date", due).Error)
	svc := newAssessmentService(db)

	view, err := svc.OverrideEligibility(context.Background(), sc.result.ID, sc.assessor.ID)
	require.NoError(t, err)
	require.True(t, view.AllowedAssessor)
	require.False(t, view.AllowedToOverride)

	view, err = svc.OverrideEligibility(context.Background(), sc.result.ID, sc.instructor.ID)
	require.NoError(t, err)
	require.True(t, view.AllowedToOverride)
	require.True(t, view.Instructor)
}

func TestOverrideEligibilityRejectsStudents(t *testing.T) {
	db := setupTestDB(t)
	sc := seedAssessment(t, db)
	svc := newAssessmentService(db)

	_, err := svc.OverrideEligibility(context.Background(), sc.result.ID, sc.student.ID)
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestOverrideEligibilityUnknownResult(t *testing.T) {
	db := setupTestDB(t)
	sc := seedAssessment(t, db)
	svc := newAssessmentService(db)

	_, err := svc.OverrideEligibility(context.Background(), sc.result.ID+9999, sc.assessor.ID)
	require.ErrorIs(t, err, ErrResultNotFound)

	_, err = svc.OverrideEligibility(context.Background(), sc.result.ID, 99999)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func newAssessmentService(db *gorm.DB) AssessmentService {
	return NewAssessmentService(
		repository.NewResultRepository(db),
		repository.NewUserRepository(db),
		NewAssessmentEligibilityService(),
		NewAuthorizationService(),
		testLogger(),
	)
}
