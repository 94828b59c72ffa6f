package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gradeflow/assess-api/internal/dto"
	"github.com/gradeflow/assess-api/internal/repository"
)

// AssessmentService answers override-eligibility questions for concrete
// results on behalf of the HTTP layer.
type AssessmentService interface {
	OverrideEligibility(ctx context.Context, resultID, userID uint) (dto.OverrideEligibilityView, error)
}

type assessmentService struct {
	results     repository.ResultRepository
	users       repository.UserRepository
	eligibility AssessmentEligibilityService
	authz       AuthorizationService
	logger      zerolog.Logger
}

// NewAssessmentService constructs an AssessmentService instance.
func NewAssessmentService(results repository.ResultRepository, users repository.UserRepository, eligibility AssessmentEligibilityService, authz AuthorizationService, logger zerolog.Logger) AssessmentService {
	return &assessmentService{
		results:     results,
		users:       users,
		eligibility: eligibility,
		authz:       authz,
		logger:      logger.With().Str("component", "assessment_service").Logger(),
	}
}

func (s *assessmentService) OverrideEligibility(ctx context.Context, resultID, userID uint) (dto.OverrideEligibilityView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.OverrideEligibilityView{}, ErrUserNotFound
		}
		return dto.OverrideEligibilityView{}, err
	}

	result, err := s.results.GetByID(ctx, resultID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.OverrideEligibilityView{}, ErrResultNotFound
		}
		return dto.OverrideEligibilityView{}, err
	}

	participation := result.Participation
	exercise := participation.Exercise
	instructor := s.authz.IsAtLeastInstructor(user, exercise.Course)
	if !s.authz.IsAtLeastTutor(user, exercise.Course) {
		return dto.OverrideEligibilityView{}, ErrNotAuthorized
	}

	return dto.OverrideEligibilityView{
		ResultID:          result.ID,
		AllowedToOverride: s.eligibility.IsAllowedToOverride(&result, exercise, participation, user, instructor),
		AllowedAssessor:   s.eligibility.IsAllowedAssessor(&result, exercise, participation, user),
		Instructor:        instructor,
	}, nil
}
