package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gradeflow/assess-api/internal/dto"
	"github.com/gradeflow/assess-api/internal/models"
	"github.com/gradeflow/assess-api/internal/repository"
)

// ComplaintService lets students file complaints against their results.
type ComplaintService interface {
	Create(ctx context.Context, payload dto.ComplaintCreateRequest, userID uint) (models.Complaint, error)
	GetByID(ctx context.Context, complaintID uint) (models.Complaint, error)
}

type complaintService struct {
	complaints repository.ComplaintRepository
	results    repository.ResultRepository
	users      repository.UserRepository
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
	now        func() time.Time
}

// NewComplaintService constructs a ComplaintService instance.
func NewComplaintService(complaints repository.ComplaintRepository, results repository.ResultRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) ComplaintService {
	return &complaintService{
		complaints: complaints,
		results:    results,
		users:      users,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "complaint_service").Logger(),
		now:        time.Now,
	}
}

func (s *complaintService) Create(ctx context.Context, payload dto.ComplaintCreateRequest, userID uint) (models.Complaint, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Complaint{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Complaint{}, ErrUserNotFound
		}
		return models.Complaint{}, err
	}

	result, err := s.results.GetByID(ctx, payload.ResultID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Complaint{}, ErrResultNotFound
		}
		return models.Complaint{}, err
	}

	if !result.IsSubmitted() {
		return models.Complaint{}, ErrResultNotSubmitted
	}
	if result.Participation.StudentID != user.ID {
		return models.Complaint{}, ErrNotAuthorized
	}

	course := result.Participation.Exercise.Course
	now := s.now()
	window := time.Duration(course.MaxComplaintTimeDays) * 24 * time.Hour
	if now.Sub(*result.CompletionDate) > window {
		return models.Complaint{}, ErrComplaintWindowExpired
	}
	if len(payload.ComplaintText) > course.MaxComplaintTextLimit {
		return models.Complaint{}, ErrTextTooLong
	}

	exists, err := s.complaints.ExistsByResultAndType(ctx, result.ID, payload.ComplaintType)
	if err != nil {
		return models.Complaint{}, err
	}
	if exists {
		return models.Complaint{}, ErrComplaintExists
	}

	complaint := models.Complaint{
		ResultID:      result.ID,
		ComplaintType: payload.ComplaintType,
		ComplaintText: s.sanitizer.Sanitize(payload.ComplaintText),
		ParticipantID: user.ID,
		SubmittedTime: &now,
	}
	if err := s.complaints.Create(ctx, &complaint); err != nil {
		return models.Complaint{}, err
	}

	s.logger.Info().Uint("complaint_id", complaint.ID).Uint("result_id", result.ID).Str("type", complaint.ComplaintType).Msg("complaint filed")

	return s.complaints.GetByID(ctx, complaint.ID)
}

func (s *complaintService) GetByID(ctx context.Context, complaintID uint) (models.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Complaint{}, ErrComplaintNotFound
		}
		return models.Complaint{}, err
	}

	return complaint, nil
}
