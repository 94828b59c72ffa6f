package service

import (
	"context"
	"errors"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gradeflow/assess-api/internal/dto"
	"github.com/gradeflow/assess-api/internal/models"
	"github.com/gradeflow/assess-api/internal/observability"
	"github.com/gradeflow/assess-api/internal/repository"
)

// ComplaintNotifier delivers best-effort notifications about complaint
// outcomes. Implementations must never fail the resolution itself.
type ComplaintNotifier interface {
	ComplaintResolved(ctx context.Context, complaint models.Complaint, response models.ComplaintResponse)
}

// ComplaintResolutionService is the only component allowed to transition a
// complaint to its terminal state. It composes the lock protocol, the
// responder predicate and the override rules into one workflow.
type ComplaintResolutionService interface {
	// MayRespondToComplaint implements the responder predicate: instructors
	// always pass; tutors pass depending on team ownership and on whether the
	// complaint kind demands a second pair of eyes (COMPLAINT) or the
	// original grader's context (MORE_FEEDBACK).
	MayRespondToComplaint(complaint models.Complaint, user models.User) bool
	// Resolve decides the complaint, fills in the permanent response record
	// (which releases the lock) and persists the overriding result.
	Resolve(ctx context.Context, complaintResponseID uint, update dto.ComplaintResponseUpdateRequest, userID uint) (models.ComplaintResponse, error)
	// ResolveForComplaint resolves via the complaint identifier by locating
	// its outstanding response row first.
	ResolveForComplaint(ctx context.Context, complaintID uint, update dto.ComplaintResponseUpdateRequest, userID uint) (models.ComplaintResponse, error)
}

type complaintResolutionService struct {
	responses repository.ComplaintResponseRepository
	users     repository.UserRepository
	uow       repository.UnitOfWork
	locks     ComplaintLockService
	authz     AuthorizationService
	notifier  ComplaintNotifier
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewComplaintResolutionService constructs a ComplaintResolutionService instance.
func NewComplaintResolutionService(responses repository.ComplaintResponseRepository, users repository.UserRepository, uow repository.UnitOfWork, locks ComplaintLockService, authz AuthorizationService, notifier ComplaintNotifier, logger zerolog.Logger) ComplaintResolutionService {
	return &complaintResolutionService{
		responses: responses,
		users:     users,
		uow:       uow,
		locks:     locks,
		authz:     authz,
		notifier:  notifier,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "complaint_resolution_service").Logger(),
		now:       time.Now,
	}
}

// mayRespondToComplaint is the complaint-level authorization predicate shared
// by the lock protocol and the resolution workflow.
func mayRespondToComplaint(complaint models.Complaint, user models.User, authz AuthorizationService) bool {
	participation := complaint.Result.Participation
	course := participation.Exercise.Course

	if authz.IsAtLeastInstructor(user, course) {
		return true
	}
	if !authz.IsAtLeastTutor(user, course) {
		return false
	}
	if participation.Exercise.TeamMode {
		return participation.IsOwnedBy(user.ID)
	}

	assessor := complaint.Result.AssessorID
	switch complaint.ComplaintType {
	case models.ComplaintTypeComplaint:
		// A complaint must be reviewed by a different pair of eyes.
		return assessor == nil || *assessor != user.ID
	case models.ComplaintTypeMoreFeedback:
		// Feedback requests go back to the grader who has the context.
		return assessor == nil || *assessor == user.ID
	default:
		return false
	}
}

func (s *complaintResolutionService) MayRespondToComplaint(complaint models.Complaint, user models.User) bool {
	return mayRespondToComplaint(complaint, user, s.authz)
}

func (s *complaintResolutionService) ResolveForComplaint(ctx context.Context, complaintID uint, update dto.ComplaintResponseUpdateRequest, userID uint) (models.ComplaintResponse, error) {
	response, err := s.responses.GetByComplaintID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ComplaintResponse{}, ErrResponseNotFound
		}
		return models.ComplaintResponse{}, err
	}

	return s.Resolve(ctx, response.ID, update, userID)
}

func (s *complaintResolutionService) Resolve(ctx context.Context, complaintResponseID uint, update dto.ComplaintResponseUpdateRequest, userID uint) (models.ComplaintResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ComplaintResponse{}, ErrUserNotFound
		}
		return models.ComplaintResponse{}, err
	}

	response, err := s.responses.GetByID(ctx, complaintResponseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ComplaintResponse{}, ErrResponseNotFound
		}
		return models.ComplaintResponse{}, err
	}
	complaint := response.Complaint

	if err := s.validateResolution(complaint, response, update, user); err != nil {
		observability.Resolutions().WithLabelValues("rejected").Inc()
		return models.ComplaintResponse{}, err
	}

	responseText := ""
	if update.ResponseText != nil {
		responseText = s.sanitizer.Sanitize(*update.ResponseText)
	}
	now := s.now()

	var resolved models.ComplaintResponse
	err = s.uow.Do(ctx, func(tx repository.TxRepositories) error {
		// Re-validate the guards against the transactional snapshot: a
		// concurrent refresh or resolve may have won since the initial read.
		current, err := tx.Responses.GetByID(ctx, response.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLockConflict
			}
			return err
		}
		if !current.IsLock() || current.Complaint.IsResolved() {
			return ErrLockConflict
		}

		decided := current.Complaint
		decided.Accepted = update.Accepted
		if err := tx.Complaints.Update(ctx, &decided); err != nil {
			return err
		}

		// Populating the row both records the decision and releases the
		// lock: an empty-response check will no longer find one here.
		current.ResponseText = &responseText
		current.SubmittedTime = &now
		current.ReviewerID = &user.ID
		current.Complaint = decided
		if err := tx.Responses.Update(ctx, &current); err != nil {
			return err
		}

		override := s.buildOverridingResult(complaint.Result, user, now)
		if err := tx.Results.Create(ctx, &override); err != nil {
			return err
		}

		resolved = current
		return nil
	})
	if err != nil {
		observability.Resolutions().WithLabelValues("conflict").Inc()
		return models.ComplaintResponse{}, err
	}

	observability.Resolutions().WithLabelValues("resolved").Inc()
	s.logger.Info().
		Uint("complaint_id", complaint.ID).
		Str("reviewer", user.Login).
		Bool("accepted", *update.Accepted).
		Msg("complaint resolved")

	// Outcome notification is best-effort and must never roll back the
	// already-committed resolution.
	if s.notifier != nil {
		s.notifier.ComplaintResolved(ctx, complaint, resolved)
	}

	return s.responses.GetByID(ctx, resolved.ID)
}

func (s *complaintResolutionService) validateResolution(complaint models.Complaint, response models.ComplaintResponse, update dto.ComplaintResponseUpdateRequest, user models.User) error {
	if !mayRespondToComplaint(complaint, user, s.authz) {
		return ErrNotAuthorized
	}

	course := complaint.Result.Participation.Exercise.Course
	now := s.now()
	if s.locks.IsLockBlocking(response, user, s.authz.IsAtLeastInstructor(user, course), now) {
		return &LockedError{Reviewer: reviewerLogin(response), Remaining: response.LockRemaining(now, s.locks.LockDuration())}
	}

	if !response.IsLock() {
		return ErrResponseSubmitted
	}
	if complaint.IsResolved() {
		return ErrComplaintResolved
	}
	if update.Accepted == nil {
		return ErrDecisionMissing
	}
	if update.ResponseText != nil && len(*update.ResponseText) > course.MaxComplaintResponseTextLimit {
		return ErrTextTooLong
	}

	return nil
}

// buildOverridingResult derives the new grading decision from the prior one:
// the response's reviewer becomes the assessor and the score counters carry
// forward until the reviewer submits an updated assessment.
func (s *complaintResolutionService) buildOverridingResult(prior models.Result, reviewer models.User, now time.Time) models.Result {
	return models.Result{
		ParticipationID: prior.ParticipationID,
		AssessmentType:  models.AssessmentTypeManual,
		CompletionDate:  &now,
		Rated:           prior.Rated,
		Score:           prior.Score,
		AssessorID:      &reviewer.ID,
		Feedback:        prior.Feedback,
	}
}
