package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gradeflow/assess-api/internal/models"
	"github.com/gradeflow/assess-api/internal/observability"
	"github.com/gradeflow/assess-api/internal/repository"
)

// ComplaintLockService provides mutual exclusion over who may currently write
// the resolution of a complaint. The lock primitive is the empty
// ComplaintResponse row: creating it acquires the lock, deleting it releases
// the lock, and the row's age against the configured duration decides expiry.
// Expiry is evaluated lazily on read; an expired lock stays in the database
// until someone refreshes or removes it.
type ComplaintLockService interface {
	// CreateLock acquires the lock on a lock-free, undecided complaint.
	CreateLock(ctx context.Context, complaintID, userID uint) (models.ComplaintResponse, error)
	// RefreshLock replaces the current lock row with a fresh one owned by the
	// caller. This is the only way a second reviewer can take over an expired
	// lock.
	RefreshLock(ctx context.Context, complaintID, userID uint) (models.ComplaintResponse, error)
	// RemoveLock releases the lock without resolving the complaint.
	RemoveLock(ctx context.Context, complaintID, userID uint) error
	// InspectLock returns the outstanding lock row for the complaint.
	InspectLock(ctx context.Context, complaintID uint) (models.ComplaintResponse, error)

	IsLockExpired(lock models.ComplaintResponse, now time.Time) bool
	IsLockBlocking(lock models.ComplaintResponse, user models.User, isAtLeastInstructor bool, now time.Time) bool
	LockDuration() time.Duration
}

type complaintLockService struct {
	complaints repository.ComplaintRepository
	responses  repository.ComplaintResponseRepository
	users      repository.UserRepository
	uow        repository.UnitOfWork
	authz      AuthorizationService
	duration   time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewComplaintLockService constructs a ComplaintLockService instance.
func NewComplaintLockService(complaints repository.ComplaintRepository, responses repository.ComplaintResponseRepository, users repository.UserRepository, uow repository.UnitOfWork, authz AuthorizationService, lockDuration time.Duration, logger zerolog.Logger) ComplaintLockService {
	return &complaintLockService{
		complaints: complaints,
		responses:  responses,
		users:      users,
		uow:        uow,
		authz:      authz,
		duration:   lockDuration,
		logger:     logger.With().Str("component", "complaint_lock_service").Logger(),
		now:        time.Now,
	}
}

func (s *complaintLockService) LockDuration() time.Duration {
	return s.duration
}

// IsLockExpired reports whether the lock no longer excludes other reviewers.
// The lock end instant itself counts as expired.
func (s *complaintLockService) IsLockExpired(lock models.ComplaintResponse, now time.Time) bool {
	return !now.Before(lock.LockEndDate(s.duration))
}

// IsLockBlocking reports whether the lock keeps the given user from acting.
// The lock holder and instructors are never blocked, regardless of expiry.
func (s *complaintLockService) IsLockBlocking(lock models.ComplaintResponse, user models.User, isAtLeastInstructor bool, now time.Time) bool {
	if !lock.IsLock() {
		return false
	}
	if lock.IsReviewer(user.ID) || isAtLeastInstructor {
		return false
	}

	return !s.IsLockExpired(lock, now)
}

func (s *complaintLockService) CreateLock(ctx context.Context, complaintID, userID uint) (models.ComplaintResponse, error) {
	user, complaint, err := s.loadActors(ctx, complaintID, userID)
	if err != nil {
		return models.ComplaintResponse{}, err
	}

	if complaint.IsResolved() {
		return models.ComplaintResponse{}, ErrComplaintResolved
	}

	if _, err := s.responses.GetByComplaintID(ctx, complaintID); err == nil {
		return models.ComplaintResponse{}, ErrResponseExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ComplaintResponse{}, err
	}

	if !mayRespondToComplaint(complaint, user, s.authz) {
		return models.ComplaintResponse{}, ErrNotAuthorized
	}

	lock := models.ComplaintResponse{ComplaintID: complaintID, ReviewerID: &user.ID}
	if err := s.responses.Create(ctx, &lock); err != nil {
		if errors.Is(err, repository.ErrDuplicateResponse) {
			observability.LockConflicts().Inc()
			return models.ComplaintResponse{}, ErrLockConflict
		}
		return models.ComplaintResponse{}, err
	}

	observability.LockOperations().WithLabelValues("create", "success").Inc()
	s.logger.Info().Uint("complaint_id", complaintID).Str("reviewer", user.Login).Msg("complaint lock acquired")

	return s.responses.GetByID(ctx, lock.ID)
}

func (s *complaintLockService) RefreshLock(ctx context.Context, complaintID, userID uint) (models.ComplaintResponse, error) {
	user, complaint, err := s.loadActors(ctx, complaintID, userID)
	if err != nil {
		return models.ComplaintResponse{}, err
	}

	lock, err := s.lockFor(ctx, complaint)
	if err != nil {
		return models.ComplaintResponse{}, err
	}

	if !mayRespondToComplaint(complaint, user, s.authz) {
		return models.ComplaintResponse{}, ErrNotAuthorized
	}

	course := complaint.Result.Participation.Exercise.Course
	now := s.now()
	if s.IsLockBlocking(lock, user, s.authz.IsAtLeastInstructor(user, course), now) {
		observability.LockOperations().WithLabelValues("refresh", "blocked").Inc()
		return models.ComplaintResponse{}, &LockedError{Reviewer: reviewerLogin(lock), Remaining: lock.LockRemaining(now, s.duration)}
	}

	// Delete and insert in one transaction so no window exists in which two
	// empty rows for the same complaint coexist. Concurrent refreshers are
	// serialized by the unique complaint_id index; the loser surfaces as a
	// conflict instead of silently overwriting.
	fresh := models.ComplaintResponse{ComplaintID: complaintID, ReviewerID: &user.ID}
	err = s.uow.Do(ctx, func(tx repository.TxRepositories) error {
		// Re-validate against the transactional snapshot: a resolve may have
		// populated this row since the initial read, and deleting it then
		// would destroy the submitted resolution.
		if err := s.requireLockRow(ctx, tx, lock.ID); err != nil {
			return err
		}
		if err := tx.Responses.Delete(ctx, lock.ID); err != nil {
			return err
		}
		return tx.Responses.Create(ctx, &fresh)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateResponse) || errors.Is(err, ErrLockConflict) {
			observability.LockConflicts().Inc()
			return models.ComplaintResponse{}, ErrLockConflict
		}
		return models.ComplaintResponse{}, err
	}

	observability.LockOperations().WithLabelValues("refresh", "success").Inc()
	s.logger.Info().Uint("complaint_id", complaintID).Str("reviewer", user.Login).Msg("complaint lock refreshed")

	return s.responses.GetByID(ctx, fresh.ID)
}

func (s *complaintLockService) RemoveLock(ctx context.Context, complaintID, userID uint) error {
	user, complaint, err := s.loadActors(ctx, complaintID, userID)
	if err != nil {
		return err
	}

	lock, err := s.lockFor(ctx, complaint)
	if err != nil {
		return err
	}

	if !mayRespondToComplaint(complaint, user, s.authz) {
		return ErrNotAuthorized
	}

	course := complaint.Result.Participation.Exercise.Course
	now := s.now()
	if s.IsLockBlocking(lock, user, s.authz.IsAtLeastInstructor(user, course), now) {
		observability.LockOperations().WithLabelValues("remove", "blocked").Inc()
		return &LockedError{Reviewer: reviewerLogin(lock), Remaining: lock.LockRemaining(now, s.duration)}
	}

	err = s.uow.Do(ctx, func(tx repository.TxRepositories) error {
		if err := s.requireLockRow(ctx, tx, lock.ID); err != nil {
			return err
		}
		return tx.Responses.Delete(ctx, lock.ID)
	})
	if err != nil {
		if errors.Is(err, ErrLockConflict) {
			observability.LockConflicts().Inc()
		}
		return err
	}

	observability.LockOperations().WithLabelValues("remove", "success").Inc()
	s.logger.Info().Uint("complaint_id", complaintID).Str("user", user.Login).Msg("complaint lock removed")

	return nil
}

func (s *complaintLockService) InspectLock(ctx context.Context, complaintID uint) (models.ComplaintResponse, error) {
	complaint, err := s.loadComplaint(ctx, complaintID)
	if err != nil {
		return models.ComplaintResponse{}, err
	}

	return s.lockFor(ctx, complaint)
}

// requireLockRow re-reads the row inside the transaction and fails with
// ErrLockConflict unless it is still an empty lock on an undecided complaint.
// Without this check a concurrent resolve committing between the precondition
// read and the write would have its submitted record deleted here.
func (s *complaintLockService) requireLockRow(ctx context.Context, tx repository.TxRepositories, responseID uint) error {
	current, err := tx.Responses.GetByID(ctx, responseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLockConflict
		}
		return err
	}
	if !current.IsLock() || current.Complaint.IsResolved() {
		return ErrLockConflict
	}
	return nil
}

// lockFor returns the outstanding lock row for the complaint, rejecting
// complaints that are already decided or whose response is a finished
// resolution rather than a lock.
func (s *complaintLockService) lockFor(ctx context.Context, complaint models.Complaint) (models.ComplaintResponse, error) {
	if complaint.IsResolved() {
		return models.ComplaintResponse{}, ErrComplaintResolved
	}

	response, err := s.responses.GetByComplaintID(ctx, complaint.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ComplaintResponse{}, ErrResponseNotFound
		}
		return models.ComplaintResponse{}, err
	}

	switch response.State() {
	case models.ResponseStateSubmitted:
		return models.ComplaintResponse{}, ErrResponseSubmitted
	case models.ResponseStateLock:
	}

	return response, nil
}

func (s *complaintLockService) loadActors(ctx context.Context, complaintID, userID uint) (models.User, models.Complaint, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, models.Complaint{}, ErrUserNotFound
		}
		return models.User{}, models.Complaint{}, err
	}

	complaint, err := s.loadComplaint(ctx, complaintID)
	if err != nil {
		return models.User{}, models.Complaint{}, err
	}

	return user, complaint, nil
}

func (s *complaintLockService) loadComplaint(ctx context.Context, complaintID uint) (models.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Complaint{}, ErrComplaintNotFound
		}
		return models.Complaint{}, err
	}

	return complaint, nil
}

func reviewerLogin(lock models.ComplaintResponse) string {
	if lock.Reviewer != nil {
		return lock.Reviewer.Login
	}
	return ""
}
