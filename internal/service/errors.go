package service

import (
	"errors"
	"fmt"
	"time"
)

// Validation and state errors surfaced by the complaint services. Handlers
// map these onto HTTP status codes.
var (
	// ErrComplaintNotFound indicates the complaint could not be found.
	ErrComplaintNotFound = errors.New("complaint not found")
	// ErrResultNotFound indicates the contested result could not be found.
	ErrResultNotFound = errors.New("result not found")
	// ErrResponseNotFound indicates no complaint response row exists where a
	// lock was expected.
	ErrResponseNotFound = errors.New("complaint response not found")
	// ErrUserNotFound indicates the acting user could not be resolved.
	ErrUserNotFound = errors.New("user not found")
	// ErrComplaintResolved indicates the complaint already reached its
	// terminal state and may not change anymore.
	ErrComplaintResolved = errors.New("complaint has already been resolved")
	// ErrResponseExists indicates the complaint already carries a response
	// row, so no new lock can be created.
	ErrResponseExists = errors.New("complaint already has a response")
	// ErrResponseSubmitted indicates the response row is a finished
	// resolution record, not a lock.
	ErrResponseSubmitted = errors.New("complaint response has already been submitted")
	// ErrNotAuthorized indicates the user fails the responder predicate for
	// this complaint.
	ErrNotAuthorized = errors.New("user is not allowed to respond to this complaint")
	// ErrLockConflict indicates a concurrent writer won the uniqueness race;
	// the operation should be retried from a fresh read.
	ErrLockConflict = errors.New("lost the race for the complaint lock")
	// ErrDecisionMissing indicates a resolution was attempted without an
	// accept/reject decision.
	ErrDecisionMissing = errors.New("complaint decision is required")
	// ErrTextTooLong indicates a complaint or response text exceeds the
	// course limit.
	ErrTextTooLong = errors.New("text exceeds the configured course limit")
	// ErrComplaintWindowExpired indicates the result was finalized too long
	// ago to still be contested.
	ErrComplaintWindowExpired = errors.New("complaint window has expired")
	// ErrComplaintExists indicates the result already has a complaint of the
	// requested type.
	ErrComplaintExists = errors.New("result already has a complaint of this type")
	// ErrResultNotSubmitted indicates the result is still a draft and cannot
	// be contested yet.
	ErrResultNotSubmitted = errors.New("result has not been submitted yet")
)

// LockedError reports that an unexpired lock held by another reviewer blocks
// the requested action. It carries the holder and the remaining validity so
// callers can tell the user who to wait for and how long.
type LockedError struct {
	Reviewer  string
	Remaining time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("complaint is locked by %s for another %s", e.Reviewer, e.Remaining.Round(time.Second))
}
