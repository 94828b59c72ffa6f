package models

import "time"

// ResponseState is the tagged state of a ComplaintResponse row.
type ResponseState int

const (
	// ResponseStateLock means the row is an empty placeholder acting as the
	// advisory lock on its complaint.
	ResponseStateLock ResponseState = iota
	// ResponseStateSubmitted means the row is the permanent resolution record.
	ResponseStateSubmitted
)

// ComplaintResponse is a dual-purpose row: while empty it is the advisory
// lock granting one reviewer exclusive rights to resolve the complaint, and
// once populated it is the permanent resolution record. The unique index on
// ComplaintID is the concurrency-control primitive: at most one response row
// can ever exist per complaint.
type ComplaintResponse struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ComplaintID   uint       `gorm:"not null;uniqueIndex" json:"complaint_id"`
	Complaint     Complaint  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"complaint"`
	ReviewerID    *uint      `json:"reviewer_id"`
	Reviewer      *User      `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	ResponseText  *string    `gorm:"type:text" json:"response_text"`
	SubmittedTime *time.Time `json:"submitted_time"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// State classifies the row so callers can switch exhaustively instead of
// sniffing nullable columns.
func (r ComplaintResponse) State() ResponseState {
	if r.SubmittedTime != nil || r.ResponseText != nil {
		return ResponseStateSubmitted
	}
	return ResponseStateLock
}

// IsLock reports whether the row currently represents an outstanding lock.
func (r ComplaintResponse) IsLock() bool {
	return r.State() == ResponseStateLock
}

// LockEndDate returns the instant at which the lock stops excluding other
// reviewers.
func (r ComplaintResponse) LockEndDate(duration time.Duration) time.Time {
	return r.CreatedAt.Add(duration)
}

// LockRemaining returns how much lock validity is left at the given instant.
// The result is negative once the lock has expired.
func (r ComplaintResponse) LockRemaining(now time.Time, duration time.Duration) time.Duration {
	return r.LockEndDate(duration).Sub(now)
}

// IsCurrentlyLocked reports whether the row is an unexpired lock at the given
// instant. The lock end instant itself counts as expired. Expiry is advisory:
// the row keeps existing until someone refreshes or removes it.
func (r ComplaintResponse) IsCurrentlyLocked(now time.Time, duration time.Duration) bool {
	return r.IsLock() && now.Before(r.LockEndDate(duration))
}

// IsReviewer reports whether the given user holds this lock.
func (r ComplaintResponse) IsReviewer(userID uint) bool {
	return r.ReviewerID != nil && *r.ReviewerID == userID
}
