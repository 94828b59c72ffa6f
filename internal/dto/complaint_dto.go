package dto

import (
	"time"

	"github.com/gradeflow/assess-api/internal/models"
)

// Complaint response actions accepted by the PATCH endpoint.
const (
	ActionRefreshLock      = "REFRESH_LOCK"
	ActionResolveComplaint = "RESOLVE_COMPLAINT"
)

// ComplaintCreateRequest is the payload a student sends to contest a result.
type ComplaintCreateRequest struct {
	ResultID      uint   `json:"result_id" validate:"required"`
	ComplaintType string `json:"complaint_type" validate:"required,oneof=COMPLAINT MORE_FEEDBACK"`
	ComplaintText string `json:"complaint_text" validate:"required"`
}

// ComplaintResponseUpdateRequest drives both lock refresh and resolution,
// mirroring the single PATCH surface of the complaint response resource.
type ComplaintResponseUpdateRequest struct {
	ResponseText *string `json:"response_text"`
	Accepted     *bool   `json:"accepted"`
	Action       string  `json:"action" validate:"required,oneof=REFRESH_LOCK RESOLVE_COMPLAINT"`
}

// ComplaintView is the API representation of a complaint.
type ComplaintView struct {
	ID            uint       `json:"id"`
	ResultID      uint       `json:"result_id"`
	ComplaintType string     `json:"complaint_type"`
	ComplaintText string     `json:"complaint_text"`
	Accepted      *bool      `json:"accepted"`
	SubmittedTime *time.Time `json:"submitted_time"`
}

// ComplaintResponseView is the API representation of a complaint response or
// lock, including the derived lock fields clients display.
type ComplaintResponseView struct {
	ID              uint       `json:"id"`
	ComplaintID     uint       `json:"complaint_id"`
	Reviewer        string     `json:"reviewer"`
	ResponseText    *string    `json:"response_text"`
	SubmittedTime   *time.Time `json:"submitted_time"`
	CreatedAt       time.Time  `json:"created_at"`
	CurrentlyLocked bool       `json:"currently_locked"`
	LockEndDate     *time.Time `json:"lock_end_date"`
}

// OverrideEligibilityView reports whether the acting user may currently
// create or override an assessment for a result.
type OverrideEligibilityView struct {
	ResultID          uint `json:"result_id"`
	AllowedToOverride bool `json:"allowed_to_override"`
	AllowedAssessor   bool `json:"allowed_assessor"`
	Instructor        bool `json:"instructor"`
}

// NewComplaintView maps a complaint model to its API representation.
func NewComplaintView(complaint models.Complaint) ComplaintView {
	return ComplaintView{
		ID:            complaint.ID,
		ResultID:      complaint.ResultID,
		ComplaintType: complaint.ComplaintType,
		ComplaintText: complaint.ComplaintText,
		Accepted:      complaint.Accepted,
		SubmittedTime: complaint.SubmittedTime,
	}
}

// NewComplaintResponseView maps a complaint response model to its API
// representation, deriving the lock fields from the given clock and duration.
func NewComplaintResponseView(response models.ComplaintResponse, now time.Time, lockDuration time.Duration) ComplaintResponseView {
	view := ComplaintResponseView{
		ID:              response.ID,
		ComplaintID:     response.ComplaintID,
		ResponseText:    response.ResponseText,
		SubmittedTime:   response.SubmittedTime,
		CreatedAt:       response.CreatedAt,
		CurrentlyLocked: response.IsCurrentlyLocked(now, lockDuration),
	}
	if response.Reviewer != nil {
		view.Reviewer = response.Reviewer.Login
	}
	if response.IsLock() {
		end := response.LockEndDate(lockDuration)
		view.LockEndDate = &end
	}

	return view
}
