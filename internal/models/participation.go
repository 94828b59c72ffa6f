package models

import "time"

// StudentParticipation links a student (or a tutor-owned team) to an exercise
// and anchors the chain of results produced for it.
type StudentParticipation struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	ExerciseID uint     `gorm:"not null;index" json:"exercise_id"`
	Exercise   Exercise `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"exercise"`
	StudentID  uint     `gorm:"not null;index" json:"student_id"`
	Student    User     `gorm:"foreignKey:StudentID" json:"student"`
	// TeamOwnerID is the tutor owning the team in team-mode exercises.
	TeamOwnerID *uint     `json:"team_owner_id"`
	TeamOwner   *User     `gorm:"foreignKey:TeamOwnerID" json:"team_owner,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsOwnedBy reports whether the given user owns this team participation.
func (p StudentParticipation) IsOwnedBy(userID uint) bool {
	return p.TeamOwnerID != nil && *p.TeamOwnerID == userID
}
