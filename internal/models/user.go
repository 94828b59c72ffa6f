package models

import (
	"time"

	"gorm.io/datatypes"
)

// User represents a platform account that can grade, review or complain.
type User struct {
	ID        uint                        `gorm:"primaryKey" json:"id"`
	Login     string                      `gorm:"size:128;uniqueIndex;not null" json:"login"`
	Name      string                      `gorm:"size:255" json:"name"`
	Groups    datatypes.JSONSlice[string] `gorm:"type:json" json:"groups"`
	Admin     bool                        `gorm:"not null;default:false" json:"admin"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// InGroup reports whether the user belongs to the named access group.
func (u User) InGroup(group string) bool {
	if group == "" {
		return false
	}
	for _, g := range u.Groups {
		if g == group {
			return true
		}
	}
	return false
}
