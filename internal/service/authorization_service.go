package service

import "github.com/gradeflow/assess-api/internal/models"

// AuthorizationService answers role questions for a user within a course.
// Roles are derived from course group membership; admins pass every check.
type AuthorizationService interface {
	IsAtLeastInstructor(user models.User, course models.Course) bool
	IsAtLeastTutor(user models.User, course models.Course) bool
}

type authorizationService struct{}

// NewAuthorizationService constructs the group-membership based oracle.
func NewAuthorizationService() AuthorizationService {
	return authorizationService{}
}

func (authorizationService) IsAtLeastInstructor(user models.User, course models.Course) bool {
	return user.Admin || user.InGroup(course.InstructorGroupName)
}

func (s authorizationService) IsAtLeastTutor(user models.User, course models.Course) bool {
	return s.IsAtLeastInstructor(user, course) || user.InGroup(course.TutorGroupName)
}
