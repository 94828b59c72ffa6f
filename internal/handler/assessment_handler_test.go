package handler_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/gradeflow/assess-api/internal/dto"
	"github.com/gradeflow/assess-api/internal/middleware"
)

func TestOverrideEligibilityEndpoint(t *testing.T) {
	app, sc := setupComplaintApp(t)
	path := "/api/v1/results/" + strconv.Itoa(int(sc.result.ID)) + "/override-eligibility"

	resp := doJSON(t, app, http.MethodGet, path, nil, sc.assessor.ID, middleware.RoleTutor)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var view struct {
		Success bool                        `json:"success"`
		Data    dto.OverrideEligibilityView `json:"data"`
	}
	decodeBody(t, resp, &view)
	require.True(t, view.Success)
	require.Equal(t, sc.result.ID, view.Data.ResultID)
	require.True(t, view.Data.AllowedAssessor)
	require.True(t, view.Data.AllowedToOverride)
	require.False(t, view.Data.Instructor)

	resp = doJSON(t, app, http.MethodGet, path, nil, sc.instructor.ID, middleware.RoleInstructor)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &view)
	require.True(t, view.Data.Instructor)
}

func TestOverrideEligibilityStudentRoleBlocked(t *testing.T) {
	app, sc := setupComplaintApp(t)
	path := "/api/v1/results/" + strconv.Itoa(int(sc.result.ID)) + "/override-eligibility"

	resp := doJSON(t, app, http.MethodGet, path, nil, sc.student.ID, middleware.RoleStudent)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestOverrideEligibilityUnknownResult(t *testing.T) {
	app, sc := setupComplaintApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/results/999999/override-eligibility", nil, sc.assessor.ID, middleware.RoleTutor)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
