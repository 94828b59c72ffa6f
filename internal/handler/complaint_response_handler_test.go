package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gradeflow/assess-api/internal/config"
	"github.com/gradeflow/assess-api/internal/dto"
	"github.com/gradeflow/assess-api/internal/handler"
	"github.com/gradeflow/assess-api/internal/middleware"
	"github.com/gradeflow/assess-api/internal/models"
	"github.com/gradeflow/assess-api/internal/repository"
	"github.com/gradeflow/assess-api/internal/router"
	"github.com/gradeflow/assess-api/internal/service"
)

func TestComplaintResponseLockLifecycle(t *testing.T) {
	app, sc := setupComplaintApp(t)
	complaint := sc.fileComplaint(t)
	path := "/api/v1/complaints/" + strconv.Itoa(int(complaint.ID)) + "/response"

	resp := doJSON(t, app, http.MethodPost, path, nil, sc.reviewer.ID, middleware.RoleTutor)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created responseEnvelope
	decodeBody(t, resp, &created)
	require.True(t, created.Success)
	require.Equal(t, sc.reviewer.Login, created.Data.Reviewer)
	require.True(t, created.Data.CurrentlyLocked)
	require.NotNil(t, created.Data.LockEndDate)

	resp = doJSON(t, app, http.MethodGet, path, nil, sc.otherTutor.ID, middleware.RoleTutor)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, path, nil, sc.reviewer.ID, middleware.RoleTutor)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, path, nil, sc.otherTutor.ID, middleware.RoleTutor)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestComplaintResponseRefreshBlockedByActiveLock(t *testing.T) {
	app, sc := setupComplaintApp(t)
	complaint := sc.fileComplaint(t)
	path := "/api/v1/complaints/" + strconv.Itoa(int(complaint.ID)) + "/response"

	resp := doJSON(t, app, http.MethodPost, path, nil, sc.reviewer.ID, middleware.RoleTutor)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := dto.ComplaintResponseUpdateRequest{Action: dto.ActionRefreshLock}
	resp = doJSON(t, app, http.MethodPatch, path, body, sc.otherTutor.ID, middleware.RoleTutor)
	require.Equal(t, fiber.StatusLocked, resp.StatusCode)

	var locked struct {
		Success bool `json:"success"`
		Data    struct {
			Reviewer         string `json:"reviewer"`
			RemainingSeconds int    `json:"remaining_seconds"`
		} `json:"data"`
	}
	decodeBody(t, resp, &locked)
	require.False(t, locked.Success)
	require.Equal(t, sc.reviewer.Login, locked.Data.Reviewer)
	require.Positive(t, locked.Data.RemainingSeconds)
}

func TestComplaintResponseResolveFlow(t *testing.T) {
	app, sc := setupComplaintApp(t)
	complaint := sc.fileComplaint(t)
	path := "/api/v1/complaints/" + strconv.Itoa(int(complaint.ID)) + "/response"

	resp := doJSON(t, app, http.MethodPost, path, nil, sc.reviewer.ID, middleware.RoleTutor)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	accepted := true
	text := "Regraded, two points restored."
	body := dto.ComplaintResponseUpdateRequest{Action: dto.ActionResolveComplaint, Accepted: &accepted, ResponseText: &text}
	resp = doJSON(t, app, http.MethodPatch, path, body, sc.reviewer.ID, middleware.RoleTutor)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var resolved responseEnvelope
	decodeBody(t, resp, &resolved)
	require.NotNil(t, resolved.Data.SubmittedTime)
	require.Equal(t, text, *resolved.Data.ResponseText)
	require.False(t, resolved.Data.CurrentlyLocked)

	// The complaint is terminal now, a second resolution attempt conflicts.
	resp = doJSON(t, app, http.MethodPatch, path, body, sc.reviewer.ID, middleware.RoleTutor)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestComplaintResponseCreateForbiddenForAssessor(t *testing.T) {
	app, sc := setupComplaintApp(t)
	complaint := sc.fileComplaint(t)
	path := "/api/v1/complaints/" + strconv.Itoa(int(complaint.ID)) + "/response"

	resp := doJSON(t, app, http.MethodPost, path, nil, sc.assessor.ID, middleware.RoleTutor)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestComplaintResponseStudentRoleBlocked(t *testing.T) {
	app, sc := setupComplaintApp(t)
	complaint := sc.fileComplaint(t)
	path := "/api/v1/complaints/" + strconv.Itoa(int(complaint.ID)) + "/response"

	resp := doJSON(t, app, http.MethodPost, path, nil, sc.student.ID, middleware.RoleStudent)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestComplaintResponseRejectsUnknownAction(t *testing.T) {
	app, sc := setupComplaintApp(t)
	complaint := sc.fileComplaint(t)
	path := "/api/v1/complaints/" + strconv.Itoa(int(complaint.ID)) + "/response"

	body := dto.ComplaintResponseUpdateRequest{Action: "ESCALATE"}
	resp := doJSON(t, app, http.MethodPatch, path, body, sc.reviewer.ID, middleware.RoleTutor)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestComplaintResponseRejectsMalformedID(t *testing.T) {
	app, sc := setupComplaintApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/complaints/abc/response", nil, sc.reviewer.ID, middleware.RoleTutor)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

// --- shared test harness ---

type responseEnvelope struct {
	Success bool                      `json:"success"`
	Message string                    `json:"message"`
	Data    dto.ComplaintResponseView `json:"data"`
}

// apiScenario is a graded submission with the cast needed to exercise the
// complaint endpoints end to end.
type apiScenario struct {
	db         *gorm.DB
	course     models.Course
	student    models.User
	assessor   models.User
	reviewer   models.User
	otherTutor models.User
	instructor models.User
	result     models.Result
	exercise   models.Exercise
}

func setupComplaintApp(t *testing.T) (*fiber.App, apiScenario) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Exercise{},
		&models.StudentParticipation{},
		&models.Result{},
		&models.Complaint{},
		&models.ComplaintResponse{},
	))

	sc := seedAPIScenario(t, db)

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	users := repository.NewUserRepository(db)
	complaints := repository.NewComplaintRepository(db)
	responses := repository.NewComplaintResponseRepository(db)
	results := repository.NewResultRepository(db)
	uow := repository.NewUnitOfWork(db)

	authz := service.NewAuthorizationService()
	locks := service.NewComplaintLockService(complaints, responses, users, uow, authz, 5*time.Minute, logger)
	resolution := service.NewComplaintResolutionService(responses, users, uow, locks, authz, nil, logger)
	complaintService := service.NewComplaintService(complaints, results, users, validate, logger)
	assessmentService := service.NewAssessmentService(results, users, service.NewAssessmentEligibilityService(), authz, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{
		ComplaintHandler:         handler.NewComplaintHandler(complaintService, logger),
		ComplaintResponseHandler: handler.NewComplaintResponseHandler(locks, resolution, logger),
		AssessmentHandler:        handler.NewAssessmentHandler(assessmentService, logger),
		JWTMiddleware:            headerAuth(),
	})

	return app, sc
}

// headerAuth stands in for the JWT middleware so every test request can act
// as an arbitrary user.
func headerAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw := c.Get("X-Test-User"); raw != "" {
			if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
				c.Locals("user_id", uint(id))
			}
		}
		c.Locals("user_role", c.Get("X-Test-Role"))
		return c.Next()
	}
}

func seedAPIScenario(t *testing.T, db *gorm.DB) apiScenario {
	t.Helper()
	prefix := strings.ToLower(strings.ReplaceAll(t.Name(), "/", "-"))

	course := models.Course{
		Title:                         "Operating Systems",
		InstructorGroupName:           prefix + "-instructors",
		TutorGroupName:                prefix + "-tutors",
		MaxComplaintTextLimit:         2000,
		MaxComplaintResponseTextLimit: 2000,
		MaxComplaintTimeDays:          7,
	}
	require.NoError(t, db.Create(&course).Error)

	student := models.User{Login: prefix + "-student", Name: "Student"}
	assessor := models.User{Login: prefix + "-tutor1", Groups: datatypes.JSONSlice[string]{course.TutorGroupName}}
	reviewer := models.User{Login: prefix + "-tutor2", Groups: datatypes.JSONSlice[string]{course.TutorGroupName}}
	otherTutor := models.User{Login: prefix + "-tutor3", Groups: datatypes.JSONSlice[string]{course.TutorGroupName}}
	instructor := models.User{Login: prefix + "-instructor", Groups: datatypes.JSONSlice[string]{course.InstructorGroupName}}
	for _, u := range []*models.User{&student, &assessor, &reviewer, &otherTutor, &instructor} {
		require.NoError(t, db.Create(u).Error)
	}

	exercise := models.Exercise{CourseID: course.ID, Title: "Scheduling"}
	require.NoError(t, db.Create(&exercise).Error)

	participation := models.StudentParticipation{ExerciseID: exercise.ID, StudentID: student.ID}
	require.NoError(t, db.Create(&participation).Error)

	completed := time.Now().Add(-time.Hour)
	score := 55.0
	result := models.Result{
		ParticipationID: participation.ID,
		AssessmentType:  models.AssessmentTypeManual,
		CompletionDate:  &completed,
		Rated:           true,
		Score:           &score,
		AssessorID:      &assessor.ID,
	}
	require.NoError(t, db.Create(&result).Error)

	return apiScenario{
		db:         db,
		course:     course,
		student:    student,
		assessor:   assessor,
		reviewer:   reviewer,
		otherTutor: otherTutor,
		instructor: instructor,
		result:     result,
		exercise:   exercise,
	}
}

func (sc apiScenario) fileComplaint(t *testing.T) models.Complaint {
	t.Helper()
	submitted := time.Now().Add(-10 * time.Minute)
	complaint := models.Complaint{
		ResultID:      sc.result.ID,
		ComplaintType: models.ComplaintTypeComplaint,
		ComplaintText: "Task three deserves partial credit.",
		ParticipantID: sc.student.ID,
		SubmittedTime: &submitted,
	}
	require.NoError(t, sc.db.Create(&complaint).Error)
	return complaint
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, userID uint, role string) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", strconv.Itoa(int(userID)))
	req.Header.Set("X-Test-Role", role)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
