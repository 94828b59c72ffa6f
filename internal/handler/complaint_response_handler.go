package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradeflow/assess-api/internal/dto"
	"github.com/gradeflow/assess-api/internal/service"
	"github.com/gradeflow/assess-api/internal/utils"
)

// ComplaintResponseHandler manages the complaint response resource: the
// advisory lock (POST/GET/DELETE) and the refresh/resolve actions (PATCH).
type ComplaintResponseHandler struct {
	locks      service.ComplaintLockService
	resolution service.ComplaintResolutionService
	logger     zerolog.Logger
	now        func() time.Time
}

// NewComplaintResponseHandler builds a complaint response handler instance.
func NewComplaintResponseHandler(locks service.ComplaintLockService, resolution service.ComplaintResolutionService, logger zerolog.Logger) *ComplaintResponseHandler {
	return &ComplaintResponseHandler{
		locks:      locks,
		resolution: resolution,
		logger:     logger.With().Str("component", "complaint_response_handler").Logger(),
		now:        time.Now,
	}
}

// Register attaches the routes to the provided router group.
func (h *ComplaintResponseHandler) Register(router fiber.Router) {
	router.Post("/:id/response", h.createLock)
	router.Get("/:id/response", h.inspectLock)
	router.Patch("/:id/response", h.update)
	router.Delete("/:id/response", h.removeLock)
}

func (h *ComplaintResponseHandler) createLock(c *fiber.Ctx) error {
	complaintID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	lock, err := h.locks.CreateLock(c.Context(), complaintID, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	view := dto.NewComplaintResponseView(lock, h.now(), h.locks.LockDuration())

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "complaint lock created", view)
}

func (h *ComplaintResponseHandler) inspectLock(c *fiber.Ctx) error {
	complaintID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	lock, err := h.locks.InspectLock(c.Context(), complaintID)
	if err != nil {
		return h.handleError(c, err)
	}

	view := dto.NewComplaintResponseView(lock, h.now(), h.locks.LockDuration())

	return utils.SendSuccess(c, "complaint lock retrieved", view)
}

func (h *ComplaintResponseHandler) update(c *fiber.Ctx) error {
	complaintID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ComplaintResponseUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	userID := userIDFromContext(c)

	switch payload.Action {
	case dto.ActionRefreshLock:
		lock, err := h.locks.RefreshLock(c.Context(), complaintID, userID)
		if err != nil {
			return h.handleError(c, err)
		}
		view := dto.NewComplaintResponseView(lock, h.now(), h.locks.LockDuration())
		return utils.SendSuccess(c, "complaint lock refreshed", view)
	case dto.ActionResolveComplaint:
		resolved, err := h.resolution.ResolveForComplaint(c.Context(), complaintID, payload, userID)
		if err != nil {
			return h.handleError(c, err)
		}
		view := dto.NewComplaintResponseView(resolved, h.now(), h.locks.LockDuration())
		return utils.SendSuccess(c, "complaint resolved", view)
	default:
		return utils.SendError(c, fiber.StatusBadRequest, "unknown action")
	}
}

func (h *ComplaintResponseHandler) removeLock(c *fiber.Ctx) error {
	complaintID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.locks.RemoveLock(c.Context(), complaintID, userIDFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "complaint lock removed", nil)
}

func (h *ComplaintResponseHandler) handleError(c *fiber.Ctx, err error) error {
	var lockedErr *service.LockedError
	switch {
	case errors.Is(err, service.ErrComplaintNotFound),
		errors.Is(err, service.ErrResponseNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotAuthorized):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.As(err, &lockedErr):
		return utils.SendErrorWithData(c, fiber.StatusLocked, lockedErr.Error(), fiber.Map{
			"reviewer":          lockedErr.Reviewer,
			"remaining_seconds": int(lockedErr.Remaining.Seconds()),
		})
	case errors.Is(err, service.ErrLockConflict),
		errors.Is(err, service.ErrComplaintResolved),
		errors.Is(err, service.ErrResponseExists),
		errors.Is(err, service.ErrResponseSubmitted):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrDecisionMissing),
		errors.Is(err, service.ErrTextTooLong),
		isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
