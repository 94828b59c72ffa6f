package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradeflow/assess-api/internal/dto"
	"github.com/gradeflow/assess-api/internal/service"
	"github.com/gradeflow/assess-api/internal/utils"
)

// ComplaintHandler manages complaint endpoints for students.
type ComplaintHandler struct {
	service service.ComplaintService
	logger  zerolog.Logger
}

// NewComplaintHandler builds a complaint handler instance.
func NewComplaintHandler(service service.ComplaintService, logger zerolog.Logger) *ComplaintHandler {
	return &ComplaintHandler{
		service: service,
		logger:  logger.With().Str("component", "complaint_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ComplaintHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/:id", h.get)
}

func (h *ComplaintHandler) create(c *fiber.Ctx) error {
	var payload dto.ComplaintCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	complaint, err := h.service.Create(c.Context(), payload, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "complaint filed", dto.NewComplaintView(complaint))
}

func (h *ComplaintHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	complaint, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "complaint retrieved", dto.NewComplaintView(complaint))
}

func (h *ComplaintHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrComplaintNotFound),
		errors.Is(err, service.ErrResultNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotAuthorized):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrComplaintExists):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrComplaintWindowExpired),
		errors.Is(err, service.ErrResultNotSubmitted),
		errors.Is(err, service.ErrTextTooLong),
		isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
