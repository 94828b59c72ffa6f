package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradeflow/assess-api/internal/service"
	"github.com/gradeflow/assess-api/internal/utils"
)

// AssessmentHandler exposes assessment eligibility checks to graders.
type AssessmentHandler struct {
	service service.AssessmentService
	logger  zerolog.Logger
}

// NewAssessmentHandler builds an assessment handler instance.
func NewAssessmentHandler(service service.AssessmentService, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AssessmentHandler) Register(router fiber.Router) {
	router.Get("/:id/override-eligibility", h.overrideEligibility)
}

func (h *AssessmentHandler) overrideEligibility(c *fiber.Ctx) error {
	resultID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	view, err := h.service.OverrideEligibility(c.Context(), resultID, userIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResultNotFound), errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotAuthorized):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		default:
			h.logger.Error().Err(err).Uint("result_id", resultID).Msg("failed to evaluate override eligibility")
			return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
		}
	}

	return utils.SendSuccess(c, "override eligibility evaluated", view)
}
