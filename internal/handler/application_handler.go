package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/funagig/funagig-api/internal/dto"
	"github.com/funagig/funagig-api/internal/service"
	"github.com/funagig/funagig-api/internal/utils"
)

// ApplicationHandler serves application submission and lifecycle routes.
type ApplicationHandler struct {
	service service.ApplicationService
	logger  zerolog.Logger
}

// NewApplicationHandler constructs a handler instance.
func NewApplicationHandler(service service.ApplicationService, logger zerolog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		service: service,
		logger:  logger.With().Str("component", "application_handler").Logger(),
	}
}

// Register binds the application routes. Applying is restricted to student
// accounts by the router; status updates are validated against gig ownership
// in the service layer.
func (h *ApplicationHandler) Register(router fiber.Router, studentOnly fiber.Handler) {
	router.Get("/", h.list)
	router.Post("/", studentOnly, h.apply)
	router.Patch("/:id/status", h.updateStatus)
	router.Delete("/:id", studentOnly, h.withdraw)
}

func (h *ApplicationHandler) apply(c *fiber.Ctx) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.ApplicationCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	app, err := h.service.Apply(requestContext(c), userID, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGigNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrGigNotAcceptingApplies):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, service.ErrAlreadyApplied):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Msg("application submission failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to submit application")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "application submitted", app)
}

func (h *ApplicationHandler) updateStatus(c *fiber.Ctx) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	applicationID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid application id")
	}

	var payload dto.ApplicationStatusRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	app, err := h.service.UpdateStatus(requestContext(c), userID, applicationID, payload.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrApplicationNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotGigOwner):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Msg("application status update failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update application")
		}
	}

	return utils.SendSuccess(c, "application updated", app)
}

func (h *ApplicationHandler) withdraw(c *fiber.Ctx) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	applicationID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid application id")
	}

	if err := h.service.Withdraw(requestContext(c), userID, applicationID); err != nil {
		switch {
		case errors.Is(err, service.ErrApplicationNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotApplicationOwner):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		default:
			h.logger.Error().Err(err).Msg("application withdrawal failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to withdraw application")
		}
	}

	return utils.SendSuccess(c, "application withdrawn", nil)
}

func (h *ApplicationHandler) list(c *fiber.Ctx) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	apps, err := h.service.ListForUser(requestContext(c), userID, roleFromContext(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("application listing failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list applications")
	}

	return utils.SendSuccess(c, "applications", apps)
}
