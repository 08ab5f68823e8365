package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/funagig/funagig-api/internal/dto"
	"github.com/funagig/funagig-api/internal/models"
	"github.com/funagig/funagig-api/internal/service"
	"github.com/funagig/funagig-api/internal/utils"
)

// GigHandler serves gig posting and browsing routes.
type GigHandler struct {
	service service.GigService
	logger  zerolog.Logger
}

// NewGigHandler constructs a handler instance.
func NewGigHandler(service service.GigService, logger zerolog.Logger) *GigHandler {
	return &GigHandler{
		service: service,
		logger:  logger.With().Str("component", "gig_handler").Logger(),
	}
}

// Register binds the gig routes. Creation is restricted to business accounts
// by the router; listing is open to any authenticated user.
func (h *GigHandler) Register(router fiber.Router, businessOnly fiber.Handler) {
	router.Get("/", h.list)
	router.Get("/active", h.listActive)
	router.Post("/", businessOnly, h.create)
}

func (h *GigHandler) create(c *fiber.Ctx) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.GigCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	gig, err := h.service.Create(requestContext(c), userID, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDeadlinePast):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Msg("gig creation failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create gig")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "gig created", gig)
}

func (h *GigHandler) list(c *fiber.Ctx) error {
	gigs, err := h.service.ListActive(requestContext(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("gig listing failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list gigs")
	}

	return utils.SendSuccess(c, "gigs", gigs)
}

// listActive is role-aware: business accounts see their own postings with
// applicant counts, everyone else sees the open marketplace.
func (h *GigHandler) listActive(c *fiber.Ctx) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var (
		gigs []dto.GigResponse
		err  error
	)
	if roleFromContext(c) == models.UserTypeBusiness {
		gigs, err = h.service.ListOwn(requestContext(c), userID)
	} else {
		gigs, err = h.service.ListActive(requestContext(c))
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("gig listing failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list gigs")
	}

	return utils.SendSuccess(c, "gigs", gigs)
}
