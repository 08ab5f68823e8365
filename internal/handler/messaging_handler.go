package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/funagig/funagig-api/internal/dto"
	"github.com/funagig/funagig-api/internal/service"
	"github.com/funagig/funagig-api/internal/utils"
)

// MessagingHandler serves conversation and message routes.
type MessagingHandler struct {
	service service.MessagingService
	logger  zerolog.Logger
}

// NewMessagingHandler constructs a handler instance.
func NewMessagingHandler(service service.MessagingService, logger zerolog.Logger) *MessagingHandler {
	return &MessagingHandler{
		service: service,
		logger:  logger.With().Str("component", "messaging_handler").Logger(),
	}
}

// Register binds the messaging routes.
func (h *MessagingHandler) Register(router fiber.Router) {
	router.Get("/conversations", h.listConversations)
	router.Post("/conversations", h.openConversation)
	router.Get("/conversations/:id/messages", h.listMessages)
	router.Post("/messages", h.send)
}

func (h *MessagingHandler) openConversation(c *fiber.Ctx) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.ConversationCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	conv, err := h.service.OpenConversation(requestContext(c), userID, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfConversation):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrRecipientNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Msg("conversation open failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to open conversation")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "conversation", conv)
}

func (h *MessagingHandler) listConversations(c *fiber.Ctx) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	convs, err := h.service.ListConversations(requestContext(c), userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("conversation listing failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list conversations")
	}

	return utils.SendSuccess(c, "conversations", convs)
}

func (h *MessagingHandler) listMessages(c *fiber.Ctx) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid conversation id")
	}

	msgs, err := h.service.ListMessages(requestContext(c), userID, conversationID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConversationNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotParticipant):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		default:
			h.logger.Error().Err(err).Msg("message listing failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to list messages")
		}
	}

	return utils.SendSuccess(c, "messages", msgs)
}

func (h *MessagingHandler) send(c *fiber.Ctx) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.MessageSendRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	msg, err := h.service.Send(requestContext(c), userID, payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConversationNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotParticipant):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Msg("message send failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to send message")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message sent", msg)
}
