package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/funagig/funagig-api/internal/dto"
	"github.com/funagig/funagig-api/internal/models"
	"github.com/funagig/funagig-api/internal/repository"
)

// Messaging sentinel errors surfaced to handlers.
var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("caller is not a participant of the conversation")
	ErrSelfConversation     = errors.New("cannot open a conversation with yourself")
	ErrRecipientNotFound    = errors.New("recipient not found")
)

// MessagingService manages one-to-one conversations and their messages.
type MessagingService interface {
	OpenConversation(ctx context.Context, callerID uint, payload dto.ConversationCreateRequest) (dto.ConversationResponse, error)
	ListConversations(ctx context.Context, callerID uint) ([]dto.ConversationResponse, error)
	ListMessages(ctx context.Context, callerID, conversationID uint) ([]dto.MessageResponse, error)
	Send(ctx context.Context, callerID uint, payload dto.MessageSendRequest) (dto.MessageResponse, error)
}

type messagingService struct {
	db            *gorm.DB
	conversations repository.ConversationRepository
	users         repository.UserRepository
	events        *DomainEvents
	notifications NotificationService
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
}

// NewMessagingService constructs a messaging service.
func NewMessagingService(db *gorm.DB, conversations repository.ConversationRepository, users repository.UserRepository, events *DomainEvents, notifications NotificationService, validate *validator.Validate, logger zerolog.Logger) MessagingService {
	return &messagingService{
		db:            db,
		conversations: conversations,
		users:         users,
		events:        events,
		notifications: notifications,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "messaging_service").Logger(),
	}
}

// OpenConversation returns the existing conversation for the pair when one
// exists, otherwise it creates one. The pair is unordered.
func (s *messagingService) OpenConversation(ctx context.Context, callerID uint, payload dto.ConversationCreateRequest) (dto.ConversationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ConversationResponse{}, err
	}
	if payload.UserID == callerID {
		return dto.ConversationResponse{}, ErrSelfConversation
	}

	if _, err := s.users.FindByID(ctx, payload.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ConversationResponse{}, ErrRecipientNotFound
		}
		return dto.ConversationResponse{}, err
	}

	conv, err := s.conversations.FindByPair(ctx, callerID, payload.UserID)
	if err == nil {
		return dto.NewConversationResponse(conv), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ConversationResponse{}, err
	}

	conv = models.Conversation{User1ID: callerID, User2ID: payload.UserID}
	if err := s.conversations.Create(ctx, &conv); err != nil {
		return dto.ConversationResponse{}, err
	}

	s.logger.Info().Uint("conversation_id", conv.ID).Msg("conversation opened")
	return dto.NewConversationResponse(conv), nil
}

func (s *messagingService) ListConversations(ctx context.Context, callerID uint) ([]dto.ConversationResponse, error) {
	convs, err := s.conversations.ListByParticipant(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return dto.NewConversationResponseSlice(convs), nil
}

func (s *messagingService) ListMessages(ctx context.Context, callerID, conversationID uint) ([]dto.MessageResponse, error) {
	conv, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if !conv.HasParticipant(callerID) {
		return nil, ErrNotParticipant
	}

	msgs, err := s.conversations.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return dto.NewMessageResponseSlice(msgs), nil
}

func (s *messagingService) Send(ctx context.Context, callerID uint, payload dto.MessageSendRequest) (dto.MessageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MessageResponse{}, err
	}

	conv, err := s.conversations.FindByID(ctx, payload.ConversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MessageResponse{}, ErrConversationNotFound
		}
		return dto.MessageResponse{}, err
	}
	if !conv.HasParticipant(callerID) {
		return dto.MessageResponse{}, ErrNotParticipant
	}

	msg := models.Message{
		ConversationID: conv.ID,
		SenderID:       callerID,
		Content:        strings.TrimSpace(s.sanitizer.Sanitize(payload.Content)),
	}
	if msg.Content == "" {
		return dto.MessageResponse{}, errors.New("message content must not be empty after sanitization")
	}

	var notification *models.Notification
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.conversations.CreateMessage(ctx, tx, &msg); err != nil {
			return err
		}
		notification, err = s.events.MessageSent(ctx, tx, conv, msg)
		return err
	})
	if err != nil {
		return dto.MessageResponse{}, err
	}

	if notification != nil {
		s.notifications.Dispatch(ctx, *notification)
	}

	s.logger.Info().Uint("conversation_id", conv.ID).Uint("message_id", msg.ID).Msg("message sent")
	return dto.NewMessageResponse(msg), nil
}
