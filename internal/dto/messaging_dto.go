package dto

import (
	"time"

	"github.com/funagig/funagig-api/internal/models"
)

// ConversationCreateRequest opens a conversation with another user.
type ConversationCreateRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

// MessageSendRequest posts a message into an existing conversation.
type MessageSendRequest struct {
	ConversationID uint   `json:"conversation_id" validate:"required"`
	Content        string `json:"content" validate:"required,min=1,max=4000"`
}

// ConversationResponse is the serialized representation of a conversation.
type ConversationResponse struct {
	ID            uint       `json:"id"`
	User1ID       uint       `json:"user1_id"`
	User2ID       uint       `json:"user2_id"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// MessageResponse is the serialized representation of a message.
type MessageResponse struct {
	ID             uint      `json:"id"`
	ConversationID uint      `json:"conversation_id"`
	SenderID       uint      `json:"sender_id"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewConversationResponse converts a conversation model into a DTO.
func NewConversationResponse(conv models.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:            conv.ID,
		User1ID:       conv.User1ID,
		User2ID:       conv.User2ID,
		LastMessageAt: conv.LastMessageAt,
		CreatedAt:     conv.CreatedAt,
	}
}

// NewConversationResponseSlice converts conversations into DTOs.
func NewConversationResponseSlice(convs []models.Conversation) []ConversationResponse {
	out := make([]ConversationResponse, 0, len(convs))
	for _, conv := range convs {
		out = append(out, NewConversationResponse(conv))
	}
	return out
}

// NewMessageResponse converts a message model into a DTO.
func NewMessageResponse(msg models.Message) MessageResponse {
	return MessageResponse{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Content:        msg.Content,
		IsRead:         msg.IsRead,
		CreatedAt:      msg.CreatedAt,
	}
}

// NewMessageResponseSlice converts messages into DTOs.
func NewMessageResponseSlice(msgs []models.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, NewMessageResponse(msg))
	}
	return out
}
