package models

import "time"

// Conversation pairs two users. The pair is unique regardless of who opened
// the conversation; LastMessageAt always equals the created_at of the most
// recent message in the conversation.
type Conversation struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	User1ID       uint       `gorm:"not null;uniqueIndex:uniq_conversation_pair" json:"user1_id"`
	User2ID       uint       `gorm:"not null;uniqueIndex:uniq_conversation_pair" json:"user2_id"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// OtherParticipant returns the participant that is not the given user.
func (c Conversation) OtherParticipant(userID uint) uint {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// HasParticipant reports whether the user belongs to the conversation.
func (c Conversation) HasParticipant(userID uint) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// Message is a single text payload inside a conversation.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"index;not null" json:"conversation_id"`
	SenderID       uint      `gorm:"index;not null" json:"sender_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	IsRead         bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}
