package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/funagig/funagig-api/internal/models"
)

// ConversationRepository handles persistence for conversations and messages.
type ConversationRepository interface {
	Create(ctx context.Context, conv *models.Conversation) error
	FindByID(ctx context.Context, id uint) (models.Conversation, error)
	FindByPair(ctx context.Context, user1ID, user2ID uint) (models.Conversation, error)
	ListByParticipant(ctx context.Context, userID uint) ([]models.Conversation, error)
	CreateMessage(ctx context.Context, tx *gorm.DB, msg *models.Message) error
	ListMessages(ctx context.Context, conversationID uint) ([]models.Message, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository constructs a repository backed by GORM.
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(ctx context.Context, conv *models.Conversation) error {
	return r.db.WithContext(ctx).Create(conv).Error
}

func (r *conversationRepository) FindByID(ctx context.Context, id uint) (models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.WithContext(ctx).First(&conv, id).Error; err != nil {
		return models.Conversation{}, err
	}
	return conv, nil
}

func (r *conversationRepository) FindByPair(ctx context.Context, user1ID, user2ID uint) (models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.WithContext(ctx).
		Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)",
			user1ID, user2ID, user2ID, user1ID).
		First(&conv).Error; err != nil {
		return models.Conversation{}, err
	}
	return conv, nil
}

func (r *conversationRepository) ListByParticipant(ctx context.Context, userID uint) ([]models.Conversation, error) {
	var convs []models.Conversation
	if err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("last_message_at DESC").
		Find(&convs).Error; err != nil {
		return nil, err
	}
	return convs, nil
}

func (r *conversationRepository) CreateMessage(ctx context.Context, tx *gorm.DB, msg *models.Message) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(msg).Error
}

func (r *conversationRepository) ListMessages(ctx context.Context, conversationID uint) ([]models.Message, error) {
	var msgs []models.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}
