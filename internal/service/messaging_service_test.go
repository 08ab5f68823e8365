package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/funagig/funagig-api/internal/dto"
	"github.com/funagig/funagig-api/internal/models"
	"github.com/funagig/funagig-api/internal/repository"
)

func newMessagingService(t *testing.T, db *gorm.DB) MessagingService {
	t.Helper()

	notifications := NewNotificationService(
		repository.NewNotificationRepository(db), nil, "", 0, nil, testLogger())
	return NewMessagingService(
		db,
		repository.NewConversationRepository(db),
		repository.NewUserRepository(db),
		NewDomainEvents(testLogger()),
		notifications,
		testValidator(),
		testLogger(),
	)
}

func TestOpenConversationDeduplicatesPair(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	alice := seedUser(t, db, "Alice", models.UserTypeStudent)
	bob := seedUser(t, db, "Bob", models.UserTypeBusiness)
	messaging := newMessagingService(t, db)

	first, err := messaging.OpenConversation(context.Background(), alice.ID, dto.ConversationCreateRequest{UserID: bob.ID})
	require.NoError(t, err)

	// Opening from the other side must return the same conversation.
	second, err := messaging.OpenConversation(context.Background(), bob.ID, dto.ConversationCreateRequest{UserID: alice.ID})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestOpenConversationWithSelfIsRejected(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	alice := seedUser(t, db, "Alice", models.UserTypeStudent)
	messaging := newMessagingService(t, db)

	_, err := messaging.OpenConversation(context.Background(), alice.ID, dto.ConversationCreateRequest{UserID: alice.ID})
	require.ErrorIs(t, err, ErrSelfConversation)
}

func TestSendNotifiesRecipientAndAdvancesConversation(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	alice := seedUser(t, db, "Alice", models.UserTypeStudent)
	bob := seedUser(t, db, "Bob", models.UserTypeBusiness)
	messaging := newMessagingService(t, db)

	conv, err := messaging.OpenConversation(context.Background(), alice.ID, dto.ConversationCreateRequest{UserID: bob.ID})
	require.NoError(t, err)

	msg, err := messaging.Send(context.Background(), alice.ID, dto.MessageSendRequest{
		ConversationID: conv.ID,
		Content:        "hello there",
	})
	require.NoError(t, err)
	require.Equal(t, alice.ID, msg.SenderID)

	var reloaded models.Conversation
	require.NoError(t, db.First(&reloaded, conv.ID).Error)
	require.NotNil(t, reloaded.LastMessageAt)
	require.WithinDuration(t, msg.CreatedAt, *reloaded.LastMessageAt, time.Second)

	// The notification targets the recipient, never the sender.
	var notification models.Notification
	require.NoError(t, db.Where("title = ?", "New Message").First(&notification).Error)
	require.Equal(t, bob.ID, notification.UserID)
	require.Contains(t, notification.Message, "Alice")
}

func TestSendRequiresParticipation(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	alice := seedUser(t, db, "Alice", models.UserTypeStudent)
	bob := seedUser(t, db, "Bob", models.UserTypeBusiness)
	eve := seedUser(t, db, "Eve", models.UserTypeStudent)
	messaging := newMessagingService(t, db)

	conv, err := messaging.OpenConversation(context.Background(), alice.ID, dto.ConversationCreateRequest{UserID: bob.ID})
	require.NoError(t, err)

	_, err = messaging.Send(context.Background(), eve.ID, dto.MessageSendRequest{
		ConversationID: conv.ID,
		Content:        "let me in",
	})
	require.ErrorIs(t, err, ErrNotParticipant)

	_, err = messaging.ListMessages(context.Background(), eve.ID, conv.ID)
	require.ErrorIs(t, err, ErrNotParticipant)
}

func TestListMessagesReturnsChronologicalOrder(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	alice := seedUser(t, db, "Alice", models.UserTypeStudent)
	bob := seedUser(t, db, "Bob", models.UserTypeBusiness)
	messaging := newMessagingService(t, db)

	conv, err := messaging.OpenConversation(context.Background(), alice.ID, dto.ConversationCreateRequest{UserID: bob.ID})
	require.NoError(t, err)

	for _, content := range []string{"first", "second", "third"} {
		_, err := messaging.Send(context.Background(), alice.ID, dto.MessageSendRequest{
			ConversationID: conv.ID,
			Content:        content,
		})
		require.NoError(t, err)
	}

	msgs, err := messaging.ListMessages(context.Background(), bob.ID, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	require.Equal(t, "first", msgs[0].Content)
	require.Equal(t, "third", msgs[2].Content)
}
