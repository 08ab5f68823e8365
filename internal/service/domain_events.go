package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/funagig/funagig-api/internal/models"
	"github.com/funagig/funagig-api/internal/observability"
)

// DomainEvents replaces the database triggers of the legacy schema with
// explicit synthesis hooks. Every notification-worthy domain write calls the
// matching hook inside its own transaction: derived counters share the
// transaction and abort it on failure, while notification composition is
// best-effort: a missing referenced row is logged and swallowed so the
// parent write still commits.
type DomainEvents struct {
	logger zerolog.Logger
}

// NewDomainEvents constructs the event composer.
func NewDomainEvents(logger zerolog.Logger) *DomainEvents {
	return &DomainEvents{
		logger: logger.With().Str("component", "domain_events").Logger(),
	}
}

// ApplicationCreated recomputes the gig's application counter and composes a
// notification for the gig owner.
func (e *DomainEvents) ApplicationCreated(ctx context.Context, tx *gorm.DB, app models.Application) (*models.Notification, error) {
	if err := e.recomputeApplicationCount(ctx, tx, app.GigID); err != nil {
		return nil, err
	}

	var gig models.Gig
	if err := tx.WithContext(ctx).First(&gig, app.GigID).Error; err != nil {
		e.swallow(err, "application notification skipped, gig missing", app.GigID)
		return nil, nil
	}

	var applicant models.User
	if err := tx.WithContext(ctx).First(&applicant, app.UserID).Error; err != nil {
		e.swallow(err, "application notification skipped, applicant missing", app.UserID)
		return nil, nil
	}

	notification := models.Notification{
		UserID:  gig.UserID,
		Title:   "New Application Received",
		Message: fmt.Sprintf("%s has applied to your gig: %s", applicant.Name, gig.Title),
		Type:    models.NotificationTypeInfo,
		Data:    applicationData(app),
	}
	return e.insert(ctx, tx, notification)
}

// ApplicationStatusChanged recomputes the counter and notifies the applicant
// using the fixed status→copy mapping. Callers must not invoke it when the
// status did not actually change.
func (e *DomainEvents) ApplicationStatusChanged(ctx context.Context, tx *gorm.DB, app models.Application) (*models.Notification, error) {
	if err := e.recomputeApplicationCount(ctx, tx, app.GigID); err != nil {
		return nil, err
	}

	var gig models.Gig
	if err := tx.WithContext(ctx).First(&gig, app.GigID).Error; err != nil {
		e.swallow(err, "status notification skipped, gig missing", app.GigID)
		return nil, nil
	}

	title, message, kind := statusNotification(app.Status, gig.Title)
	notification := models.Notification{
		UserID:  app.UserID,
		Title:   title,
		Message: message,
		Type:    kind,
		Data:    applicationData(app),
	}
	return e.insert(ctx, tx, notification)
}

// ApplicationDeleted recomputes the counter; a withdrawal produces no notification.
func (e *DomainEvents) ApplicationDeleted(ctx context.Context, tx *gorm.DB, app models.Application) error {
	return e.recomputeApplicationCount(ctx, tx, app.GigID)
}

// MessageSent advances the conversation's last_message_at and composes a
// notification for the participant who did not send the message.
func (e *DomainEvents) MessageSent(ctx context.Context, tx *gorm.DB, conv models.Conversation, msg models.Message) (*models.Notification, error) {
	if err := tx.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", conv.ID).
		Update("last_message_at", msg.CreatedAt).Error; err != nil {
		return nil, err
	}

	var sender models.User
	if err := tx.WithContext(ctx).First(&sender, msg.SenderID).Error; err != nil {
		e.swallow(err, "message notification skipped, sender missing", msg.SenderID)
		return nil, nil
	}

	notification := models.Notification{
		UserID:  conv.OtherParticipant(msg.SenderID),
		Title:   "New Message",
		Message: fmt.Sprintf("%s sent you a message", sender.Name),
		Type:    models.NotificationTypeInfo,
		Data: datatypes.JSONMap{
			"conversation_id": strconv.FormatUint(uint64(conv.ID), 10),
		},
	}
	return e.insert(ctx, tx, notification)
}

// UserCreated composes the welcome notification for a freshly signed-up
// account. The row is born already read so it decorates the notification
// list without inflating the unread badge.
func (e *DomainEvents) UserCreated(ctx context.Context, tx *gorm.DB, user models.User) (*models.Notification, error) {
	var message string
	switch user.Type {
	case models.UserTypeStudent:
		message = "Welcome! Start exploring gigs and building your portfolio."
	case models.UserTypeBusiness:
		message = "Welcome! Start posting gigs and finding talented students."
	default:
		message = "Welcome to FunaGig!"
	}

	notification := models.Notification{
		UserID:  user.ID,
		Title:   "Welcome to FunaGig!",
		Message: message,
		Type:    models.NotificationTypeSuccess,
		IsRead:  true,
	}
	return e.insert(ctx, tx, notification)
}

// recomputeApplicationCount restores the invariant that a gig's counter
// equals its number of non-rejected applications. Counter failures abort the
// surrounding transaction.
func (e *DomainEvents) recomputeApplicationCount(ctx context.Context, tx *gorm.DB, gigID uint) error {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&models.Application{}).
		Where("gig_id = ? AND status != ?", gigID, models.ApplicationStatusRejected).
		Count(&count).Error; err != nil {
		return err
	}

	return tx.WithContext(ctx).
		Model(&models.Gig{}).
		Where("id = ?", gigID).
		Update("application_count", count).Error
}

func (e *DomainEvents) insert(ctx context.Context, tx *gorm.DB, notification models.Notification) (*models.Notification, error) {
	if err := tx.WithContext(ctx).Create(&notification).Error; err != nil {
		e.swallow(err, "notification insert failed", notification.UserID)
		return nil, nil
	}
	return &notification, nil
}

func (e *DomainEvents) swallow(err error, msg string, id uint) {
	observability.NotificationComposeErrors().Inc()
	e.logger.Warn().Err(err).Uint("ref_id", id).Msg(msg)
}

func statusNotification(status, gigTitle string) (title, message, kind string) {
	switch status {
	case models.ApplicationStatusAccepted:
		return "Application Accepted!",
			fmt.Sprintf("Congratulations! Your application for %q has been accepted.", gigTitle),
			models.NotificationTypeSuccess
	case models.ApplicationStatusRejected:
		return "Application Status Update",
			fmt.Sprintf("Your application for %q was not selected this time.", gigTitle),
			models.NotificationTypeWarning
	case models.ApplicationStatusCompleted:
		return "Project Completed",
			fmt.Sprintf("Your project %q has been marked as completed.", gigTitle),
			models.NotificationTypeSuccess
	default:
		return "Application Status Update",
			fmt.Sprintf("Your application for %q status has been updated.", gigTitle),
			models.NotificationTypeInfo
	}
}

func applicationData(app models.Application) datatypes.JSONMap {
	return datatypes.JSONMap{
		"gig_id":         strconv.FormatUint(uint64(app.GigID), 10),
		"application_id": strconv.FormatUint(uint64(app.ID), 10),
	}
}
