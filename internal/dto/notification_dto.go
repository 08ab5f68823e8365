package dto

import (
	"time"

	"github.com/funagig/funagig-api/internal/models"
)

// MarkReadRequest identifies the notification to flip to read.
type MarkReadRequest struct {
	NotificationID uint `json:"notification_id" validate:"required"`
}

// NotificationResponse represents notification data returned to clients.
type NotificationResponse struct {
	ID        uint              `json:"id"`
	UserID    uint              `json:"user_id"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Type      string            `json:"type"`
	IsRead    bool              `json:"is_read"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewNotificationResponse converts a notification model to DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	response := NotificationResponse{
		ID:        model.ID,
		UserID:    model.UserID,
		Title:     model.Title,
		Message:   model.Message,
		Type:      model.Type,
		IsRead:    model.IsRead,
		CreatedAt: model.CreatedAt,
	}
	if model.Data != nil {
		response.Data = make(map[string]string)
		for key, value := range model.Data {
			if str, ok := value.(string); ok {
				response.Data[key] = str
			}
		}
	}
	return response
}

// NewNotificationResponseSlice converts a slice to DTOs.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNotificationResponse(item))
	}
	return out
}
