package dto

import (
	"time"

	"github.com/funagig/funagig-api/internal/models"
)

// ApplicationCreateRequest is the payload to apply for a gig.
type ApplicationCreateRequest struct {
	GigID   uint   `json:"gig_id" validate:"required"`
	Message string `json:"message" validate:"omitempty,max=4000"`
}

// ApplicationStatusRequest updates the status of an application.
type ApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending accepted rejected completed"`
}

// ApplicationResponse is the serialized representation of an application.
type ApplicationResponse struct {
	ID          uint       `json:"id"`
	UserID      uint       `json:"user_id"`
	GigID       uint       `json:"gig_id"`
	Message     string     `json:"message,omitempty"`
	Status      string     `json:"status"`
	AppliedAt   time.Time  `json:"applied_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewApplicationResponse converts an application model into a DTO.
func NewApplicationResponse(app models.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:          app.ID,
		UserID:      app.UserID,
		GigID:       app.GigID,
		Message:     app.Message,
		Status:      app.Status,
		AppliedAt:   app.AppliedAt,
		RespondedAt: app.RespondedAt,
		CompletedAt: app.CompletedAt,
	}
}

// NewApplicationResponseSlice converts a slice of application models into DTOs.
func NewApplicationResponseSlice(apps []models.Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, NewApplicationResponse(app))
	}
	return out
}
