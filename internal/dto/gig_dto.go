package dto

import (
	"time"

	"github.com/funagig/funagig-api/internal/models"
)

// GigCreateRequest is the payload to post a new gig.
type GigCreateRequest struct {
	Title       string    `json:"title" validate:"required,min=3,max=255"`
	Description string    `json:"description" validate:"required,min=10"`
	Budget      float64   `json:"budget" validate:"required,gt=0"`
	Deadline    time.Time `json:"deadline" validate:"required"`
	Skills      string    `json:"skills" validate:"omitempty,max=1000"`
	Location    string    `json:"location" validate:"omitempty,max=255"`
	Type        string    `json:"type" validate:"omitempty,oneof=one-time ongoing"`
}

// GigResponse is the serialized representation of a gig.
type GigResponse struct {
	ID               uint      `json:"id"`
	UserID           uint      `json:"user_id"`
	BusinessName     string    `json:"business_name,omitempty"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Budget           float64   `json:"budget"`
	Deadline         time.Time `json:"deadline"`
	Skills           string    `json:"skills,omitempty"`
	Location         string    `json:"location,omitempty"`
	Type             string    `json:"type,omitempty"`
	Status           string    `json:"status"`
	ApplicationCount int       `json:"application_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewGigResponse converts a gig model into a DTO.
func NewGigResponse(gig models.Gig) GigResponse {
	return GigResponse{
		ID:               gig.ID,
		UserID:           gig.UserID,
		Title:            gig.Title,
		Description:      gig.Description,
		Budget:           gig.Budget,
		Deadline:         gig.Deadline,
		Skills:           gig.Skills,
		Location:         gig.Location,
		Type:             gig.Type,
		Status:           gig.Status,
		ApplicationCount: gig.ApplicationCount,
		CreatedAt:        gig.CreatedAt,
	}
}

// NewGigResponseSlice converts a slice of gig models into DTOs.
func NewGigResponseSlice(gigs []models.Gig) []GigResponse {
	out := make([]GigResponse, 0, len(gigs))
	for _, gig := range gigs {
		out = append(out, NewGigResponse(gig))
	}
	return out
}
