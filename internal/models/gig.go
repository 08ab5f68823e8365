package models

import "time"

// Gig lifecycle states.
const (
	GigStatusActive = "active"
	GigStatusClosed = "closed"
)

// Gig represents a job posting owned by a business user.
//
// ApplicationCount is denormalized and must always equal the number of
// non-rejected applications for the gig; it is recomputed by the domain event
// layer after every application write, never maintained incrementally.
type Gig struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"index;not null" json:"user_id"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	Description      string    `gorm:"type:text;not null" json:"description"`
	Budget           float64   `gorm:"not null" json:"budget"`
	Deadline         time.Time `json:"deadline"`
	Skills           string    `gorm:"type:text" json:"skills,omitempty"`
	Location         string    `gorm:"size:255" json:"location,omitempty"`
	Type             string    `gorm:"size:64" json:"type,omitempty"`
	Status           string    `gorm:"size:32;not null;default:active;index" json:"status"`
	ApplicationCount int       `gorm:"not null;default:0" json:"application_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
