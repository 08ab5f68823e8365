package models

import "time"

// Application statuses.
const (
	ApplicationStatusPending   = "pending"
	ApplicationStatusAccepted  = "accepted"
	ApplicationStatusRejected  = "rejected"
	ApplicationStatusCompleted = "completed"
)

// Application links a student to a gig they applied for. At most one
// application may exist per (user, gig) pair.
type Application struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;uniqueIndex:uniq_user_gig" json:"user_id"`
	GigID       uint       `gorm:"not null;uniqueIndex:uniq_user_gig;index:idx_applications_gig_status" json:"gig_id"`
	Message     string     `gorm:"type:text" json:"message,omitempty"`
	Status      string     `gorm:"size:32;not null;default:pending;index:idx_applications_gig_status" json:"status"`
	AppliedAt   time.Time  `gorm:"autoCreateTime" json:"applied_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
