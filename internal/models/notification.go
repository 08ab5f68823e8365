package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification severities surfaced to clients.
const (
	NotificationTypeInfo    = "info"
	NotificationTypeSuccess = "success"
	NotificationTypeWarning = "warning"
	NotificationTypeError   = "error"
)

// Notification records a domain event targeted at a single user. Rows are
// created exclusively by server-side event composition, mutated only to flip
// IsRead, and read by the polling/streaming endpoints using created_at as the
// cursor.
type Notification struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    uint              `gorm:"not null;index:idx_notifications_user_created,priority:1" json:"user_id"`
	Title     string            `gorm:"size:255;not null" json:"title"`
	Message   string            `gorm:"type:text;not null" json:"message"`
	Type      string            `gorm:"size:32;not null;default:info" json:"type"`
	IsRead    bool              `gorm:"not null;default:false" json:"is_read"`
	Data      datatypes.JSONMap `gorm:"type:json" json:"data,omitempty"`
	CreatedAt time.Time         `gorm:"index:idx_notifications_user_created,priority:2" json:"created_at"`
}
