package models

import "time"

// User roles supported by the marketplace.
const (
	UserTypeStudent  = "student"
	UserTypeBusiness = "business"
)

// User represents a marketplace account, either a student or a business.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Type         string    `gorm:"size:32;not null;default:student" json:"type"`
	University   string    `gorm:"size:255" json:"university,omitempty"`
	Major        string    `gorm:"size:255" json:"major,omitempty"`
	Industry     string    `gorm:"size:255" json:"industry,omitempty"`
	Skills       string    `gorm:"type:text" json:"skills,omitempty"`
	Location     string    `gorm:"size:255" json:"location,omitempty"`
	Phone        string    `gorm:"size:64" json:"phone,omitempty"`
	Website      string    `gorm:"size:255" json:"website,omitempty"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
