// Package models defines data structures shared across the application
package models

import (
	"time"

	"gorm.io/gorm"
)

// Report represents a maintenance report filed against a property unit
type Report struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	PropertyID  string    `json:"property_id" gorm:"index;not null"`
	TenantID    string    `json:"tenant_id" gorm:"index;not null"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	Status      string    `json:"status" gorm:"default:open"`
	Comments    []Comment `json:"comments" gorm:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Comment represents a single comment attached to a report
type Comment struct {
	ID        string    `json:"id"`
	ReportID  string    `json:"report_id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionSnapshot is a denormalized view of the current user, cached so
// authenticated requests can skip the primary-store lookup
type SessionSnapshot struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	TenantID  string    `json:"tenant_id"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Invite represents an invitation for a tenant to join a property
type Invite struct {
	ID         string         `json:"id" gorm:"primaryKey"`
	PropertyID string         `json:"property_id" gorm:"index;not null"`
	Email      string         `json:"email" gorm:"index;not null"`
	Token      string         `json:"token" gorm:"uniqueIndex;not null"`
	SentAt     *time.Time     `json:"sent_at"`
	ExpiresAt  time.Time      `json:"expires_at"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// ErrorResponse represents an error message structure for API responses
type ErrorResponse struct {
	Error string `json:"error"`
}
