// Package repository implements data access layer for the application
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"propertyhub.app/models"
)

// InviteRepository handles data access operations for property invites
type InviteRepository struct {
	db *gorm.DB
}

// NewInviteRepository creates a new repository for invite data
func NewInviteRepository(db *gorm.DB) *InviteRepository {
	return &InviteRepository{db: db}
}

// Create persists a new invite with a fresh token
func (r *InviteRepository) Create(ctx context.Context, invite *models.Invite) error {
	if invite.ID == "" {
		invite.ID = uuid.NewString()
	}
	if invite.Token == "" {
		invite.Token = uuid.NewString()
	}
	if invite.ExpiresAt.IsZero() {
		invite.ExpiresAt = time.Now().Add(7 * 24 * time.Hour)
	}

	result := r.db.WithContext(ctx).Create(invite)
	return result.Error
}

// FindByID retrieves an invite by its ID
func (r *InviteRepository) FindByID(ctx context.Context, id string) (*models.Invite, error) {
	var invite models.Invite
	result := r.db.WithContext(ctx).First(&invite, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &invite, nil
}

// FindByToken retrieves an invite by its token
func (r *InviteRepository) FindByToken(ctx context.Context, token string) (*models.Invite, error) {
	var invite models.Invite
	result := r.db.WithContext(ctx).Where("token = ?", token).First(&invite)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &invite, nil
}

// MarkInviteSent records the timestamp at which the invite email was
// dispatched
func (r *InviteRepository) MarkInviteSent(ctx context.Context, inviteID string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Invite{}).
		Where("id = ?", inviteID).
		Update("sent_at", sentAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// DeleteExpired removes invites whose expiry has passed without acceptance
func (r *InviteRepository) DeleteExpired(ctx context.Context) error {
	result := r.db.WithContext(ctx).
		Where("expires_at < ? AND sent_at IS NOT NULL", time.Now()).
		Delete(&models.Invite{})
	return result.Error
}

// ReportRepository handles primary-store access for maintenance reports.
// The cache layer falls back here on a miss.
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new repository for report data
func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// FindByID retrieves a report by its ID
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	result := r.db.WithContext(ctx).First(&report, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &report, nil
}

// Save persists a report, creating or updating as needed
func (r *ReportRepository) Save(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}

	result := r.db.WithContext(ctx).Save(report)
	return result.Error
}
