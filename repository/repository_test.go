package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"propertyhub.app/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Invite{}, &models.Report{}))

	return db
}

func TestInviteRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateFillsDefaults", func(t *testing.T) {
		repo := NewInviteRepository(setupDB(t))

		invite := &models.Invite{PropertyID: "prop-1", Email: "tenant@example.com"}
		require.NoError(t, repo.Create(ctx, invite))

		assert.NotEmpty(t, invite.ID)
		assert.NotEmpty(t, invite.Token)
		assert.True(t, invite.ExpiresAt.After(time.Now()))
	})

	t.Run("FindByToken", func(t *testing.T) {
		repo := NewInviteRepository(setupDB(t))

		invite := &models.Invite{PropertyID: "prop-1", Email: "tenant@example.com"}
		require.NoError(t, repo.Create(ctx, invite))

		found, err := repo.FindByToken(ctx, invite.Token)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, invite.ID, found.ID)

		missing, err := repo.FindByToken(ctx, "no-such-token")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("MarkInviteSent", func(t *testing.T) {
		repo := NewInviteRepository(setupDB(t))

		invite := &models.Invite{PropertyID: "prop-1", Email: "tenant@example.com"}
		require.NoError(t, repo.Create(ctx, invite))

		sentAt := time.Now()
		require.NoError(t, repo.MarkInviteSent(ctx, invite.ID, sentAt))

		found, err := repo.FindByID(ctx, invite.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		require.NotNil(t, found.SentAt)
		assert.WithinDuration(t, sentAt, *found.SentAt, time.Second)
	})

	t.Run("MarkInviteSentMissingRow", func(t *testing.T) {
		repo := NewInviteRepository(setupDB(t))

		err := repo.MarkInviteSent(ctx, "no-such-invite", time.Now())
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("DeleteExpired", func(t *testing.T) {
		repo := NewInviteRepository(setupDB(t))

		sent := time.Now().Add(-8 * 24 * time.Hour)
		expired := &models.Invite{
			PropertyID: "prop-1",
			Email:      "old@example.com",
			ExpiresAt:  time.Now().Add(-time.Hour),
			SentAt:     &sent,
		}
		require.NoError(t, repo.Create(ctx, expired))

		active := &models.Invite{PropertyID: "prop-1", Email: "new@example.com"}
		require.NoError(t, repo.Create(ctx, active))

		require.NoError(t, repo.DeleteExpired(ctx))

		gone, err := repo.FindByID(ctx, expired.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)

		kept, err := repo.FindByID(ctx, active.ID)
		require.NoError(t, err)
		assert.NotNil(t, kept)
	})
}

func TestReportRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("SaveAndFind", func(t *testing.T) {
		repo := NewReportRepository(setupDB(t))

		report := &models.Report{PropertyID: "prop-1", TenantID: "tenant-1", Title: "Broken window"}
		require.NoError(t, repo.Save(ctx, report))
		assert.NotEmpty(t, report.ID)

		found, err := repo.FindByID(ctx, report.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Broken window", found.Title)
	})

	t.Run("MissingReportIsNil", func(t *testing.T) {
		repo := NewReportRepository(setupDB(t))

		found, err := repo.FindByID(ctx, "no-such-report")
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}
