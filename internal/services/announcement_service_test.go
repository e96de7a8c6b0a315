package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bcflats_backend/internal/apperr"
	"bcflats_backend/internal/models"
)

func seedAnnouncementService(t *testing.T) (*AnnouncementService, *models.Account) {
	t.Helper()
	db := newTestDB(t)
	staff := seedAccount(t, db, "admin@example.com")
	return NewAnnouncementService(db, NewNotificationService(db)), staff
}

func TestAnnouncementLifecycle(t *testing.T) {
	announcements, staff := seedAnnouncementService(t)

	draft, err := announcements.CreateAnnouncement(AnnouncementInput{
		Title:       "Water interruption",
		Message:     "No water on Saturday morning.",
		TargetRoles: []models.Role{models.RoleTenant},
	}, staff.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnnouncementStatusDraft, draft.Status)
	assert.Equal(t, models.AnnouncementPriorityMedium, draft.Priority)

	published, err := announcements.Publish(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnnouncementStatusPublished, published.Status)

	// Publishing twice conflicts.
	_, err = announcements.Publish(draft.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	// A published announcement cannot be deleted.
	err = announcements.DeleteAnnouncement(draft.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))

	suspended, err := announcements.Suspend(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnnouncementStatusSuspended, suspended.Status)

	require.NoError(t, announcements.DeleteAnnouncement(draft.ID))
}

func TestListActiveForRole_FiltersTargetAndExpiry(t *testing.T) {
	announcements, staff := seedAnnouncementService(t)

	forTenants, err := announcements.CreateAnnouncement(AnnouncementInput{
		Title: "For tenants", Message: "m",
		TargetRoles: []models.Role{models.RoleTenant},
	}, staff.ID)
	require.NoError(t, err)
	_, err = announcements.Publish(forTenants.ID)
	require.NoError(t, err)

	forStaff, err := announcements.CreateAnnouncement(AnnouncementInput{
		Title: "For staff", Message: "m",
		TargetRoles: []models.Role{models.RoleAdmin},
	}, staff.ID)
	require.NoError(t, err)
	_, err = announcements.Publish(forStaff.ID)
	require.NoError(t, err)

	visible, err := announcements.ListActiveForRole(models.RoleTenant)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "For tenants", visible[0].Title)
}

func TestExpireDue(t *testing.T) {
	announcements, staff := seedAnnouncementService(t)

	expiry := time.Now().Add(time.Hour)
	a, err := announcements.CreateAnnouncement(AnnouncementInput{
		Title: "Short lived", Message: "m",
		TargetRoles: []models.Role{models.RoleTenant},
		ExpiresAt:   &expiry,
	}, staff.ID)
	require.NoError(t, err)
	_, err = announcements.Publish(a.ID)
	require.NoError(t, err)

	// Sweep before expiry: nothing happens.
	swept, err := announcements.ExpireDue(time.Now())
	require.NoError(t, err)
	assert.Zero(t, swept)

	// Sweep after expiry.
	swept, err = announcements.ExpireDue(time.Now().Add(2 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	refreshed, err := announcements.GetAnnouncementByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnnouncementStatusExpired, refreshed.Status)
}
