package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bcflats_backend/internal/apperr"
	"bcflats_backend/internal/models"
)

func TestListForAccountMergesDirectAndBroadcast(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)

	account := seedAccount(t, db, "notif@example.com")
	other := seedAccount(t, db, "notif-other@example.com")

	require.NoError(t, svc.Notify(account.ID, models.RoleTenant,
		models.NotificationTypePayment, "Payment received", "Your payment was recorded.", nil))
	require.NoError(t, svc.Notify(other.ID, models.RoleTenant,
		models.NotificationTypePayment, "Payment received", "Not yours.", nil))
	require.NoError(t, svc.BroadcastToRoles([]models.Role{models.RoleTenant},
		models.NotificationTypeSystem, "House rules", "Quiet hours start at 10pm.", nil))
	require.NoError(t, svc.BroadcastToRoles([]models.Role{models.RoleAdmin},
		models.NotificationTypeSystem, "Staff only", "Not for tenants.", nil))

	list, err := svc.ListForAccount(account.ID, models.RoleTenant, false, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, n := range list {
		require.NotEqual(t, "Not yours.", n.Message)
		require.NotEqual(t, "Not for tenants.", n.Message)
	}
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)

	account := seedAccount(t, db, "notif-read@example.com")
	require.NoError(t, svc.Notify(account.ID, models.RoleTenant,
		models.NotificationTypeBilling, "Charges posted", "First", nil))
	require.NoError(t, svc.Notify(account.ID, models.RoleTenant,
		models.NotificationTypeBilling, "Charges posted", "Second", nil))

	count, err := svc.UnreadCount(account.ID, models.RoleTenant)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	list, err := svc.ListForAccount(account.ID, models.RoleTenant, true, 0)
	require.NoError(t, err)
	require.NoError(t, svc.MarkRead(list[0].ID))

	count, err = svc.UnreadCount(account.ID, models.RoleTenant)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	require.NoError(t, svc.MarkAllRead(account.ID, models.RoleTenant))
	count, err = svc.UnreadCount(account.ID, models.RoleTenant)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestMarkReadUnknownID(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)

	err := svc.MarkRead(4242)
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
