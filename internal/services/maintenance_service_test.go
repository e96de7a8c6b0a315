package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bcflats_backend/internal/apperr"
	"bcflats_backend/internal/models"
)

func TestCreateMaintenanceRequest(t *testing.T) {
	db := newTestDB(t)
	svc := NewMaintenanceService(db, NewNotificationService(db))

	tenant := seedActiveTenant(t, db, "maint@example.com", "301")
	request, err := svc.CreateRequest(tenant.ID, MaintenanceInput{
		Title:       "Broken faucet",
		Description: "Kitchen sink drips all night",
		Priority:    models.MaintenancePriorityHigh,
	})
	require.NoError(t, err)
	require.Equal(t, models.MaintenanceStatusPending, request.Status)
	require.Equal(t, tenant.RoomID, request.RoomID)

	// staff broadcast lands as notification rows
	var broadcasts int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("type = ?", models.NotificationTypeMaintenance).
		Count(&broadcasts).Error)
	require.NotZero(t, broadcasts)
}

func TestCreateMaintenanceRequestGuards(t *testing.T) {
	db := newTestDB(t)
	svc := NewMaintenanceService(db, NewNotificationService(db))

	tenant := seedActiveTenant(t, db, "maint-guard@example.com", "302")

	_, err := svc.CreateRequest(tenant.ID, MaintenanceInput{})
	require.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.CreateRequest(9999, MaintenanceInput{Title: "Ghost"})
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))

	require.NoError(t, db.Model(tenant).Update("status", models.TenantStatusCheckedOut).Error)
	_, err = svc.CreateRequest(tenant.ID, MaintenanceInput{Title: "Too late"})
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestMaintenanceStatusTransitions(t *testing.T) {
	db := newTestDB(t)
	svc := NewMaintenanceService(db, NewNotificationService(db))

	tenant := seedActiveTenant(t, db, "maint-status@example.com", "303")
	request, err := svc.CreateRequest(tenant.ID, MaintenanceInput{Title: "Loose hinge"})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(request.ID, models.MaintenanceStatusOngoing)
	require.NoError(t, err)
	require.Equal(t, models.MaintenanceStatusOngoing, updated.Status)

	_, err = svc.UpdateStatus(request.ID, models.MaintenanceStatusPending)
	require.True(t, apperr.IsKind(err, apperr.KindInvalidState))

	updated, err = svc.UpdateStatus(request.ID, models.MaintenanceStatusFixed)
	require.NoError(t, err)
	require.Equal(t, models.MaintenanceStatusFixed, updated.Status)

	_, err = svc.UpdateStatus(request.ID, models.MaintenanceStatusOngoing)
	require.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestMaintenancePendingSkipsStraightToFixed(t *testing.T) {
	db := newTestDB(t)
	svc := NewMaintenanceService(db, NewNotificationService(db))

	tenant := seedActiveTenant(t, db, "maint-skip@example.com", "304")
	request, err := svc.CreateRequest(tenant.ID, MaintenanceInput{Title: "Flickering light"})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(request.ID, models.MaintenanceStatusFixed)
	require.NoError(t, err)
	require.Equal(t, models.MaintenanceStatusFixed, updated.Status)
}

func TestListRequestsOrdersByPriority(t *testing.T) {
	db := newTestDB(t)
	svc := NewMaintenanceService(db, NewNotificationService(db))

	tenant := seedActiveTenant(t, db, "maint-list@example.com", "305")
	_, err := svc.CreateRequest(tenant.ID, MaintenanceInput{Title: "Low first", Priority: models.MaintenancePriorityLow})
	require.NoError(t, err)
	_, err = svc.CreateRequest(tenant.ID, MaintenanceInput{Title: "High second", Priority: models.MaintenancePriorityHigh})
	require.NoError(t, err)

	requests, err := svc.ListRequests("", tenant.ID)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	require.Equal(t, "High second", requests[0].Title)
}

func TestDeleteMaintenanceRequest(t *testing.T) {
	db := newTestDB(t)
	svc := NewMaintenanceService(db, NewNotificationService(db))

	tenant := seedActiveTenant(t, db, "maint-del@example.com", "306")
	request, err := svc.CreateRequest(tenant.ID, MaintenanceInput{Title: "Stuck window"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRequest(request.ID))
	err = svc.DeleteRequest(request.ID)
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
