package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bcflats_backend/internal/apperr"
	"bcflats_backend/internal/models"
)

func TestCreateTenant_DefaultsFromRoom(t *testing.T) {
	db := newTestDB(t)
	account := seedAccount(t, db, "maria@example.com")
	room := seedRoom(t, db, "201")
	tenants := NewTenantService(db, NewNotificationService(db))

	tenant, err := tenants.CreateTenant(TenantInput{
		AccountID: account.ID,
		RoomID:    room.ID,
		BedNumber: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, models.TenantStatusPending, tenant.Status)
	requireDecimalEqual(t, 10000, tenant.MonthlyRent)
	requireDecimalEqual(t, 1000, tenant.Utilities)
	requireDecimalEqual(t, 10000, tenant.Deposit)
	requireDecimalEqual(t, 0, tenant.OutstandingBalance)

	// Occupancy is not counted until check-in.
	var unchanged models.Room
	require.NoError(t, db.First(&unchanged, room.ID).Error)
	assert.Equal(t, 0, unchanged.OccupiedBeds)
}

func TestCreateTenant_BedConflict(t *testing.T) {
	db := newTestDB(t)
	first := seedAccount(t, db, "maria@example.com")
	second := seedAccount(t, db, "juan@example.com")
	room := seedRoom(t, db, "201")
	tenants := NewTenantService(db, NewNotificationService(db))

	_, err := tenants.CreateTenant(TenantInput{AccountID: first.ID, RoomID: room.ID, BedNumber: 1})
	require.NoError(t, err)

	_, err = tenants.CreateTenant(TenantInput{AccountID: second.ID, RoomID: room.ID, BedNumber: 1})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestCreateTenant_RejectsSecondOpenTenancy(t *testing.T) {
	db := newTestDB(t)
	account := seedAccount(t, db, "maria@example.com")
	room := seedRoom(t, db, "201")
	tenants := NewTenantService(db, NewNotificationService(db))

	_, err := tenants.CreateTenant(TenantInput{AccountID: account.ID, RoomID: room.ID, BedNumber: 1})
	require.NoError(t, err)

	_, err = tenants.CreateTenant(TenantInput{AccountID: account.ID, RoomID: room.ID, BedNumber: 2})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestCreateTenant_BedBeyondRoomCapacity(t *testing.T) {
	db := newTestDB(t)
	account := seedAccount(t, db, "maria@example.com")
	room := seedRoom(t, db, "201")
	tenants := NewTenantService(db, NewNotificationService(db))

	_, err := tenants.CreateTenant(TenantInput{AccountID: account.ID, RoomID: room.ID, BedNumber: 5})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCheckIn_ActivatesTenantRoomAndAccount(t *testing.T) {
	db := newTestDB(t)
	account := seedAccount(t, db, "maria@example.com")
	require.NoError(t, db.Model(account).Update("status", models.AccountStatusPending).Error)
	room := seedRoom(t, db, "201")
	tenants := NewTenantService(db, NewNotificationService(db))

	created, err := tenants.CreateTenant(TenantInput{
		AccountID:  account.ID,
		RoomID:     room.ID,
		BedNumber:  1,
		LeaseStart: time.Now(),
	})
	require.NoError(t, err)

	activated, err := tenants.CheckIn(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TenantStatusActive, activated.Status)
	assert.False(t, activated.CheckInDate.IsZero())

	var refreshedRoom models.Room
	require.NoError(t, db.First(&refreshedRoom, room.ID).Error)
	assert.Equal(t, 1, refreshedRoom.OccupiedBeds)
	assert.Equal(t, models.RoomStatusPartiallyOccupied, refreshedRoom.Status)

	var refreshedAccount models.Account
	require.NoError(t, db.First(&refreshedAccount, account.ID).Error)
	assert.Equal(t, models.AccountStatusActive, refreshedAccount.Status)
}

func TestCheckIn_OnlyPendingTenants(t *testing.T) {
	db := newTestDB(t)
	tenant := seedActiveTenant(t, db, "maria@example.com", "201")
	tenants := NewTenantService(db, NewNotificationService(db))

	_, err := tenants.CheckIn(tenant.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestUpdateStatus_CheckedOutMustUseArchive(t *testing.T) {
	db := newTestDB(t)
	tenant := seedActiveTenant(t, db, "maria@example.com", "201")
	tenants := NewTenantService(db, NewNotificationService(db))

	_, err := tenants.UpdateStatus(tenant.ID, models.TenantStatusCheckedOut)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestDeleteTenant_OnlyPending(t *testing.T) {
	db := newTestDB(t)
	tenant := seedActiveTenant(t, db, "maria@example.com", "201")
	tenants := NewTenantService(db, NewNotificationService(db))

	err := tenants.DeleteTenant(tenant.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestListTenants_SearchAndPagination(t *testing.T) {
	db := newTestDB(t)
	seedActiveTenant(t, db, "maria@example.com", "201")
	seedActiveTenant(t, db, "juan@example.com", "202")
	tenants := NewTenantService(db, NewNotificationService(db))

	found, total, err := tenants.ListTenants(TenantListFilter{Search: "maria"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, found, 1)
	assert.Equal(t, "maria@example.com", found[0].Account.Email)

	all, total, err := tenants.ListTenants(TenantListFilter{PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 1)
}
