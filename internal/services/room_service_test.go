package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"bcflats_backend/internal/apperr"
	"bcflats_backend/internal/models"
)

func TestCreateRoomDefaults(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db)

	room, err := svc.CreateRoom(RoomInput{RoomNumber: "201"})
	require.NoError(t, err)
	require.Equal(t, "Main Building", room.Building)
	require.Equal(t, models.RoomTypeStandard, room.RoomType)
	require.Equal(t, 4, room.TotalBeds)
	require.Equal(t, models.RoomStatusAvailable, room.Status)
}

func TestCreateRoomDuplicateNumber(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db)

	_, err := svc.CreateRoom(RoomInput{RoomNumber: "202"})
	require.NoError(t, err)

	_, err = svc.CreateRoom(RoomInput{RoomNumber: "202"})
	require.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestCreateRoomValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db)

	_, err := svc.CreateRoom(RoomInput{})
	require.True(t, apperr.IsKind(err, apperr.KindValidation))

	beds := 0
	_, err = svc.CreateRoom(RoomInput{RoomNumber: "203", TotalBeds: &beds})
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestUpdateRoomCannotShrinkBelowOccupancy(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db)

	room := seedRoom(t, db, "204")
	room.OccupiedBeds = 3
	room.RecomputeStatus()
	require.NoError(t, db.Save(room).Error)

	beds := 2
	_, err := svc.UpdateRoom(room.ID, RoomInput{TotalBeds: &beds})
	require.True(t, apperr.IsKind(err, apperr.KindConflict))

	beds = 6
	updated, err := svc.UpdateRoom(room.ID, RoomInput{TotalBeds: &beds})
	require.NoError(t, err)
	require.Equal(t, 6, updated.TotalBeds)
}

func TestSetMaintenancePreservedAndRestored(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db)

	room := seedRoom(t, db, "205")
	room.OccupiedBeds = 4
	room.RecomputeStatus()
	require.NoError(t, db.Save(room).Error)
	require.Equal(t, models.RoomStatusFullyOccupied, room.Status)

	flagged, err := svc.SetMaintenance(room.ID, true)
	require.NoError(t, err)
	require.Equal(t, models.RoomStatusMaintenance, flagged.Status)

	restored, err := svc.SetMaintenance(room.ID, false)
	require.NoError(t, err)
	require.Equal(t, models.RoomStatusFullyOccupied, restored.Status)
}

func TestDeleteRoomGuards(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db)

	tenant := seedActiveTenant(t, db, "room-del@example.com", "206")
	err := svc.DeleteRoom(tenant.RoomID)
	require.True(t, apperr.IsKind(err, apperr.KindConflict))

	empty := seedRoom(t, db, "207")
	require.NoError(t, svc.DeleteRoom(empty.ID))

	err = svc.DeleteRoom(empty.ID)
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestGetRoomStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db)

	seedActiveTenant(t, db, "room-stats@example.com", "208")
	extra := seedRoom(t, db, "209")
	_, err := svc.SetMaintenance(extra.ID, true)
	require.NoError(t, err)

	stats, err := svc.GetRoomStats()
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.TotalRooms)
	require.Equal(t, 8, stats.TotalBeds)
	require.Equal(t, 1, stats.OccupiedBeds)
	require.Equal(t, 7, stats.AvailableBeds)
	require.EqualValues(t, 1, stats.UnderRepair)
}

func TestGetAvailableRoomsExcludesFullAndMaintenance(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db)

	open := seedRoom(t, db, "210")

	full := seedRoom(t, db, "211")
	full.OccupiedBeds = full.TotalBeds
	full.RecomputeStatus()
	require.NoError(t, db.Save(full).Error)

	repair := seedRoom(t, db, "212")
	_, err := svc.SetMaintenance(repair.ID, true)
	require.NoError(t, err)

	rooms, err := svc.GetAvailableRooms()
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	require.Equal(t, open.ID, rooms[0].ID)
}

func TestCreateRoomRoundsMoney(t *testing.T) {
	db := newTestDB(t)
	svc := NewRoomService(db)

	rent := decimal.RequireFromString("12500.005")
	room, err := svc.CreateRoom(RoomInput{RoomNumber: "213", MonthlyRent: &rent})
	require.NoError(t, err)
	requireDecimalEqual(t, 0, room.MonthlyRent.Sub(decimal.RequireFromString("12500.01")))
}
