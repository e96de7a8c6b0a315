package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bcflats_backend/internal/models"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, AutoMigrate(db))
	return db
}

// seedAccount creates an active tenant account.
func seedAccount(t *testing.T, db *gorm.DB, email string) *models.Account {
	t.Helper()
	account := &models.Account{
		FirstName: "Maria",
		LastName:  "Santos",
		Email:     email,
		Role:      models.RoleTenant,
		Status:    models.AccountStatusActive,
	}
	require.NoError(t, account.SetPassword("sup3rsecret"))
	require.NoError(t, db.Create(account).Error)
	return account
}

// seedRoom creates a four-bed room.
func seedRoom(t *testing.T, db *gorm.DB, number string) *models.Room {
	t.Helper()
	room := &models.Room{
		RoomNumber:  number,
		Floor:       2,
		Building:    "Main Building",
		RoomType:    models.RoomTypeStandard,
		Status:      models.RoomStatusAvailable,
		MonthlyRent: decimal.NewFromInt(10000),
		Utilities:   decimal.NewFromInt(1000),
		TotalBeds:   4,
	}
	require.NoError(t, db.Create(room).Error)
	return room
}

// seedActiveTenant creates an active tenant occupying bed 1 of a fresh
// room, with rent 10000, utilities 1000 and deposit 5000.
func seedActiveTenant(t *testing.T, db *gorm.DB, email, roomNumber string) *models.Tenant {
	t.Helper()
	account := seedAccount(t, db, email)
	room := seedRoom(t, db, roomNumber)
	room.OccupiedBeds = 1
	room.RecomputeStatus()
	require.NoError(t, db.Save(room).Error)

	tenant := &models.Tenant{
		AccountID:          account.ID,
		RoomID:             room.ID,
		BedNumber:          1,
		Status:             models.TenantStatusActive,
		CheckInDate:        time.Now().AddDate(0, -1, 0),
		LeaseStart:         time.Now().AddDate(0, -1, 0),
		MonthlyRent:        decimal.NewFromInt(10000),
		Utilities:          decimal.NewFromInt(1000),
		Deposit:            decimal.NewFromInt(5000),
		OutstandingBalance: decimal.Zero,
	}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

// requireDecimalEqual compares decimals by value rather than exponent.
func requireDecimalEqual(t *testing.T, expected int64, actual decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.NewFromInt(expected).Equal(actual),
		"expected %d, got %s", expected, actual)
}
