package services

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bcflats_backend/internal/config"
	"bcflats_backend/internal/logger"
	"bcflats_backend/internal/models"
)

// InitDB opens the database connection with connection pooling.
// TranslateError is enabled so unique-constraint violations surface as
// gorm.ErrDuplicatedKey; the billing accrual relies on that to treat a
// concurrent double-post as "already accrued".
func InitDB(cfg config.DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(cfg.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logger.Get().Info("database connection established")
	return db, nil
}

// AutoMigrate runs database migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.Room{},
		&models.Tenant{},
		&models.BillingCycle{},
		&models.Payment{},
		&models.Archive{},
		&models.Notification{},
		&models.Announcement{},
		&models.MaintenanceRequest{},
		&models.ScheduledTask{},
		&models.ScheduledTaskHistory{},
	)
}
