package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return db, nil
}

// Migrate runs AutoMigrate for every model and then creates the partial
// unique indexes GORM tags cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Service{},
		&models.Availability{},
		&models.TimeSlot{},
		&models.Booking{},
		&models.Payment{},
		&models.WebhookEvent{},
		&models.MembershipPlan{},
		&models.UserMembership{},
		&models.Notification{},
		&models.Review{},
		&models.SystemLog{},
	); err != nil {
		return err
	}
	return createPartialIndexes(db)
}

// partialIndexes back the duplicate-booking guard and the one-active-membership
// rule independently of transaction isolation. The syntax is shared by
// PostgreSQL and SQLite.
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_active_user_service
		ON bookings (user_id, service_id) WHERE status <> 'CANCELLED'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_user_memberships_one_active
		ON user_memberships (user_id) WHERE is_active = TRUE`,
}

func createPartialIndexes(db *gorm.DB) error {
	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
