package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/planhive/backend/internal/config"
	"github.com/planhive/backend/internal/models"
	"github.com/planhive/backend/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the configured database, applies the pool settings, runs the
// schema migration and seeds the initial admin account. The returned handle is
// the only storage handle in the process; components receive it at
// construction time.
func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.SSLMode,
		)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := seedAdminUser(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema, including the unique indexes backing invite
// codes, memberships and responses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMembership{},
		&models.Appointment{},
		&models.AppointmentResponse{},
		&models.Task{},
	)
}

func seedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword("admin-changeme")
	if err != nil {
		return err
	}

	admin := models.User{
		Name:         "Administrator",
		Email:        "admin@planhive.local",
		PasswordHash: hash,
		Role:         models.UserRoleAdmin,
	}

	return db.Create(&admin).Error
}
