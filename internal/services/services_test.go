package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/planhive/backend/internal/models"
	"gorm.io/gorm"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMembership{},
		&models.Appointment{},
		&models.AppointmentResponse{},
		&models.Task{},
	)
	if err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	return db
}

func newTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hash",
		Role:         models.UserRoleStudent,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating user %s: %v", email, err)
	}
	return user
}
