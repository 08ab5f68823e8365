package service

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/funagig/funagig-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// openTestDB opens an isolated in-memory database migrated with the full
// schema. The shared-cache name keeps the database alive across the pooled
// connections gorm opens.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Gig{},
		&models.Application{},
		&models.Conversation{},
		&models.Message{},
		&models.Notification{},
	))

	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, userType string) models.User {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		PasswordHash: "x",
		Type:         userType,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedGig(t *testing.T, db *gorm.DB, ownerID uint, title string) models.Gig {
	t.Helper()

	gig := models.Gig{
		UserID:      ownerID,
		Title:       title,
		Description: "a gig used by the tests",
		Budget:      250,
		Deadline:    time.Now().Add(14 * 24 * time.Hour),
		Status:      models.GigStatusActive,
	}
	require.NoError(t, db.Create(&gig).Error)
	return gig
}
