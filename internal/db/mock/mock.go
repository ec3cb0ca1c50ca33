// Package mock provides an in-memory seeded database for local development
// and tests, selected with DATABASE_USE_MOCK=true.
package mock

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "larder/internal/log"
	"larder/internal/seed"
	"larder/models"
)

// DemoEmail and DemoPassword are the credentials of the account the mock
// database is seeded with.
const (
	DemoEmail    = "demo@larder.app"
	DemoPassword = "skillet"
)

// New returns an in-memory sqlite database seeded with the sample recipes
// and a demo account.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	db, err := gorm.Open(sqlite.Open("file:larder-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.Ingredient{},
		&models.Category{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.User{},
	); err != nil {
		return nil, err
	}

	if err := seed.LoadIfEmpty(ctx, db); err != nil {
		return nil, err
	}

	if err := seedDemoUser(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

func seedDemoUser(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Name:         "Demo Cook",
		Email:        DemoEmail,
		PasswordHash: string(password),
	}
	return db.WithContext(ctx).Create(user).Error
}
