package mock

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"larder/models"
)

func TestNewSeedsRecipesAndDemoUser(t *testing.T) {
	ctx := context.Background()
	db, err := New(ctx)
	if err != nil {
		t.Fatalf("mock.New returned error: %v", err)
	}

	var recipeCount int64
	if err := db.Model(&models.Recipe{}).Count(&recipeCount).Error; err != nil {
		t.Fatalf("count recipes: %v", err)
	}
	if recipeCount == 0 {
		t.Fatal("expected mock database to seed recipes")
	}

	var junctionCount int64
	if err := db.Model(&models.RecipeIngredient{}).Count(&junctionCount).Error; err != nil {
		t.Fatalf("count junction rows: %v", err)
	}
	if junctionCount == 0 {
		t.Fatal("expected mock database to seed recipe ingredients")
	}

	var user models.User
	if err := db.Where("email = ?", DemoEmail).First(&user).Error; err != nil {
		t.Fatalf("fetch demo user: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(DemoPassword)); err != nil {
		t.Fatalf("seeded user password hash mismatch: %v", err)
	}
}

func TestNewIsIdempotentAcrossCalls(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx); err != nil {
		t.Fatalf("first mock.New: %v", err)
	}
	db, err := New(ctx)
	if err != nil {
		t.Fatalf("second mock.New: %v", err)
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if userCount != 1 {
		t.Fatalf("expected one demo user, got %d", userCount)
	}
}
