package seed

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"larder/models"
)

func newTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Ingredient{},
		&models.Category{},
		&models.Recipe{},
		&models.RecipeIngredient{},
	); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
	})
	return db
}

func counts(t *testing.T, db *gorm.DB) (ingredients, categories, recipes, junctions int64) {
	t.Helper()
	for model, target := range map[any]*int64{
		&models.Ingredient{}:       &ingredients,
		&models.Category{}:         &categories,
		&models.Recipe{}:           &recipes,
		&models.RecipeIngredient{}: &junctions,
	} {
		if err := db.Model(model).Count(target).Error; err != nil {
			t.Fatalf("count rows: %v", err)
		}
	}
	return
}

func TestLoadIfEmptyPopulatesFreshDatabase(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	if err := LoadIfEmpty(ctx, db); err != nil {
		t.Fatalf("LoadIfEmpty returned error: %v", err)
	}

	ingredients, categories, recipes, junctions := counts(t, db)
	if ingredients == 0 {
		t.Fatal("expected seeded ingredients")
	}
	if categories != 2 {
		t.Fatalf("expected two seeded categories, got %d", categories)
	}
	if recipes != 5 {
		t.Fatalf("expected five seeded recipes, got %d", recipes)
	}
	if junctions == 0 {
		t.Fatal("expected seeded junction rows")
	}

	// Every junction row carries both references.
	var rows []models.RecipeIngredient
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("list junction rows: %v", err)
	}
	for _, row := range rows {
		if row.RecipeID == nil || row.IngredientID == nil {
			t.Fatalf("seeded junction row missing reference: %+v", row)
		}
		if row.Quantity == "" {
			t.Fatalf("seeded junction row missing quantity: %+v", row)
		}
	}

	// Every recipe belongs to a seeded category.
	var seeded []models.Recipe
	if err := db.Find(&seeded).Error; err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	for _, recipe := range seeded {
		if recipe.CategoryID == nil {
			t.Fatalf("seeded recipe %q has no category", recipe.Name)
		}
		if recipe.Servings <= 0 || recipe.TimeMinutes <= 0 {
			t.Fatalf("seeded recipe %q has invalid servings/time", recipe.Name)
		}
	}
}

func TestLoadIfEmptyIsIdempotent(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	if err := LoadIfEmpty(ctx, db); err != nil {
		t.Fatalf("first LoadIfEmpty: %v", err)
	}
	firstIngredients, firstCategories, firstRecipes, firstJunctions := counts(t, db)

	if err := LoadIfEmpty(ctx, db); err != nil {
		t.Fatalf("second LoadIfEmpty: %v", err)
	}
	ingredients, categories, recipes, junctions := counts(t, db)

	if ingredients != firstIngredients || categories != firstCategories ||
		recipes != firstRecipes || junctions != firstJunctions {
		t.Fatalf("second call duplicated seed data: %d/%d/%d/%d vs %d/%d/%d/%d",
			ingredients, categories, recipes, junctions,
			firstIngredients, firstCategories, firstRecipes, firstJunctions)
	}
}

func TestLoadIfEmptySkipsPartiallyPopulatedStore(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	if err := db.Create(&models.Ingredient{Name: "Yeast"}).Error; err != nil {
		t.Fatalf("create ingredient: %v", err)
	}

	if err := LoadIfEmpty(ctx, db); err != nil {
		t.Fatalf("LoadIfEmpty returned error: %v", err)
	}

	ingredients, _, recipes, _ := counts(t, db)
	if ingredients != 1 {
		t.Fatalf("expected seed to be skipped, got %d ingredients", ingredients)
	}
	if recipes != 0 {
		t.Fatalf("expected no seeded recipes, got %d", recipes)
	}
}
