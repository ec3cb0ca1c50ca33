// Package store is the persistence layer for recipes, categories,
// ingredients, and the recipe-ingredient junction rows. All mutations are
// durable when the call returns; deletes run their relationship propagation
// inside the same transaction so observers never see orphaned junction rows.
package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"larder/models"
)

// Store wraps a gorm handle with the application's relationship rules.
type Store struct {
	db *gorm.DB
}

// New builds a Store on top of an open database handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// deletePropagation maps an entity table to the relationship side effects of
// deleting one of its rows. A nil entry means the delete has no propagation.
//
//   - ingredients: referencing junction rows are deleted.
//   - categories: referencing recipes keep existing with a cleared category
//     reference.
//   - recipes: the recipe's junction rows are deleted, the referenced
//     ingredients are untouched.
var deletePropagation = map[string]func(tx *gorm.DB, id uint) error{
	"ingredients": func(tx *gorm.DB, id uint) error {
		return tx.Unscoped().Where("ingredient_id = ?", id).Delete(&models.RecipeIngredient{}).Error
	},
	"categories": func(tx *gorm.DB, id uint) error {
		return tx.Model(&models.Recipe{}).Where("category_id = ?", id).Update("category_id", nil).Error
	},
	"recipes": func(tx *gorm.DB, id uint) error {
		return tx.Unscoped().Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error
	},
	"recipe_ingredients": nil,
}

func (s *Store) create(ctx context.Context, table string, record any) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (s *Store) update(ctx context.Context, table string, record any, updates map[string]any) error {
	// Map updates bypass the BeforeSave hooks, so the folded column is kept
	// in step here.
	if name, ok := updates["name"].(string); ok {
		updates["name_lower"] = models.FoldName(name)
	}
	if err := s.db.WithContext(ctx).Model(record).Updates(updates).Error; err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}

// deleteWithPropagation removes one row and applies the table's propagation
// rule in a single transaction. A failed propagation rolls back the whole
// delete; the store is left in its prior state. Deleting an id that does not
// exist reports gorm.ErrRecordNotFound.
func (s *Store) deleteWithPropagation(ctx context.Context, table string, model any, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if propagate := deletePropagation[table]; propagate != nil {
			if err := propagate(tx, id); err != nil {
				return fmt.Errorf("propagate %s delete: %w", table, err)
			}
		}
		result := tx.Unscoped().Delete(model, id)
		if result.Error != nil {
			return fmt.Errorf("delete from %s: %w", table, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("delete from %s: %w", table, gorm.ErrRecordNotFound)
		}
		return nil
	})
}

// CreateIngredient inserts a new ingredient.
func (s *Store) CreateIngredient(ctx context.Context, ingredient *models.Ingredient) error {
	return s.create(ctx, "ingredients", ingredient)
}

// UpdateIngredient persists the given field changes on an existing ingredient.
func (s *Store) UpdateIngredient(ctx context.Context, ingredient *models.Ingredient, updates map[string]any) error {
	return s.update(ctx, "ingredients", ingredient, updates)
}

// DeleteIngredient removes an ingredient and every junction row referencing
// it. Recipes that used the ingredient keep existing with a shorter list.
func (s *Store) DeleteIngredient(ctx context.Context, id uint) error {
	return s.deleteWithPropagation(ctx, "ingredients", &models.Ingredient{}, id)
}

// CreateCategory inserts a new category.
func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	return s.create(ctx, "categories", category)
}

// UpdateCategory persists the given field changes on an existing category.
func (s *Store) UpdateCategory(ctx context.Context, category *models.Category, updates map[string]any) error {
	return s.update(ctx, "categories", category, updates)
}

// DeleteCategory removes a category and clears the category reference on
// every recipe that pointed at it. The recipes themselves are retained.
func (s *Store) DeleteCategory(ctx context.Context, id uint) error {
	return s.deleteWithPropagation(ctx, "categories", &models.Category{}, id)
}

// SaveRecipe inserts or updates a recipe and replaces its junction rows
// wholesale: the previous rows are deleted and the given items inserted, all
// in one transaction. Items gain fresh identities; their RecipeID is forced
// to the saved recipe.
func (s *Store) SaveRecipe(ctx context.Context, recipe *models.Recipe, items []models.RecipeIngredient) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Associations are written explicitly below; keep Save from touching
		// them through gorm's association handling.
		recipe.Ingredients = nil
		recipe.Category = nil

		if err := tx.Save(recipe).Error; err != nil {
			return fmt.Errorf("save recipe: %w", err)
		}

		if err := tx.Unscoped().Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("clear recipe ingredients: %w", err)
		}

		recipeID := recipe.ID
		for i := range items {
			items[i].ID = 0
			items[i].RecipeID = &recipeID
			items[i].Recipe = nil
			items[i].Ingredient = nil
			if err := tx.Create(&items[i]).Error; err != nil {
				return fmt.Errorf("insert recipe ingredient: %w", err)
			}
		}
		return nil
	})
}

// UpdateRecipe persists the given field changes on an existing recipe without
// touching its ingredient list.
func (s *Store) UpdateRecipe(ctx context.Context, recipe *models.Recipe, updates map[string]any) error {
	return s.update(ctx, "recipes", recipe, updates)
}

// DeleteRecipe removes a recipe together with its junction rows. The
// ingredients those rows referenced are untouched.
func (s *Store) DeleteRecipe(ctx context.Context, id uint) error {
	return s.deleteWithPropagation(ctx, "recipes", &models.Recipe{}, id)
}

// CreateRecipeIngredient inserts a single junction row.
func (s *Store) CreateRecipeIngredient(ctx context.Context, item *models.RecipeIngredient) error {
	return s.create(ctx, "recipe_ingredients", item)
}

// DeleteRecipeIngredient removes a single junction row with no propagation.
func (s *Store) DeleteRecipeIngredient(ctx context.Context, id uint) error {
	return s.deleteWithPropagation(ctx, "recipe_ingredients", &models.RecipeIngredient{}, id)
}
