package store

import (
	"context"
	"fmt"
	"strings"

	"larder/models"
)

// ListOptions narrows and orders a listing. NameContains is a
// case-insensitive substring match on the entity's name; SortField must be
// one of the entity's sortable fields or the listing falls back to name
// order.
type ListOptions struct {
	NameContains string
	SortField    string
	SortDesc     bool
}

// sortableFields whitelists the order-by columns per table. Listing never
// interpolates caller input into SQL outside of these values.
var sortableFields = map[string]map[string]string{
	"ingredients": {
		"name":       "name",
		"created_at": "created_at",
	},
	"categories": {
		"name":       "name",
		"created_at": "created_at",
	},
	"recipes": {
		"name":         "name",
		"servings":     "servings",
		"time_minutes": "time_minutes",
		"created_at":   "created_at",
	},
}

func orderClause(table string, opts ListOptions) string {
	column := "name"
	if field, ok := sortableFields[table][strings.ToLower(strings.TrimSpace(opts.SortField))]; ok {
		column = field
	}
	direction := "asc"
	if opts.SortDesc {
		direction = "desc"
	}
	return fmt.Sprintf("%s %s", column, direction)
}

func substringPattern(value string) string {
	escaped := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(value)
	return "%" + escaped + "%"
}

// Ingredients returns all ingredients matching opts; an empty slice when
// nothing matches.
func (s *Store) Ingredients(ctx context.Context, opts ListOptions) ([]models.Ingredient, error) {
	var results []models.Ingredient
	query := s.db.WithContext(ctx).Order(orderClause("ingredients", opts))
	if needle := strings.TrimSpace(opts.NameContains); needle != "" {
		query = query.Where("name_lower LIKE ? ESCAPE '\\'", substringPattern(models.FoldName(needle)))
	}
	if err := query.Find(&results).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return results, nil
}

// IngredientByID loads one ingredient.
func (s *Store) IngredientByID(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, fmt.Errorf("load ingredient %d: %w", id, err)
	}
	return &ingredient, nil
}

// Categories returns all categories matching opts.
func (s *Store) Categories(ctx context.Context, opts ListOptions) ([]models.Category, error) {
	var results []models.Category
	query := s.db.WithContext(ctx).Order(orderClause("categories", opts))
	if needle := strings.TrimSpace(opts.NameContains); needle != "" {
		query = query.Where("name_lower LIKE ? ESCAPE '\\'", substringPattern(models.FoldName(needle)))
	}
	if err := query.Find(&results).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return results, nil
}

// CategoryByID loads one category.
func (s *Store) CategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, fmt.Errorf("load category %d: %w", id, err)
	}
	return &category, nil
}

// Recipes returns all recipes matching opts with their category and
// ingredient list preloaded.
func (s *Store) Recipes(ctx context.Context, opts ListOptions) ([]models.Recipe, error) {
	var results []models.Recipe
	query := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Ingredients").
		Preload("Ingredients.Ingredient").
		Order(orderClause("recipes", opts))
	if needle := strings.TrimSpace(opts.NameContains); needle != "" {
		query = query.Where("name_lower LIKE ? ESCAPE '\\'", substringPattern(models.FoldName(needle)))
	}
	if err := query.Find(&results).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return results, nil
}

// RecipeByID loads one recipe with its category and ingredient list.
func (s *Store) RecipeByID(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Ingredients").
		Preload("Ingredients.Ingredient").
		First(&recipe, id).Error; err != nil {
		return nil, fmt.Errorf("load recipe %d: %w", id, err)
	}
	return &recipe, nil
}

// RecipeIngredients returns the junction rows of one recipe in insertion
// order, with the referenced ingredient preloaded.
func (s *Store) RecipeIngredients(ctx context.Context, recipeID uint) ([]models.RecipeIngredient, error) {
	var results []models.RecipeIngredient
	if err := s.db.WithContext(ctx).
		Preload("Ingredient").
		Where("recipe_id = ?", recipeID).
		Order("id asc").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("list recipe ingredients: %w", err)
	}
	return results, nil
}

// RecipeIngredientByID loads one junction row.
func (s *Store) RecipeIngredientByID(ctx context.Context, id uint) (*models.RecipeIngredient, error) {
	var item models.RecipeIngredient
	if err := s.db.WithContext(ctx).
		Preload("Ingredient").
		First(&item, id).Error; err != nil {
		return nil, fmt.Errorf("load recipe ingredient %d: %w", id, err)
	}
	return &item, nil
}
