// Package seed populates an empty database with a starter set of
// ingredients, categories, and recipes so a fresh install has something to
// browse.
package seed

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	applog "larder/internal/log"
	"larder/models"
)

// LoadIfEmpty seeds the database when no ingredient exists yet. The whole
// seed set is written in one transaction, wiring cross-references from the
// identities assigned at insert. Safe to call on every start.
func LoadIfEmpty(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Ingredient{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count ingredients: %w", err)
	}
	if count > 0 {
		applog.Debug(ctx, "seed skipped, database already populated", "ingredients", count)
		return nil
	}

	applog.Info(ctx, "seeding sample data")

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ingredients := map[string]*models.Ingredient{}
		for _, name := range []string{
			"Flour", "Butter", "Sugar", "Egg", "Milk",
			"Olive Oil", "Garlic", "Tomato", "Basil", "Parmesan",
			"Chicken Breast", "Lemon",
		} {
			ingredient := &models.Ingredient{Name: name}
			if err := tx.Create(ingredient).Error; err != nil {
				return fmt.Errorf("seed ingredient %q: %w", name, err)
			}
			ingredients[name] = ingredient
		}

		weeknight := &models.Category{Name: "Weeknight Dinners"}
		baking := &models.Category{Name: "Baking"}
		for _, category := range []*models.Category{weeknight, baking} {
			if err := tx.Create(category).Error; err != nil {
				return fmt.Errorf("seed category %q: %w", category.Name, err)
			}
		}

		recipes := []struct {
			recipe models.Recipe
			items  []seedItem
		}{
			{
				recipe: models.Recipe{
					Name:         "Tomato Basil Pasta",
					Summary:      "A quick pantry pasta with fresh basil.",
					Servings:     2,
					TimeMinutes:  25,
					Instructions: "Cook pasta. Soften garlic in olive oil, add chopped tomatoes, toss with pasta and basil.",
					CategoryID:   &weeknight.ID,
				},
				items: []seedItem{
					{"Tomato", "4 ripe"},
					{"Garlic", "2 cloves"},
					{"Olive Oil", "2 tbsp"},
					{"Basil", "1 handful"},
					{"Parmesan", "30 g"},
				},
			},
			{
				recipe: models.Recipe{
					Name:         "Lemon Roast Chicken",
					Summary:      "Sheet-pan chicken with lemon and garlic.",
					Servings:     4,
					TimeMinutes:  55,
					Instructions: "Season chicken, scatter lemon and garlic, roast at 200C until cooked through.",
					CategoryID:   &weeknight.ID,
				},
				items: []seedItem{
					{"Chicken Breast", "4 pieces"},
					{"Lemon", "1 sliced"},
					{"Garlic", "4 cloves"},
					{"Olive Oil", "1 tbsp"},
				},
			},
			{
				recipe: models.Recipe{
					Name:         "Garlic Butter Omelette",
					Summary:      "Three-egg omelette finished with garlic butter.",
					Servings:     1,
					TimeMinutes:  10,
					Instructions: "Whisk eggs with milk, cook gently in butter, fold and finish with garlic butter.",
					CategoryID:   &weeknight.ID,
				},
				items: []seedItem{
					{"Egg", "3"},
					{"Milk", "2 tbsp"},
					{"Butter", "20 g"},
					{"Garlic", "1 clove"},
				},
			},
			{
				recipe: models.Recipe{
					Name:         "Classic Shortbread",
					Summary:      "Three-ingredient buttery shortbread.",
					Servings:     8,
					TimeMinutes:  45,
					Instructions: "Cream butter and sugar, work in flour, press into a tin and bake until pale gold.",
					CategoryID:   &baking.ID,
				},
				items: []seedItem{
					{"Butter", "200 g"},
					{"Sugar", "100 g"},
					{"Flour", "300 g"},
				},
			},
			{
				recipe: models.Recipe{
					Name:         "Lemon Drizzle Cake",
					Summary:      "Sponge cake soaked in lemon syrup.",
					Servings:     10,
					TimeMinutes:  70,
					Instructions: "Beat butter, sugar and eggs, fold in flour, bake, then soak with lemon syrup while warm.",
					CategoryID:   &baking.ID,
				},
				items: []seedItem{
					{"Butter", "225 g"},
					{"Sugar", "225 g"},
					{"Egg", "4"},
					{"Flour", "225 g"},
					{"Lemon", "2 zested and juiced"},
				},
			},
		}

		for i := range recipes {
			recipe := &recipes[i].recipe
			if err := tx.Create(recipe).Error; err != nil {
				return fmt.Errorf("seed recipe %q: %w", recipe.Name, err)
			}
			for _, item := range recipes[i].items {
				ingredient, ok := ingredients[item.ingredient]
				if !ok {
					return fmt.Errorf("seed recipe %q references unknown ingredient %q", recipe.Name, item.ingredient)
				}
				row := &models.RecipeIngredient{
					Quantity:     item.quantity,
					RecipeID:     &recipe.ID,
					IngredientID: &ingredient.ID,
				}
				if err := tx.Create(row).Error; err != nil {
					return fmt.Errorf("seed recipe ingredient %q/%q: %w", recipe.Name, item.ingredient, err)
				}
			}
		}

		return nil
	})
}

type seedItem struct {
	ingredient string
	quantity   string
}
