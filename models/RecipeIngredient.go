package models

import (
	"gorm.io/gorm"
)

// RecipeIngredient joins a recipe to an ingredient with a free-text quantity.
// It has no life of its own: rows are created alongside a recipe save and
// removed when the recipe or the referenced ingredient is deleted.
type RecipeIngredient struct {
	gorm.Model
	Quantity string `gorm:"not null" json:"quantity"`

	// Both references are nullable so that either side can be detached by a
	// nullify rule, but a well-formed row carries both.
	RecipeID     *uint `json:"recipe_id,omitempty"`
	IngredientID *uint `json:"ingredient_id,omitempty"`

	Recipe     *Recipe     `gorm:"foreignKey:RecipeID" json:"recipe,omitempty"`
	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}
