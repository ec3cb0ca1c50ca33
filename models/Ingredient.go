package models

import (
	"strings"

	"gorm.io/gorm"
)

// Ingredient is a pantry item that recipes reference through RecipeIngredient
// rows. Names are unique by business rule; the uniqueness check lives in the
// validation service, not in the schema.
type Ingredient struct {
	gorm.Model
	Name string `gorm:"not null" json:"name"`

	// Maintained by BeforeSave; name comparisons and searches run against
	// this column so case folding happens in Go, not in the database.
	NameLower string `gorm:"index" json:"-"`

	// Deleting an ingredient cascades to these rows; the store performs the
	// cascade explicitly inside the delete transaction.
	RecipeIngredients []RecipeIngredient `gorm:"foreignKey:IngredientID" json:"recipe_ingredients,omitempty"`
}

func (i *Ingredient) BeforeSave(*gorm.DB) error {
	i.NameLower = FoldName(i.Name)
	return nil
}

// NormalizeName trims and collapses interior whitespace so that name
// comparisons and imports agree on a canonical form.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// FoldName lowercases the normalized name with Go's Unicode-aware folding.
// sqlite's lower() only folds ASCII, so every comparison column and query
// argument goes through this instead.
func FoldName(name string) string {
	return strings.ToLower(NormalizeName(name))
}
