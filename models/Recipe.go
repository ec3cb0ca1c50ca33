package models

import (
	"gorm.io/gorm"
)

// Recipe is the central record of the application. Its ingredient list is an
// ordered set of RecipeIngredient rows that is replaced wholesale on save.
type Recipe struct {
	gorm.Model
	Name string `gorm:"not null" json:"name"`

	// Maintained by BeforeSave for Go-side case folding.
	NameLower string `gorm:"index" json:"-"`

	Summary      string `json:"summary"`
	Servings     int    `gorm:"not null" json:"servings"`
	TimeMinutes  int    `gorm:"not null" json:"time_minutes"`
	Instructions string `gorm:"type:text" json:"instructions"`
	Image        []byte `gorm:"type:blob" json:"-"`

	// Nullable on purpose: deleting the category clears this reference.
	CategoryID *uint     `json:"category_id,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients,omitempty"`
}

func (r *Recipe) BeforeSave(*gorm.DB) error {
	r.NameLower = FoldName(r.Name)
	return nil
}
