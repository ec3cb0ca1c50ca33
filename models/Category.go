package models

import (
	"gorm.io/gorm"
)

// Category groups recipes. Deleting a category nullifies the references on its
// recipes; the recipes themselves are retained.
type Category struct {
	gorm.Model
	Name string `gorm:"not null" json:"name"`

	// Maintained by BeforeSave for Go-side case folding.
	NameLower string `gorm:"index" json:"-"`

	Recipes []Recipe `gorm:"foreignKey:CategoryID" json:"recipes,omitempty"`
}

func (c *Category) BeforeSave(*gorm.DB) error {
	c.NameLower = FoldName(c.Name)
	return nil
}
