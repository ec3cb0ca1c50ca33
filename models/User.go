package models

import "gorm.io/gorm"

// User represents an account that can sign in to the application.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Name         string
}
