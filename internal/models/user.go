package models

import "gorm.io/gorm"

// User represents an account that owns content items.
type User struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username    string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email       string `json:"email" gorm:"type:varchar(255)" validate:"omitempty,email"`
	Password    string `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	IsSuperuser bool   `json:"is_superuser" gorm:"default:false"`
	gorm.Model          // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
