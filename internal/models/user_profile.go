package models

// Theme choices for a UserProfile.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemePink  = "pink"
)

// UserProfile holds per-user settings and usage statistics, one-to-one
// with a User. StorageUsed is recorded but not maintained by any handler.
type UserProfile struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	UserID      string `json:"user_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	User        *User  `json:"user,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Theme       string `json:"theme" gorm:"type:varchar(20);default:pink" validate:"omitempty,oneof=light dark pink"`
	StorageUsed int64  `json:"storage_used" gorm:"default:0"`
	ItemsCount  int    `json:"items_count" gorm:"default:0"`
}
