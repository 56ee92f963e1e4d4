package repositories

import "oneset/internal/models"

// ProfileRepository defines the interface for user profile data access.
type ProfileRepository interface {
	Create(profile *models.UserProfile) error
	Update(profile *models.UserProfile) error
	GetByUserID(userID string) (*models.UserProfile, error)
}
