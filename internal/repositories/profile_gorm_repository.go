package repositories

import (
	"errors"
	"fmt"

	"oneset/internal/models"

	"gorm.io/gorm"
)

// GORMProfileRepository is a GORM implementation of ProfileRepository.
type GORMProfileRepository struct {
	db *gorm.DB
}

// NewGORMProfileRepository creates a new instance of GORMProfileRepository.
func NewGORMProfileRepository(db *gorm.DB) *GORMProfileRepository {
	return &GORMProfileRepository{
		db: db,
	}
}

// Create creates a new user profile in the database.
func (r *GORMProfileRepository) Create(profile *models.UserProfile) error {
	if err := r.db.Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create user profile: %w", err)
	}
	return nil
}

// Update saves all fields of an existing user profile.
func (r *GORMProfileRepository) Update(profile *models.UserProfile) error {
	res := r.db.Save(profile)
	if res.Error != nil {
		return fmt.Errorf("failed to update user profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("profile for user %s for update: %w", profile.UserID, ErrNotFound)
	}
	return nil
}

// GetByUserID retrieves the profile belonging to a user.
func (r *GORMProfileRepository) GetByUserID(userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile for user %s: %w", userID, err)
	}
	return &profile, nil
}
