package services

import (
	"errors"
	"fmt"

	"oneset/internal/models"
	"oneset/internal/repositories"
)

// ProfileService handles business logic for user profiles.
type ProfileService struct {
	profileRepo repositories.ProfileRepository
	contentRepo repositories.ContentRepository
}

// NewProfileService creates a new ProfileService.
func NewProfileService(profileRepo repositories.ProfileRepository, contentRepo repositories.ContentRepository) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		contentRepo: contentRepo,
	}
}

// GetOrCreate returns a user's profile, creating an empty one with
// default settings if none exists yet.
func (s *ProfileService) GetOrCreate(userID string) (*models.UserProfile, error) {
	profile, err := s.profileRepo.GetByUserID(userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	profile = &models.UserProfile{
		UserID: userID,
		Theme:  models.ThemePink,
	}
	if err := s.profileRepo.Create(profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return profile, nil
}

// UpdateTheme changes the profile's theme.
func (s *ProfileService) UpdateTheme(userID, theme string) (*models.UserProfile, error) {
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	profile.Theme = theme
	if err := s.profileRepo.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// RecountItems refreshes the profile's items_count from the content
// store, creating the profile on the fly when missing. Called on the API
// create path only; page-based creates do not maintain the counter.
func (s *ProfileService) RecountItems(userID string) (*models.UserProfile, error) {
	profile, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	count, err := s.contentRepo.CountForUser(userID, repositories.ContentFilter{})
	if err != nil {
		return nil, err
	}
	profile.ItemsCount = int(count)
	if err := s.profileRepo.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}
