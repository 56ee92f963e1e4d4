package repositories

import (
	"errors"
	"fmt"

	"oneset/internal/models"

	"gorm.io/gorm"
)

// GORMContentRepository is a GORM implementation of ContentRepository.
type GORMContentRepository struct {
	db *gorm.DB
}

// NewGORMContentRepository creates a new instance of GORMContentRepository.
func NewGORMContentRepository(db *gorm.DB) *GORMContentRepository {
	return &GORMContentRepository{
		db: db,
	}
}

// Create creates a new content item in the database.
func (r *GORMContentRepository) Create(item *models.ContentItem) error {
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create content item: %w", err)
	}
	return nil
}

// Update saves all fields of an existing content item.
func (r *GORMContentRepository) Update(item *models.ContentItem) error {
	res := r.db.Save(item) // Save will update all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update content item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("content item with ID %d for update: %w", item.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a content item row.
func (r *GORMContentRepository) Delete(item *models.ContentItem) error {
	res := r.db.Delete(&models.ContentItem{}, "id = ?", item.ID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete content item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("content item with ID %d for deletion: %w", item.ID, ErrNotFound)
	}
	return nil
}

// GetForUser retrieves a single item scoped to its owner.
func (r *GORMContentRepository) GetForUser(id uint, userID string) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := r.db.First(&item, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("content item with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get content item by ID %d: %w", id, err)
	}
	return &item, nil
}

// ListForUser retrieves a user's items, newest first, applying the filter.
func (r *GORMContentRepository) ListForUser(userID string, filter ContentFilter) ([]models.ContentItem, error) {
	var items []models.ContentItem
	q := applyFilter(r.db.Where("user_id = ?", userID), filter).Order("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list content items: %w", err)
	}
	return items, nil
}

// ListAll retrieves every item regardless of owner, newest first.
// Reserved for superuser access.
func (r *GORMContentRepository) ListAll() ([]models.ContentItem, error) {
	var items []models.ContentItem
	if err := r.db.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list all content items: %w", err)
	}
	return items, nil
}

// CountForUser counts a user's items matching the filter.
func (r *GORMContentRepository) CountForUser(userID string, filter ContentFilter) (int64, error) {
	var count int64
	q := applyFilter(r.db.Model(&models.ContentItem{}).Where("user_id = ?", userID), filter)
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count content items: %w", err)
	}
	return count, nil
}

func applyFilter(q *gorm.DB, filter ContentFilter) *gorm.DB {
	if filter.ContentType != "" {
		q = q.Where("content_type = ?", filter.ContentType)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Starred != nil {
		q = q.Where("is_starred = ?", *filter.Starred)
	}
	if filter.Completed != nil {
		q = q.Where("is_completed = ?", *filter.Completed)
	}
	return q
}
