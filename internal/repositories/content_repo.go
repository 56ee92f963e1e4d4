package repositories

import "oneset/internal/models"

// ContentFilter narrows item listings and counts. Zero values mean
// "no filter" for that field.
type ContentFilter struct {
	ContentType string
	Category    string
	Starred     *bool
	Completed   *bool
	Limit       int // 0 means no limit; ignored by counts
}

// ContentRepository defines the interface for content item data access.
// Owner-scoped lookups return ErrNotFound for items owned by other
// users, exactly as for missing items.
type ContentRepository interface {
	Create(item *models.ContentItem) error
	Update(item *models.ContentItem) error
	Delete(item *models.ContentItem) error
	GetForUser(id uint, userID string) (*models.ContentItem, error)
	ListForUser(userID string, filter ContentFilter) ([]models.ContentItem, error)
	ListAll() ([]models.ContentItem, error)
	CountForUser(userID string, filter ContentFilter) (int64, error)
}
