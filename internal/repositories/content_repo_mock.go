package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"oneset/internal/models"
)

// MockContentRepository is an in-memory implementation of ContentRepository.
type MockContentRepository struct {
	items  map[uint]models.ContentItem
	nextID uint
	mu     sync.RWMutex
}

// NewMockContentRepository creates a new instance of MockContentRepository.
func NewMockContentRepository() *MockContentRepository {
	return &MockContentRepository{
		items:  make(map[uint]models.ContentItem),
		nextID: 1,
	}
}

// Create adds a new content item and assigns it an ID and timestamps.
func (r *MockContentRepository) Create(item *models.ContentItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == 0 {
		item.ID = r.nextID
		r.nextID++
	}
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	r.items[item.ID] = *item
	return nil
}

// Update modifies an existing content item.
func (r *MockContentRepository) Update(item *models.ContentItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return fmt.Errorf("content item with ID %d for update: %w", item.ID, ErrNotFound)
	}
	item.UpdatedAt = time.Now()
	r.items[item.ID] = *item
	return nil
}

// Delete removes a content item.
func (r *MockContentRepository) Delete(item *models.ContentItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return fmt.Errorf("content item with ID %d for deletion: %w", item.ID, ErrNotFound)
	}
	delete(r.items, item.ID)
	return nil
}

// GetForUser returns a single item scoped to its owner.
func (r *MockContentRepository) GetForUser(id uint, userID string) (*models.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok || item.UserID != userID {
		return nil, fmt.Errorf("content item with ID %d: %w", id, ErrNotFound)
	}
	return &item, nil
}

// ListForUser returns a user's items, newest first, applying the filter.
func (r *MockContentRepository) ListForUser(userID string, filter ContentFilter) ([]models.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.ContentItem
	for _, item := range r.items {
		if item.UserID == userID && matchesFilter(item, filter) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// ListAll returns every item regardless of owner, newest first.
func (r *MockContentRepository) ListAll() ([]models.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ContentItem, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// CountForUser counts a user's items matching the filter.
func (r *MockContentRepository) CountForUser(userID string, filter ContentFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, item := range r.items {
		if item.UserID == userID && matchesFilter(item, filter) {
			count++
		}
	}
	return count, nil
}

func matchesFilter(item models.ContentItem, filter ContentFilter) bool {
	if filter.ContentType != "" && item.ContentType != filter.ContentType {
		return false
	}
	if filter.Category != "" && item.Category != filter.Category {
		return false
	}
	if filter.Starred != nil && item.IsStarred != *filter.Starred {
		return false
	}
	if filter.Completed != nil && item.IsCompleted != *filter.Completed {
		return false
	}
	return true
}
