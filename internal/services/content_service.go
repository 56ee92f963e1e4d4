package services

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"oneset/internal/models"
	"oneset/internal/repositories"
	"oneset/internal/storage"
	"oneset/pkg/events"
)

// Sentinel errors surfaced to handlers, which map them onto HTTP statuses.
var (
	ErrEmptyTitle          = errors.New("title cannot be empty")
	ErrNoFile              = errors.New("file not found")
	ErrPreviewNotAvailable = errors.New("preview not available for this file type")
	ErrFileUnreadable      = errors.New("file exists but cannot be opened")
)

// ContentInput carries the fields accepted on item create and edit.
// DueDate stays a raw string: an unparseable value is silently dropped
// rather than rejected, matching the historical form behavior.
type ContentInput struct {
	Title       string `json:"title" validate:"max=200"`
	Content     string `json:"content"`
	ContentType string `json:"content_type" validate:"omitempty,oneof=note task link code document"`
	Category    string `json:"category" validate:"omitempty,oneof=work personal"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	URL         string `json:"url" validate:"omitempty,url"`
	Language    string `json:"language" validate:"omitempty,max=50"`
	DueDate     string `json:"due_date"`
	Tags        string `json:"tags" validate:"omitempty,max=500"`
	IsStarred   bool   `json:"is_starred"`
	IsCompleted bool   `json:"is_completed"`

	File *multipart.FileHeader `json:"-"`
}

// DashboardStats aggregates the counts shown on the dashboard page.
type DashboardStats struct {
	TotalItems     int64
	TotalTasks     int64
	CompletedTasks int64
	PendingTasks   int64
	StarredItems   int64
	TypeCounts     TypeCounts
	RecentItems    []models.ContentItem
}

// TypeCounts holds per-content-type item counts for a user.
type TypeCounts struct {
	Note     int64
	Task     int64
	Link     int64
	Code     int64
	Document int64
}

// ContentService handles business logic for content items: CRUD, copy,
// star/complete toggles, attachment handling and lifecycle events.
type ContentService struct {
	repo     repositories.ContentRepository
	store    *storage.FileStore
	mqClient *events.Client // nil when RabbitMQ is not configured
}

// NewContentService creates a new ContentService.
func NewContentService(repo repositories.ContentRepository, store *storage.FileStore, mqClient *events.Client) *ContentService {
	return &ContentService{
		repo:     repo,
		store:    store,
		mqClient: mqClient,
	}
}

// List retrieves a user's items, newest first, applying the filter.
func (s *ContentService) List(userID string, filter repositories.ContentFilter) ([]models.ContentItem, error) {
	return s.repo.ListForUser(userID, filter)
}

// ListAll retrieves every item regardless of owner. Superuser access only;
// callers are responsible for the privilege check.
func (s *ContentService) ListAll() ([]models.ContentItem, error) {
	return s.repo.ListAll()
}

// Get retrieves a single item scoped to its owner.
func (s *ContentService) Get(userID string, id uint) (*models.ContentItem, error) {
	return s.repo.GetForUser(id, userID)
}

// Create validates the input and persists a new item owned by userID.
// On any failure nothing is persisted; a stored upload is cleaned up
// before the error is returned.
func (s *ContentService) Create(userID string, in ContentInput) (*models.ContentItem, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrEmptyTitle
	}

	item := &models.ContentItem{
		UserID:      userID,
		Title:       in.Title,
		Content:     in.Content,
		ContentType: defaultString(in.ContentType, models.TypeNote),
		Category:    defaultString(in.Category, models.CategoryPersonal),
		Priority:    defaultString(in.Priority, models.PriorityMedium),
		URL:         in.URL,
		Language:    in.Language,
		Tags:        in.Tags,
		IsStarred:   in.IsStarred,
		DueDate:     parseDueDate(in.DueDate),
	}

	if in.File != nil {
		relPath, err := s.store.Save(in.File)
		if err != nil {
			return nil, fmt.Errorf("failed to store attachment: %w", err)
		}
		item.FilePath = relPath
		item.FileName = filepath.Base(in.File.Filename)
	}

	if err := s.repo.Create(item); err != nil {
		if item.FilePath != "" {
			if rmErr := s.store.Remove(item.FilePath); rmErr != nil {
				log.Printf("Warning: failed to clean up stored file %s: %v", item.FilePath, rmErr)
			}
		}
		return nil, err
	}

	s.publishEvent("item.created", item)
	return item, nil
}

// Update replaces an item's fields from the input. The completion flag is
// honored only when the item ends up being a task; for any other type it
// is ignored. A new upload replaces the stored file: the old physical
// file is deleted first, and if that deletion fails the old file is
// orphaned rather than the edit aborted.
func (s *ContentService) Update(userID string, id uint, in ContentInput) (*models.ContentItem, error) {
	item, err := s.repo.GetForUser(id, userID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrEmptyTitle
	}

	item.Title = in.Title
	item.Content = in.Content
	item.ContentType = defaultString(in.ContentType, models.TypeNote)
	item.Category = defaultString(in.Category, models.CategoryPersonal)
	item.Priority = defaultString(in.Priority, models.PriorityMedium)
	item.URL = in.URL
	item.Language = in.Language
	item.Tags = in.Tags
	item.IsStarred = in.IsStarred
	if d := parseDueDate(in.DueDate); d != nil {
		item.DueDate = d
	}
	if item.ContentType == models.TypeTask {
		item.IsCompleted = in.IsCompleted
	}

	if in.File != nil {
		if item.FilePath != "" {
			if err := s.store.Remove(item.FilePath); err != nil {
				log.Printf("Warning: failed to remove replaced file %s: %v", item.FilePath, err)
			}
		}
		relPath, err := s.store.Save(in.File)
		if err != nil {
			return nil, fmt.Errorf("failed to store attachment: %w", err)
		}
		item.FilePath = relPath
		item.FileName = filepath.Base(in.File.Filename)
	}

	if err := s.repo.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes the item's physical file first and then its row. The two
// steps are not atomic: a crash in between leaves either an orphaned file
// or a dangling reference.
func (s *ContentService) Delete(userID string, id uint) error {
	item, err := s.repo.GetForUser(id, userID)
	if err != nil {
		return err
	}

	if item.HasFile() {
		if err := s.store.Remove(item.FilePath); err != nil {
			return fmt.Errorf("failed to delete attachment: %w", err)
		}
	}
	if err := s.repo.Delete(item); err != nil {
		return err
	}

	s.publishEvent("item.deleted", item)
	return nil
}

// Copy duplicates an item for the same owner. The copy gets a "Copy of"
// title prefix, is never starred or completed, and carries no attachment.
func (s *ContentService) Copy(userID string, id uint) (*models.ContentItem, error) {
	original, err := s.repo.GetForUser(id, userID)
	if err != nil {
		return nil, err
	}

	copied := &models.ContentItem{
		UserID:      userID,
		Title:       fmt.Sprintf("Copy of %s", original.Title),
		Content:     original.Content,
		ContentType: original.ContentType,
		Category:    original.Category,
		Priority:    original.Priority,
		URL:         original.URL,
		Language:    original.Language,
		Tags:        original.Tags,
		DueDate:     original.DueDate,
		IsStarred:   false,
		IsCompleted: false,
	}

	if err := s.repo.Create(copied); err != nil {
		return nil, err
	}

	s.publishEvent("item.created", copied)
	return copied, nil
}

// ToggleStar flips the starred flag and returns the updated item.
func (s *ContentService) ToggleStar(userID string, id uint) (*models.ContentItem, error) {
	item, err := s.repo.GetForUser(id, userID)
	if err != nil {
		return nil, err
	}
	item.IsStarred = !item.IsStarred
	if err := s.repo.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}

// ToggleComplete flips the completion flag for tasks. For any other
// content type it is a no-op: the item is returned unchanged, no error.
func (s *ContentService) ToggleComplete(userID string, id uint) (*models.ContentItem, error) {
	item, err := s.repo.GetForUser(id, userID)
	if err != nil {
		return nil, err
	}
	if item.ContentType != models.TypeTask {
		return item, nil
	}
	item.IsCompleted = !item.IsCompleted
	if err := s.repo.Update(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Download resolves an item's attachment for serving as a download,
// returning the item, the on-disk path and the content type.
func (s *ContentService) Download(userID string, id uint) (*models.ContentItem, string, string, error) {
	item, err := s.repo.GetForUser(id, userID)
	if err != nil {
		return nil, "", "", err
	}
	if !item.HasFile() || !s.store.Exists(item.FilePath) {
		return nil, "", "", ErrNoFile
	}
	return item, s.store.Path(item.FilePath), storage.DownloadContentType(item.FileExt()), nil
}

// Preview resolves an item's attachment for inline rendering. Only pdf
// and image attachments may be previewed; other extensions are rejected.
func (s *ContentService) Preview(userID string, id uint) (*models.ContentItem, string, string, error) {
	item, err := s.repo.GetForUser(id, userID)
	if err != nil {
		return nil, "", "", err
	}
	if !item.HasFile() {
		return nil, "", "", ErrNoFile
	}
	if !storage.PreviewAllowed(item.FileExt()) {
		return nil, "", "", ErrPreviewNotAvailable
	}
	if !s.store.Exists(item.FilePath) {
		return nil, "", "", ErrNoFile
	}

	path := s.store.Path(item.FilePath)
	f, err := os.Open(path)
	if err != nil {
		return nil, "", "", ErrFileUnreadable
	}
	f.Close()

	return item, path, storage.PreviewContentType(item.FileExt()), nil
}

// Dashboard computes the aggregate counts and recent items for a user.
func (s *ContentService) Dashboard(userID string) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if stats.TotalItems, err = s.repo.CountForUser(userID, repositories.ContentFilter{}); err != nil {
		return nil, err
	}
	if stats.TypeCounts, err = s.CountByType(userID); err != nil {
		return nil, err
	}
	stats.TotalTasks = stats.TypeCounts.Task

	completed := true
	if stats.CompletedTasks, err = s.repo.CountForUser(userID, repositories.ContentFilter{
		ContentType: models.TypeTask,
		Completed:   &completed,
	}); err != nil {
		return nil, err
	}
	stats.PendingTasks = stats.TotalTasks - stats.CompletedTasks

	starred := true
	if stats.StarredItems, err = s.repo.CountForUser(userID, repositories.ContentFilter{Starred: &starred}); err != nil {
		return nil, err
	}

	if stats.RecentItems, err = s.repo.ListForUser(userID, repositories.ContentFilter{Limit: 6}); err != nil {
		return nil, err
	}
	return stats, nil
}

// CountByType returns a user's item counts broken down by content type.
func (s *ContentService) CountByType(userID string) (TypeCounts, error) {
	var counts TypeCounts
	for _, tc := range []struct {
		contentType string
		dest        *int64
	}{
		{models.TypeNote, &counts.Note},
		{models.TypeTask, &counts.Task},
		{models.TypeLink, &counts.Link},
		{models.TypeCode, &counts.Code},
		{models.TypeDocument, &counts.Document},
	} {
		n, err := s.repo.CountForUser(userID, repositories.ContentFilter{ContentType: tc.contentType})
		if err != nil {
			return counts, err
		}
		*tc.dest = n
	}
	return counts, nil
}

// publishEvent sends an item lifecycle event to RabbitMQ when a client is
// configured. Publish failures are logged, never surfaced to the user.
func (s *ContentService) publishEvent(event string, item *models.ContentItem) {
	if s.mqClient == nil {
		return
	}
	payload := map[string]interface{}{
		"item_id":      item.ID,
		"user_id":      item.UserID,
		"content_type": item.ContentType,
		"title":        item.Title,
	}
	if err := s.mqClient.PublishItemEvent(event, payload); err != nil {
		log.Printf("Warning: Failed to publish %s event for item %d: %v", event, item.ID, err)
	}
}

// parseDueDate parses a YYYY-MM-DD value. Anything unparseable yields
// nil, leaving the field unset rather than rejecting the request.
func parseDueDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &t
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
