package repositories_test

import (
	"path/filepath"
	"testing"
	"time"

	"oneset/internal/models"
	"oneset/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.ContentItem{}, &models.UserProfile{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id, username string) {
	t.Helper()
	userRepo := repositories.NewGORMUserRepository(db)
	require.NoError(t, userRepo.Create(&models.User{ID: id, Username: username, Password: "x"}))
}

func TestGORMContentRepository_OwnerScoping(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMContentRepository(db)
	seedUser(t, db, "alice-id", "alice")
	seedUser(t, db, "bob-id", "bob")

	item := &models.ContentItem{UserID: "alice-id", Title: "Secret note", ContentType: models.TypeNote}
	require.NoError(t, repo.Create(item))

	// The owner sees the item.
	got, err := repo.GetForUser(item.ID, "alice-id")
	assert.NoError(t, err)
	assert.Equal(t, "Secret note", got.Title)

	// Anyone else gets the same error as for a missing item.
	_, err = repo.GetForUser(item.ID, "bob-id")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = repo.GetForUser(9999, "alice-id")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMContentRepository_ListOrderingAndFilters(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMContentRepository(db)
	seedUser(t, db, "alice-id", "alice")

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	items := []models.ContentItem{
		{UserID: "alice-id", Title: "Oldest note", ContentType: models.TypeNote, Category: models.CategoryWork, CreatedAt: base},
		{UserID: "alice-id", Title: "Middle task", ContentType: models.TypeTask, Category: models.CategoryPersonal, IsStarred: true, CreatedAt: base.Add(time.Hour)},
		{UserID: "alice-id", Title: "Newest link", ContentType: models.TypeLink, Category: models.CategoryPersonal, CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range items {
		require.NoError(t, repo.Create(&items[i]))
	}

	// Default listing is newest first.
	all, err := repo.ListForUser("alice-id", repositories.ContentFilter{})
	assert.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Newest link", all[0].Title)
	assert.Equal(t, "Oldest note", all[2].Title)

	// Type filter.
	tasks, err := repo.ListForUser("alice-id", repositories.ContentFilter{ContentType: models.TypeTask})
	assert.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Middle task", tasks[0].Title)

	// Category filter.
	personal, err := repo.ListForUser("alice-id", repositories.ContentFilter{Category: models.CategoryPersonal})
	assert.NoError(t, err)
	assert.Len(t, personal, 2)

	// Starred filter.
	starred := true
	pinned, err := repo.ListForUser("alice-id", repositories.ContentFilter{Starred: &starred})
	assert.NoError(t, err)
	require.Len(t, pinned, 1)
	assert.Equal(t, "Middle task", pinned[0].Title)

	// Limit.
	recent, err := repo.ListForUser("alice-id", repositories.ContentFilter{Limit: 2})
	assert.NoError(t, err)
	assert.Len(t, recent, 2)

	// Counts follow the same filters.
	count, err := repo.CountForUser("alice-id", repositories.ContentFilter{Category: models.CategoryPersonal})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestGORMContentRepository_UpdateBumpsUpdatedAtOnly(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMContentRepository(db)
	seedUser(t, db, "alice-id", "alice")

	item := &models.ContentItem{UserID: "alice-id", Title: "Groceries", ContentType: models.TypeNote}
	require.NoError(t, repo.Create(item))
	createdAt := item.CreatedAt

	time.Sleep(10 * time.Millisecond)
	item.Title = "Groceries and more"
	require.NoError(t, repo.Update(item))

	got, err := repo.GetForUser(item.ID, "alice-id")
	require.NoError(t, err)
	assert.Equal(t, "Groceries and more", got.Title)
	assert.Equal(t, createdAt.Unix(), got.CreatedAt.Unix())
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestGORMContentRepository_Delete(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMContentRepository(db)
	seedUser(t, db, "alice-id", "alice")

	item := &models.ContentItem{UserID: "alice-id", Title: "Trash me", ContentType: models.TypeNote}
	require.NoError(t, repo.Create(item))

	assert.NoError(t, repo.Delete(item))
	_, err := repo.GetForUser(item.ID, "alice-id")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	// Deleting an already-deleted item reports not found.
	err = repo.Delete(item)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMProfileRepository(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMProfileRepository(db)
	seedUser(t, db, "alice-id", "alice")

	_, err := repo.GetByUserID("alice-id")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	profile := &models.UserProfile{UserID: "alice-id", Theme: models.ThemePink}
	require.NoError(t, repo.Create(profile))

	got, err := repo.GetByUserID("alice-id")
	require.NoError(t, err)
	assert.Equal(t, models.ThemePink, got.Theme)

	got.Theme = models.ThemeDark
	require.NoError(t, repo.Update(got))

	got, err = repo.GetByUserID("alice-id")
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, got.Theme)
}
