package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"oneset/internal/handlers"
	"oneset/internal/middleware"
	"oneset/internal/models"
	"oneset/internal/repositories"
	"oneset/internal/services"
	"oneset/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	app         *fiber.App
	store       *storage.FileStore
	contentRepo repositories.ContentRepository
}

// setupApp wires a Fiber app over a throwaway SQLite database and media
// root, mirroring the production route layout.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.ContentItem{}, &models.UserProfile{}))

	store := storage.NewFileStore(t.TempDir())

	userRepo := repositories.NewGORMUserRepository(db)
	contentRepo := repositories.NewGORMContentRepository(db)
	profileRepo := repositories.NewGORMProfileRepository(db)

	authService := services.NewAuthService(userRepo, "test_jwt_secret")
	contentService := services.NewContentService(contentRepo, store, nil) // nil for RabbitMQ client
	profileService := services.NewProfileService(profileRepo, contentRepo)

	itemHandler := handlers.NewItemHandler(contentService)
	contentAPIHandler := handlers.NewContentAPIHandler(contentService, profileService)
	userAPIHandler := handlers.NewUserAPIHandler(userRepo, authService, profileService)
	profileAPIHandler := handlers.NewProfileAPIHandler(profileService)

	app := fiber.New(fiber.Config{
		Views: html.New("../../templates", ".html"),
	})

	// API first; the empty-prefix LoginRequired group catches everything
	// registered after it.
	api := app.Group("/api")
	userAPIHandler.RegisterPublicRoutes(api)

	protectedAPI := api.Group("", middleware.AuthRequired(authService))
	contentAPIHandler.RegisterRoutes(protectedAPI)
	userAPIHandler.RegisterRoutes(protectedAPI)
	profileAPIHandler.RegisterRoutes(protectedAPI)

	pages := app.Group("", middleware.LoginRequired(authService))
	itemHandler.RegisterRoutes(pages)

	return &testEnv{app: app, store: store, contentRepo: contentRepo}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func jsonRequest(method, target string, payload any) *http.Request {
	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// register creates a user through the API and returns their token.
func (e *testEnv) register(t *testing.T, username, password string) string {
	t.Helper()
	resp := e.do(t, jsonRequest(http.MethodPost, "/api/users/register", map[string]string{
		"username": username,
		"password": password,
	}))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

// createItem creates a content item through the API and returns it.
func (e *testEnv) createItem(t *testing.T, token string, input map[string]any) models.ContentItem {
	t.Helper()
	req := jsonRequest(http.MethodPost, "/api/content/", input)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := e.do(t, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var item models.ContentItem
	decodeJSON(t, resp, &item)
	return item
}

func TestRegisterAction(t *testing.T) {
	env := setupApp(t)

	// Successful registration returns the identity and a session token.
	resp := env.do(t, jsonRequest(http.MethodPost, "/api/users/register", map[string]string{
		"username": "alice",
		"password": "secret123",
	}))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	decodeJSON(t, resp, &body)
	assert.Equal(t, "alice", body["username"])
	assert.NotEmpty(t, body["user_id"])

	// Re-registering the same username creates nothing.
	resp = env.do(t, jsonRequest(http.MethodPost, "/api/users/register", map[string]string{
		"username": "alice",
		"password": "another456",
	}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var dup map[string]string
	decodeJSON(t, resp, &dup)
	assert.Equal(t, "Username already exists", dup["error"])

	// Username and password are both required.
	resp = env.do(t, jsonRequest(http.MethodPost, "/api/users/register", map[string]string{
		"username": "bob",
	}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestContentAPIOwnershipScoping(t *testing.T) {
	env := setupApp(t)
	aliceToken := env.register(t, "alice", "secret123")
	bobToken := env.register(t, "bob", "secret123")

	item := env.createItem(t, aliceToken, map[string]any{"title": "Private note"})

	// The owner can retrieve it.
	req := jsonRequest(http.MethodGet, fmt.Sprintf("/api/content/%d", item.ID), nil)
	req.Header.Set("Authorization", "Bearer "+aliceToken)
	resp := env.do(t, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Another user sees a 404, never a permission error or the data.
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		var payload any
		if method == http.MethodPut {
			payload = map[string]any{"title": "hijacked"}
		}
		req := jsonRequest(method, fmt.Sprintf("/api/content/%d", item.ID), payload)
		req.Header.Set("Authorization", "Bearer "+bobToken)
		resp := env.do(t, req)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, method)
	}

	// Bob's listing stays empty.
	req = jsonRequest(http.MethodGet, "/api/content/", nil)
	req.Header.Set("Authorization", "Bearer "+bobToken)
	resp = env.do(t, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var items []models.ContentItem
	decodeJSON(t, resp, &items)
	assert.Empty(t, items)
}

func TestContentAPICreateValidation(t *testing.T) {
	env := setupApp(t)
	token := env.register(t, "alice", "secret123")

	for _, title := range []string{"", "   "} {
		req := jsonRequest(http.MethodPost, "/api/content/", map[string]any{"title": title})
		req.Header.Set("Authorization", "Bearer "+token)
		resp := env.do(t, req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}

	item := env.createItem(t, token, map[string]any{"title": "Groceries"})
	assert.Equal(t, "Groceries", item.Title)
	assert.WithinDuration(t, item.CreatedAt, item.UpdatedAt, time.Second)

	// The API create path maintains the profile item counter.
	req := jsonRequest(http.MethodGet, "/api/profile/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := env.do(t, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var profiles []models.UserProfile
	decodeJSON(t, resp, &profiles)
	if assert.Len(t, profiles, 1) {
		assert.Equal(t, 1, profiles[0].ItemsCount)
		assert.Equal(t, models.ThemePink, profiles[0].Theme)
	}
}

func TestCopyAction(t *testing.T) {
	env := setupApp(t)
	token := env.register(t, "alice", "secret123")

	original := env.createItem(t, token, map[string]any{
		"title":        "Trip Plan",
		"content_type": "task",
		"is_starred":   true,
	})

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/item/%d/copy/", original.ID), nil)
	req.Header.Set("Cookie", middleware.SessionCookie+"="+token)
	resp := env.do(t, req)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	listReq := jsonRequest(http.MethodGet, "/api/content/", nil)
	listReq.Header.Set("Authorization", "Bearer "+token)
	listResp := env.do(t, listReq)
	var items []models.ContentItem
	decodeJSON(t, listResp, &items)
	require.Len(t, items, 2)

	var copied *models.ContentItem
	for i := range items {
		if items[i].ID != original.ID {
			copied = &items[i]
		}
	}
	require.NotNil(t, copied)
	assert.Equal(t, "Copy of Trip Plan", copied.Title)
	assert.False(t, copied.IsStarred)
	assert.False(t, copied.IsCompleted)
	assert.Empty(t, copied.FilePath)
}

func TestToggleComplete(t *testing.T) {
	env := setupApp(t)
	token := env.register(t, "alice", "secret123")

	link := env.createItem(t, token, map[string]any{"title": "Docs", "content_type": "link"})
	task := env.createItem(t, token, map[string]any{"title": "Laundry", "content_type": "task"})

	// Toggling a non-task is a silent no-op.
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/item/%d/toggle-complete/", link.ID), nil)
	req.Header.Set("Cookie", middleware.SessionCookie+"="+token)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	resp := env.do(t, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]bool
	decodeJSON(t, resp, &body)
	assert.False(t, body["is_completed"])

	// Toggling a task flips the flag.
	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/item/%d/toggle-complete/", task.ID), nil)
	req.Header.Set("Cookie", middleware.SessionCookie+"="+token)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	resp = env.do(t, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &body)
	assert.True(t, body["is_completed"])

	// Without the XHR header the client is redirected back.
	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/item/%d/toggle-star/", task.ID), nil)
	req.Header.Set("Cookie", middleware.SessionCookie+"="+token)
	req.Header.Set("Referer", "/items/")
	resp = env.do(t, req)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/items/", resp.Header.Get("Location"))
}

func TestEditFormKeepsValuesOnError(t *testing.T) {
	env := setupApp(t)
	token := env.register(t, "alice", "secret123")
	item := env.createItem(t, token, map[string]any{"title": "Trip Plan", "content_type": "task"})

	postForm := func(form url.Values) string {
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/item/%d/edit/", item.ID), strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Cookie", middleware.SessionCookie+"="+token)
		resp := env.do(t, req)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		resp.Body.Close()
		return string(body)
	}

	// An invalid URL re-renders the form with the submitted values intact.
	form := url.Values{}
	form.Set("title", "Trip Plan v2")
	form.Set("content_type", "task")
	form.Set("url", "notaurl")
	page := postForm(form)
	assert.Contains(t, page, `value="Trip Plan v2"`)
	assert.Contains(t, page, fmt.Sprintf("/item/%d/edit/", item.ID))

	// A blank title reports the error, again with the form present.
	form.Set("title", "   ")
	form.Set("url", "")
	page = postForm(form)
	assert.Contains(t, page, "Title cannot be empty")
	assert.Contains(t, page, fmt.Sprintf("/item/%d/edit/", item.ID))
}

func TestDownloadPreviewAndDelete(t *testing.T) {
	env := setupApp(t)
	token := env.register(t, "alice", "secret123")

	// Plant a stored csv attachment the way an upload would have left it.
	relPath := "documents/2026/09/01/report.csv"
	fullPath := env.store.Path(relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
	require.NoError(t, os.WriteFile(fullPath, []byte("a,b\n1,2\n"), 0o644))

	item := &models.ContentItem{
		Title:       "Monthly report",
		ContentType: models.TypeDocument,
		Category:    models.CategoryWork,
		Priority:    models.PriorityMedium,
		FilePath:    relPath,
		FileName:    "report.csv",
	}
	var alice models.User
	// Resolve alice's ID from her own item listing path: register stored her.
	req := jsonRequest(http.MethodGet, "/api/users/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := env.do(t, req)
	var users []models.User
	decodeJSON(t, resp, &users)
	require.Len(t, users, 1)
	alice = users[0]
	item.UserID = alice.ID
	require.NoError(t, env.contentRepo.Create(item))

	// Download is an attachment typed from the extension table.
	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/item/%d/download/", item.ID), nil)
	req.Header.Set("Cookie", middleware.SessionCookie+"="+token)
	resp = env.do(t, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `attachment; filename="report.csv"`)
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "a,b\n1,2\n", string(data))

	// csv has no inline preview.
	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/item/%d/preview/", item.ID), nil)
	req.Header.Set("Cookie", middleware.SessionCookie+"="+token)
	resp = env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Deleting removes both the physical file and the row.
	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/item/%d/delete/", item.ID), nil)
	req.Header.Set("Cookie", middleware.SessionCookie+"="+token)
	resp = env.do(t, req)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/items/", resp.Header.Get("Location"))
	assert.NoFileExists(t, fullPath)

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/item/%d/download/", item.ID), nil)
	req.Header.Set("Cookie", middleware.SessionCookie+"="+token)
	resp = env.do(t, req)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnauthenticatedAccess(t *testing.T) {
	env := setupApp(t)

	// Page routes redirect to the login form.
	resp := env.do(t, httptest.NewRequest(http.MethodPost, "/item/1/toggle-star/", nil))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	// API routes answer 401.
	resp = env.do(t, jsonRequest(http.MethodGet, "/api/content/", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, jsonRequest(http.MethodGet, "/api/profile/", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
