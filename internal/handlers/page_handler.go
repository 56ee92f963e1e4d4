package handlers

import (
	"log"
	"strconv"

	"oneset/internal/middleware"
	"oneset/internal/models"
	"oneset/internal/repositories"
	"oneset/internal/services"
	"oneset/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// PageHandler renders the server-side pages: home, dashboard, item
// listings and the create/edit/delete forms.
type PageHandler struct {
	contentService *services.ContentService
	store          *storage.FileStore
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(contentService *services.ContentService, store *storage.FileStore) *PageHandler {
	return &PageHandler{
		contentService: contentService,
		store:          store,
	}
}

// RegisterPublicRoutes registers pages reachable without a session.
func (h *PageHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Get("/", h.HandleHome)
}

// RegisterRoutes registers the session-protected pages.
func (h *PageHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/dashboard/", h.HandleDashboard)
	router.Get("/create/", h.HandleCreatePage)
	router.Get("/items/", h.HandleAllItems)
	router.Get("/item/:id/", h.HandleItemDetail)
	router.Get("/item/:id/edit/", h.HandleEditPage)
	router.Get("/item/:id/delete/", h.HandleDeletePage)
}

// HandleHome renders the public landing page.
func (h *PageHandler) HandleHome(c *fiber.Ctx) error {
	return c.Render("index", fiber.Map{})
}

// HandleDashboard renders the dashboard with aggregate counts and the
// most recent items.
func (h *PageHandler) HandleDashboard(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	stats, err := h.contentService.Dashboard(userID)
	if err != nil {
		log.Printf("Dashboard error for user %s: %v", userID, err)
		stats = &services.DashboardStats{}
	}

	return c.Render("dashboard", fiber.Map{
		"Username": c.Locals("username"),
		"Stats":    stats,
	})
}

// HandleCreatePage renders the empty create form.
func (h *PageHandler) HandleCreatePage(c *fiber.Ctx) error {
	return c.Render("create", fiber.Map{})
}

// HandleAllItems renders the item list with type/category/starred filters
// and per-type counts for the sidebar.
func (h *PageHandler) HandleAllItems(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	filter := repositories.ContentFilter{
		ContentType: c.Query("type"),
		Category:    c.Query("category"),
	}
	if c.Query("starred") == "true" {
		starred := true
		filter.Starred = &starred
	}

	items, err := h.contentService.List(userID, filter)
	if err != nil {
		log.Printf("Error listing items for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not retrieve items")
	}

	counts, err := h.contentService.CountByType(userID)
	if err != nil {
		log.Printf("Error counting items for user %s: %v", userID, err)
	}

	return c.Render("all_items", fiber.Map{
		"Items":           items,
		"TotalCount":      len(items),
		"Counts":          counts,
		"CurrentType":     c.Query("type"),
		"CurrentCategory": c.Query("category"),
		"CurrentStarred":  c.Query("starred"),
	})
}

// HandleItemDetail renders a single item. Items owned by other users are
// indistinguishable from missing ones.
func (h *PageHandler) HandleItemDetail(c *fiber.Ctx) error {
	item, err := h.itemFromPath(c)
	if err != nil {
		return notFoundPage(c)
	}

	bind := fiber.Map{"Item": item}
	if item.HasFile() {
		bind["FileURL"] = h.store.URL(item.FilePath)
		if size, err := h.store.Size(item.FilePath); err == nil {
			bind["FileSize"] = storage.FormatSize(size)
		} else {
			bind["FileSize"] = "Unknown size"
		}
	}
	return c.Render("item_detail", bind)
}

// HandleEditPage renders the edit form pre-filled with the item.
func (h *PageHandler) HandleEditPage(c *fiber.Ctx) error {
	item, err := h.itemFromPath(c)
	if err != nil {
		return notFoundPage(c)
	}
	return c.Render("edit_item", fiber.Map{"Item": item})
}

// HandleDeletePage renders the delete confirmation page.
func (h *PageHandler) HandleDeletePage(c *fiber.Ctx) error {
	item, err := h.itemFromPath(c)
	if err != nil {
		return notFoundPage(c)
	}
	return c.Render("confirm_delete", fiber.Map{"Item": item})
}

func (h *PageHandler) itemFromPath(c *fiber.Ctx) (*models.ContentItem, error) {
	id, err := parseItemID(c)
	if err != nil {
		return nil, err
	}
	return h.contentService.Get(middleware.UserID(c), id)
}

// parseItemID reads the :id path parameter.
func parseItemID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// notFoundPage is the page-route equivalent of a 404 response.
func notFoundPage(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).SendString("Not found")
}
