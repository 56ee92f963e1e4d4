package handlers

import (
	"errors"
	"log"

	"oneset/internal/middleware"
	"oneset/internal/repositories"
	"oneset/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ContentAPIHandler exposes content items as a JSON resource collection.
type ContentAPIHandler struct {
	contentService *services.ContentService
	profileService *services.ProfileService
	validate       *validator.Validate
}

// NewContentAPIHandler creates a new ContentAPIHandler.
func NewContentAPIHandler(contentService *services.ContentService, profileService *services.ProfileService) *ContentAPIHandler {
	return &ContentAPIHandler{
		contentService: contentService,
		profileService: profileService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the content API routes with the Fiber app.
func (h *ContentAPIHandler) RegisterRoutes(router fiber.Router) {
	contentRoutes := router.Group("/content")
	contentRoutes.Get("/", h.HandleList)
	contentRoutes.Post("/", h.HandleCreate)
	contentRoutes.Get("/:id", h.HandleRetrieve)
	contentRoutes.Put("/:id", h.HandleUpdate)
	contentRoutes.Delete("/:id", h.HandleDelete)
}

// HandleList returns the caller's items. Superusers see every item.
func (h *ContentAPIHandler) HandleList(c *fiber.Ctx) error {
	if middleware.IsSuperuser(c) {
		items, err := h.contentService.ListAll()
		if err != nil {
			log.Printf("Error listing all items: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not retrieve items",
			})
		}
		return c.JSON(items)
	}

	filter := repositories.ContentFilter{
		ContentType: c.Query("type"),
		Category:    c.Query("category"),
	}
	if c.Query("starred") == "true" {
		starred := true
		filter.Starred = &starred
	}

	items, err := h.contentService.List(middleware.UserID(c), filter)
	if err != nil {
		log.Printf("Error listing items: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve items",
		})
	}
	return c.JSON(items)
}

// HandleRetrieve returns a single owned item.
func (h *ContentAPIHandler) HandleRetrieve(c *fiber.Ctx) error {
	id, err := parseItemID(c)
	if err != nil {
		return apiNotFound(c)
	}

	item, err := h.contentService.Get(middleware.UserID(c), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apiNotFound(c)
		}
		log.Printf("Error retrieving item %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve item",
		})
	}
	return c.JSON(item)
}

// HandleCreate creates an item owned by the caller and refreshes the
// caller's profile item count, creating the profile when missing.
func (h *ContentAPIHandler) HandleCreate(c *fiber.Ctx) error {
	var input services.ContentInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	userID := middleware.UserID(c)
	item, err := h.contentService.Create(userID, input)
	if err != nil {
		if errors.Is(err, services.ErrEmptyTitle) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"title": []string{"Title cannot be empty"},
			})
		}
		log.Printf("Error creating item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create item",
		})
	}

	// The item exists by now; a profile recount failure leaves the count
	// stale and surfaces as a server error.
	if _, err := h.profileService.RecountItems(userID); err != nil {
		log.Printf("Error updating profile count for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Item created but profile update failed",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleUpdate applies a full update to an owned item.
func (h *ContentAPIHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseItemID(c)
	if err != nil {
		return apiNotFound(c)
	}

	var input services.ContentInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	item, err := h.contentService.Update(middleware.UserID(c), id, input)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return apiNotFound(c)
		case errors.Is(err, services.ErrEmptyTitle):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"title": []string{"Title cannot be empty"},
			})
		}
		log.Printf("Error updating item %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update item",
		})
	}
	return c.JSON(item)
}

// HandleDelete removes an owned item and its stored file.
func (h *ContentAPIHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseItemID(c)
	if err != nil {
		return apiNotFound(c)
	}

	if err := h.contentService.Delete(middleware.UserID(c), id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apiNotFound(c)
		}
		log.Printf("Error deleting item %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete item",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// apiNotFound is the JSON 404 shared by the API handlers. Other users'
// items produce the same response as missing ones.
func apiNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"message": "Not found",
	})
}
