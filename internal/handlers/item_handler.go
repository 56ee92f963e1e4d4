package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"oneset/internal/middleware"
	"oneset/internal/models"
	"oneset/internal/repositories"
	"oneset/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ItemHandler handles the form-driven item actions: create, edit, delete,
// copy, the star/complete toggles, and attachment download/preview.
type ItemHandler struct {
	contentService *services.ContentService
	validate       *validator.Validate
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(contentService *services.ContentService) *ItemHandler {
	return &ItemHandler{
		contentService: contentService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the item action routes with the Fiber app.
func (h *ItemHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/create/", h.HandleCreate)
	router.Post("/item/:id/edit/", h.HandleEdit)
	router.Post("/item/:id/delete/", h.HandleDelete)
	router.Post("/item/:id/copy/", h.HandleCopy)
	router.Post("/item/:id/toggle-star/", h.HandleToggleStar)
	router.Post("/item/:id/toggle-complete/", h.HandleToggleComplete)
	router.Get("/item/:id/download/", h.HandleDownload)
	router.Get("/item/:id/preview/", h.HandlePreview)
}

// HandleCreate persists a new item from the create form and redirects to
// its detail page. On failure nothing is persisted and the form is shown
// again with an error message.
func (h *ItemHandler) HandleCreate(c *fiber.Ctx) error {
	input := contentInputFromForm(c)

	if err := h.validate.Struct(input); err != nil {
		return c.Render("create", fiber.Map{
			"Error": fmt.Sprintf("Error creating item: %v", err),
		})
	}

	item, err := h.contentService.Create(middleware.UserID(c), input)
	if err != nil {
		log.Printf("Error creating item: %v", err)
		msg := fmt.Sprintf("Error creating item: %v", err)
		if errors.Is(err, services.ErrEmptyTitle) {
			msg = "Title cannot be empty"
		}
		return c.Render("create", fiber.Map{"Error": msg})
	}

	return c.Redirect(fmt.Sprintf("/item/%d/", item.ID), fiber.StatusFound)
}

// HandleEdit applies the edit form to an existing item.
func (h *ItemHandler) HandleEdit(c *fiber.Ctx) error {
	id, err := parseItemID(c)
	if err != nil {
		return notFoundPage(c)
	}

	input := contentInputFromForm(c)
	input.IsCompleted = c.FormValue("is_completed") == "true"

	if err := h.validate.Struct(input); err != nil {
		return c.Render("edit_item", fiber.Map{
			"Error": fmt.Sprintf("Error updating item: %v", err),
			"Item":  editFormItem(id, input),
		})
	}

	item, err := h.contentService.Update(middleware.UserID(c), id, input)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFoundPage(c)
		}
		log.Printf("Error updating item %d: %v", id, err)
		msg := fmt.Sprintf("Error updating item: %v", err)
		if errors.Is(err, services.ErrEmptyTitle) {
			msg = "Title cannot be empty"
		}
		return c.Render("edit_item", fiber.Map{
			"Error": msg,
			"Item":  editFormItem(id, input),
		})
	}

	return c.Redirect(fmt.Sprintf("/item/%d/", item.ID), fiber.StatusFound)
}

// HandleDelete removes the item's stored file and then the item itself.
func (h *ItemHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseItemID(c)
	if err != nil {
		return notFoundPage(c)
	}

	if err := h.contentService.Delete(middleware.UserID(c), id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFoundPage(c)
		}
		log.Printf("Error deleting item %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not delete item")
	}

	return c.Redirect("/items/", fiber.StatusFound)
}

// HandleCopy duplicates an item and redirects to the copy's detail page.
func (h *ItemHandler) HandleCopy(c *fiber.Ctx) error {
	id, err := parseItemID(c)
	if err != nil {
		return notFoundPage(c)
	}

	copied, err := h.contentService.Copy(middleware.UserID(c), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFoundPage(c)
		}
		log.Printf("Error copying item %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not copy item")
	}

	return c.Redirect(fmt.Sprintf("/item/%d/", copied.ID), fiber.StatusFound)
}

// HandleToggleStar flips the starred flag. Asynchronous clients get JSON;
// everyone else is sent back to the referring page.
func (h *ItemHandler) HandleToggleStar(c *fiber.Ctx) error {
	id, err := parseItemID(c)
	if err != nil {
		return notFoundPage(c)
	}

	item, err := h.contentService.ToggleStar(middleware.UserID(c), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFoundPage(c)
		}
		log.Printf("Error toggling star on item %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not update item")
	}

	if isXHR(c) {
		return c.JSON(fiber.Map{"is_starred": item.IsStarred})
	}
	return redirectBack(c)
}

// HandleToggleComplete flips the completion flag for tasks. For any other
// content type the item is left unchanged and no error is reported.
func (h *ItemHandler) HandleToggleComplete(c *fiber.Ctx) error {
	id, err := parseItemID(c)
	if err != nil {
		return notFoundPage(c)
	}

	item, err := h.contentService.ToggleComplete(middleware.UserID(c), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFoundPage(c)
		}
		log.Printf("Error toggling completion on item %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not update item")
	}

	if isXHR(c) {
		return c.JSON(fiber.Map{"is_completed": item.IsCompleted})
	}
	return redirectBack(c)
}

// HandleDownload streams the attachment with a filename header and a
// content type looked up from the extension.
func (h *ItemHandler) HandleDownload(c *fiber.Ctx) error {
	id, err := parseItemID(c)
	if err != nil {
		return notFoundPage(c)
	}

	item, path, contentType, err := h.contentService.Download(middleware.UserID(c), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, services.ErrNoFile) {
			return c.Status(fiber.StatusNotFound).SendString("File not found")
		}
		log.Printf("Error downloading attachment of item %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not download file")
	}

	if err := c.SendFile(path); err != nil {
		log.Printf("Error sending attachment of item %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not download file")
	}
	// Set after SendFile: the file handler writes its own extension-guessed
	// Content-Type, which must not win over the lookup table.
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, item.FileBaseName()))
	c.Set(fiber.HeaderContentType, contentType)
	return nil
}

// HandlePreview streams pdf and image attachments inline. Other
// extensions are rejected with an explicit message.
func (h *ItemHandler) HandlePreview(c *fiber.Ctx) error {
	id, err := parseItemID(c)
	if err != nil {
		return notFoundPage(c)
	}

	item, path, contentType, err := h.contentService.Preview(middleware.UserID(c), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPreviewNotAvailable):
			return c.Status(fiber.StatusBadRequest).SendString("Preview not available for this file type")
		case errors.Is(err, services.ErrFileUnreadable):
			return c.Status(fiber.StatusInternalServerError).SendString("File exists but cannot be opened")
		case errors.Is(err, repositories.ErrNotFound), errors.Is(err, services.ErrNoFile):
			return c.Status(fiber.StatusNotFound).SendString("File not found")
		}
		log.Printf("Error previewing attachment of item %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not preview file")
	}

	if err := c.SendFile(path); err != nil {
		log.Printf("Error sending attachment of item %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not preview file")
	}
	// Set after SendFile, same as the download path.
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, item.FileBaseName()))
	c.Set(fiber.HeaderContentType, contentType)
	return nil
}

// editFormItem rebuilds an item from the submitted form values so a
// failed edit re-renders the populated form instead of losing the input.
func editFormItem(id uint, in services.ContentInput) *models.ContentItem {
	item := &models.ContentItem{
		ID:          id,
		Title:       in.Title,
		Content:     in.Content,
		ContentType: in.ContentType,
		Category:    in.Category,
		Priority:    in.Priority,
		URL:         in.URL,
		Language:    in.Language,
		Tags:        in.Tags,
		IsStarred:   in.IsStarred,
		IsCompleted: in.IsCompleted,
	}
	if d, err := time.Parse("2006-01-02", in.DueDate); err == nil {
		item.DueDate = &d
	}
	return item
}

// contentInputFromForm collects the shared create/edit form fields.
func contentInputFromForm(c *fiber.Ctx) services.ContentInput {
	input := services.ContentInput{
		Title:       c.FormValue("title"),
		Content:     c.FormValue("content"),
		ContentType: c.FormValue("content_type"),
		Category:    c.FormValue("category"),
		Priority:    c.FormValue("priority"),
		URL:         c.FormValue("url"),
		Language:    c.FormValue("language"),
		DueDate:     c.FormValue("due_date"),
		Tags:        c.FormValue("tags"),
		IsStarred:   c.FormValue("is_starred") == "true",
	}
	if fh, err := c.FormFile("file"); err == nil {
		input.File = fh
	}
	return input
}

// isXHR reports whether the request came from an asynchronous client.
func isXHR(c *fiber.Ctx) bool {
	return c.Get("X-Requested-With") == "XMLHttpRequest"
}

// redirectBack sends the client to the referring page, or the dashboard
// when no referrer is present.
func redirectBack(c *fiber.Ctx) error {
	if referer := c.Get(fiber.HeaderReferer); referer != "" {
		return c.Redirect(referer, fiber.StatusFound)
	}
	return c.Redirect("/dashboard/", fiber.StatusFound)
}
