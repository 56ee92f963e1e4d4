package handlers

import (
	"errors"
	"log"

	"oneset/internal/middleware"
	"oneset/internal/models"
	"oneset/internal/repositories"
	"oneset/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProfileAPIHandler exposes the caller's own profile over the API.
type ProfileAPIHandler struct {
	profileService *services.ProfileService
	validate       *validator.Validate
}

// NewProfileAPIHandler creates a new ProfileAPIHandler.
func NewProfileAPIHandler(profileService *services.ProfileService) *ProfileAPIHandler {
	return &ProfileAPIHandler{
		profileService: profileService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the profile API routes with the Fiber app.
func (h *ProfileAPIHandler) RegisterRoutes(router fiber.Router) {
	profileRoutes := router.Group("/profile")
	profileRoutes.Get("/", h.HandleList)
	profileRoutes.Put("/", h.HandleUpdate)
}

// HandleList returns the caller's profile as a single-element collection,
// creating it on first access.
func (h *ProfileAPIHandler) HandleList(c *fiber.Ctx) error {
	profile, err := h.profileService.GetOrCreate(middleware.UserID(c))
	if err != nil {
		log.Printf("Error loading profile: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve profile",
		})
	}
	return c.JSON([]models.UserProfile{*profile})
}

// ProfileUpdateRequest represents the request body for a profile update.
type ProfileUpdateRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark pink"`
}

// HandleUpdate changes the caller's theme.
func (h *ProfileAPIHandler) HandleUpdate(c *fiber.Ctx) error {
	var req ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	profile, err := h.profileService.UpdateTheme(middleware.UserID(c), req.Theme)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apiNotFound(c)
		}
		log.Printf("Error updating profile: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update profile",
		})
	}
	return c.JSON(profile)
}
