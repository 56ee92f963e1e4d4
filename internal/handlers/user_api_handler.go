package handlers

import (
	"errors"
	"log"
	"strings"

	"oneset/internal/models"
	"oneset/internal/repositories"
	"oneset/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserAPIHandler exposes user accounts over the API, including the
// public register action.
type UserAPIHandler struct {
	userRepo       repositories.UserRepository
	authService    *services.AuthService
	profileService *services.ProfileService
}

// NewUserAPIHandler creates a new UserAPIHandler.
func NewUserAPIHandler(userRepo repositories.UserRepository, authService *services.AuthService, profileService *services.ProfileService) *UserAPIHandler {
	return &UserAPIHandler{
		userRepo:       userRepo,
		authService:    authService,
		profileService: profileService,
	}
}

// RegisterRoutes registers the authenticated user API routes.
func (h *UserAPIHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleList)
	userRoutes.Get("/:id", h.HandleRetrieve)
}

// RegisterPublicRoutes registers the routes reachable without a token.
func (h *UserAPIHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Post("/users/register", h.HandleRegister)
}

// HandleList returns all user accounts.
func (h *UserAPIHandler) HandleList(c *fiber.Ctx) error {
	users, err := h.userRepo.GetAll()
	if err != nil {
		log.Printf("Error listing users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve users",
		})
	}
	return c.JSON(users)
}

// HandleRetrieve returns a single user account.
func (h *UserAPIHandler) HandleRetrieve(c *fiber.Ctx) error {
	user, err := h.userRepo.GetByID(c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apiNotFound(c)
		}
		log.Printf("Error retrieving user %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve user",
		})
	}
	return c.JSON(user)
}

// RegisterRequest represents the request body for the register action.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a user plus an empty profile and establishes an
// authenticated session, as one logical operation. If the profile write
// fails after the user row is committed the error surfaces as-is; the
// half-registered state is a known edge case, not silently repaired.
func (h *UserAPIHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Username and password are required",
		})
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if err := h.authService.RegisterUser(&user); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Username already exists",
			})
		}
		log.Printf("Error registering user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not register user",
		})
	}

	if _, err := h.profileService.GetOrCreate(user.ID); err != nil {
		log.Printf("Error creating profile for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "User created but profile creation failed",
		})
	}

	token, err := h.authService.GenerateToken(&user)
	if err != nil {
		log.Printf("Error generating token for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not establish session",
		})
	}
	setSessionCookie(c, token)

	return c.JSON(fiber.Map{
		"message":  "User created successfully",
		"user_id":  user.ID,
		"username": user.Username,
		"token":    token,
	})
}
