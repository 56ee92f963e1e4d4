package handlers

import (
	"log"
	"strings"
	"time"

	"oneset/internal/middleware"
	"oneset/internal/models"
	"oneset/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles the server-rendered login, register and logout pages.
type AuthHandler struct {
	authService    *services.AuthService
	profileService *services.ProfileService
	validate       *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, profileService *services.ProfileService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		profileService: profileService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the page auth routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/login", h.HandleLoginPage)
	router.Post("/login", h.HandleLogin)
	router.Get("/register", h.HandleRegisterPage)
	router.Post("/register", h.HandleRegister)
	router.Get("/logout", h.HandleLogout)
}

// HandleLoginPage renders the login form.
func (h *AuthHandler) HandleLoginPage(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{})
}

// HandleLogin authenticates a user and establishes the session cookie.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	_, token, err := h.authService.LoginUser(username, password)
	if err != nil {
		log.Printf("Error during login for user %s: %v", username, err)
		return c.Render("login", fiber.Map{
			"Error": "Invalid username or password",
		})
	}

	setSessionCookie(c, token)
	return c.Redirect("/dashboard/", fiber.StatusFound)
}

// HandleRegisterPage renders the registration form.
func (h *AuthHandler) HandleRegisterPage(c *fiber.Ctx) error {
	return c.Render("register", fiber.Map{})
}

// HandleRegister creates a new account, its profile, and logs the user in.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	user := models.User{
		Username: c.FormValue("username"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password1"),
	}

	if c.FormValue("password1") != c.FormValue("password2") {
		return c.Render("register", fiber.Map{
			"Error": "Passwords do not match",
		})
	}

	if err := h.validate.Struct(user); err != nil {
		return c.Render("register", fiber.Map{
			"Error": "Please provide a valid username, email and password (6+ characters)",
		})
	}

	if err := h.authService.RegisterUser(&user); err != nil {
		log.Printf("Error registering user: %v", err)
		msg := "Could not register user"
		if strings.Contains(err.Error(), "already exists") {
			msg = "Username already exists"
		}
		return c.Render("register", fiber.Map{
			"Error": msg,
		})
	}

	if _, err := h.profileService.GetOrCreate(user.ID); err != nil {
		log.Printf("Error creating profile for user %s: %v", user.ID, err)
	}

	token, err := h.authService.GenerateToken(&user)
	if err != nil {
		log.Printf("Error generating session token: %v", err)
		return c.Redirect("/login", fiber.StatusFound)
	}

	setSessionCookie(c, token)
	return c.Redirect("/dashboard/", fiber.StatusFound)
}

// HandleLogout clears the session cookie and sends the user home.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return c.Redirect("/", fiber.StatusFound)
}

// setSessionCookie stores the session token in an HTTP-only cookie.
func setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}
