package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/template/html/v2"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"oneset/internal/config"
	"oneset/internal/handlers"
	"oneset/internal/middleware"
	"oneset/internal/models"
	"oneset/internal/repositories"
	"oneset/internal/services"
	"oneset/internal/storage"
	"oneset/pkg/events"
)

func main() {
	// --- Configuration ---
	cfg := config.Load()

	// --- Database ---
	db, err := openDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.ContentItem{}, &models.UserProfile{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- RabbitMQ (optional) ---
	// Item lifecycle events are published only when a broker is configured.
	var mqClient *events.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = events.NewClient(events.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close() // Ensure the connection is closed on exit
	} else {
		log.Println("RABBITMQ_URL not set; item events will not be published.")
	}

	// --- File storage ---
	store := storage.NewFileStore(cfg.MediaRoot)

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	contentRepo := repositories.NewGORMContentRepository(db)
	profileRepo := repositories.NewGORMProfileRepository(db)

	// --- Initialize Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	contentService := services.NewContentService(contentRepo, store, mqClient)
	profileService := services.NewProfileService(profileRepo, contentRepo)

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService, profileService)
	pageHandler := handlers.NewPageHandler(contentService, store)
	itemHandler := handlers.NewItemHandler(contentService)
	contentAPIHandler := handlers.NewContentAPIHandler(contentService, profileService)
	userAPIHandler := handlers.NewUserAPIHandler(userRepo, authService, profileService)
	profileAPIHandler := handlers.NewProfileAPIHandler(profileService)

	// --- Initialize Fiber App ---
	engine := html.New("./templates", ".html")
	app := fiber.New(fiber.Config{
		Views:     engine,
		BodyLimit: cfg.MaxUploadMB * 1024 * 1024,
	})

	// --- Middleware ---
	app.Use(logger.New()) // Request logger
	app.Use(middleware.AllowedHosts(cfg.AllowedHosts))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowCredentials: true,
	}))

	// --- Static media ---
	app.Static("/media", cfg.MediaRoot)

	// --- API Routes ---
	// Registered before the page group: the empty-prefix LoginRequired
	// group below applies to every route added after it.
	api := app.Group("/api")
	userAPIHandler.RegisterPublicRoutes(api)

	protectedAPI := api.Group("", middleware.AuthRequired(authService))
	contentAPIHandler.RegisterRoutes(protectedAPI)
	userAPIHandler.RegisterRoutes(protectedAPI)
	profileAPIHandler.RegisterRoutes(protectedAPI)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Page routes ---
	pageHandler.RegisterPublicRoutes(app)
	authHandler.RegisterRoutes(app)

	pages := app.Group("", middleware.LoginRequired(authService))
	pageHandler.RegisterRoutes(pages)
	itemHandler.RegisterRoutes(pages)

	// --- Graceful shutdown ---
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("Starting server on %s", cfg.AppPort)
	if err := app.Listen(cfg.AppPort); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// openDatabase picks the GORM driver from the DSN: postgres URLs and
// key/value DSNs go to the postgres driver, anything else is treated as
// a SQLite file path.
func openDatabase(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}
