package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all environment-driven settings for the application.
type Config struct {
	AppPort      string
	Debug        bool
	AllowedHosts []string // Host header allow-list; empty means allow all
	DatabaseURL  string   // postgres DSN, or a sqlite file path
	JWTSecret    string

	CORSAllowedOrigins string

	// Mail relay credentials. Pass-through configuration only; no
	// handler currently sends mail.
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	MediaRoot   string
	MaxUploadMB int

	// Extensions permitted for upload. Present as data only: the upload
	// handlers do not consult this list. Known gap carried over from the
	// original system.
	UploadAllowedExts []string

	RabbitMQURL string
}

// Load reads configuration from environment variables via Viper,
// falling back to development defaults.
func Load() *Config {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("ALLOWED_HOSTS", "")
	viper.SetDefault("DATABASE_URL", "oneset.db")
	viper.SetDefault("JWT_SECRET", "dev-secret-key")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8000")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USER", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("MEDIA_ROOT", "media")
	viper.SetDefault("MAX_UPLOAD_MB", 50)
	viper.SetDefault("UPLOAD_ALLOWED_EXTS", ".pdf .doc .docx .xls .xlsx .txt .csv .jpg .jpeg .png .gif")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv() // Load environment variables

	return &Config{
		AppPort:            viper.GetString("APP_PORT"),
		Debug:              viper.GetBool("DEBUG"),
		AllowedHosts:       splitList(viper.GetString("ALLOWED_HOSTS")),
		DatabaseURL:        viper.GetString("DATABASE_URL"),
		JWTSecret:          viper.GetString("JWT_SECRET"),
		CORSAllowedOrigins: viper.GetString("CORS_ALLOWED_ORIGINS"),
		SMTPHost:           viper.GetString("SMTP_HOST"),
		SMTPPort:           viper.GetInt("SMTP_PORT"),
		SMTPUser:           viper.GetString("SMTP_USER"),
		SMTPPassword:       viper.GetString("SMTP_PASSWORD"),
		MediaRoot:          viper.GetString("MEDIA_ROOT"),
		MaxUploadMB:        viper.GetInt("MAX_UPLOAD_MB"),
		UploadAllowedExts:  splitList(viper.GetString("UPLOAD_ALLOWED_EXTS")),
		RabbitMQURL:        viper.GetString("RABBITMQ_URL"),
	}
}

// splitList splits a space-separated environment value into a clean slice.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Fields(s) {
		out = append(out, strings.TrimSpace(part))
	}
	return out
}
