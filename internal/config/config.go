package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr          string
	DatabaseURL   string
	DataDir       string
	MigrationsDir string
	CORSOrigin    string
	// Redis backs promo counters and admin sessions
	RedisURL   string
	PromoSlots int
	// Admin dashboard login; empty hash disables admin routes
	AdminPasswordHash string
	// Meilisearch - optional, store search is the fallback
	MeiliURL       string
	MeiliMasterKey string
	// MinIO object storage for uploads - optional
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	// SMTP - empty by default, email disabled if not configured
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	StudioInbox  string
}

func Load() Config {
	// Missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	return Config{
		Addr:          getenv("HEARTH_ADDR", ":8787"),
		DatabaseURL:   getenv("DATABASE_URL", ""),
		DataDir:       getenv("HEARTH_DATA_DIR", "./data"),
		MigrationsDir: getenv("HEARTH_MIGRATIONS_DIR", "./db/migrations"),
		CORSOrigin:    getenv("HEARTH_CORS_ORIGIN", "*"),

		RedisURL:   getenv("REDIS_URL", "redis://localhost:6379/0"),
		PromoSlots: getenvInt("HEARTH_PROMO_SLOTS", 20),

		AdminPasswordHash: getenv("HEARTH_ADMIN_PASSWORD_HASH", ""),

		MeiliURL:       getenv("MEILI_URL", ""),
		MeiliMasterKey: getenv("MEILI_MASTER_KEY", ""),

		MinioEndpoint:  getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "hearth-uploads"),
		MinioUseSSL:    getenvBool("MINIO_USE_SSL", false),

		SMTPHost:     getenv("SMTP_HOST", ""),
		SMTPPort:     getenv("SMTP_PORT", "587"),
		SMTPUsername: getenv("SMTP_USERNAME", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		SMTPFrom:     getenv("SMTP_FROM", ""),
		SMTPFromName: getenv("SMTP_FROM_NAME", "Hearth"),
		StudioInbox:  getenv("HEARTH_STUDIO_INBOX", ""),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
