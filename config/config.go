package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	PORT       string
	DB_URL     string
	JWT_SECRET string

	CORS_ORIGIN string

	// Webhook endpoint for the image-metadata regeneration job. Empty keeps
	// the trigger in log-only mode.
	JOBS_WEBHOOK_URL string
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")

	CORS_ORIGIN = getEnv("CORS_ORIGIN", "*")
	JOBS_WEBHOOK_URL = getEnv("JOBS_WEBHOOK_URL", "")
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
