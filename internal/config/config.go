package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort string

	// Firebase / Firestore
	ProjectID       string
	CredentialsFile string

	// Email (Amazon SES)
	AWSRegion    string
	SESFromEmail string
	SESFromName  string

	// Base URL used to build join links in invite emails
	AppBaseURL string

	// CORS for the browser front-end
	CORSAllowedOrigins []string

	// Invite issuance rate limiting
	InviteRateLimit  int
	InviteRateWindow time.Duration

	Debug bool
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:         getEnv("PORT", "8080"),
		ProjectID:          getEnv("FIRESTORE_PROJECT_ID", os.Getenv("GOOGLE_CLOUD_PROJECT")),
		CredentialsFile:    getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:       getEnv("SES_FROM_EMAIL", ""),
		SESFromName:        getEnv("SES_FROM_NAME", "Choreboard"),
		AppBaseURL:         getEnv("APP_BASE_URL", "http://localhost:3000"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		InviteRateLimit:    getEnvInt("INVITE_RATE_LIMIT", 10),
		InviteRateWindow:   time.Duration(getEnvInt("INVITE_RATE_WINDOW_SECONDS", 3600)) * time.Second,
		Debug:              getEnv("DEBUG", "") != "",
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// splitList splits a comma-separated environment value into trimmed entries
func splitList(value string) []string {
	var out []string
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
