package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	GeminiKey      string
	GeminiModel    string
	OpenAIKey      string
	OpenAIEndpoint string
	OpenAIModel    string
	MaxFileSizeMB  int
	MaxPDFPages    int
	SessionStore   string // "memory" or "sqlite"
	Database       string
}

// Load reads configuration from the environment, providing sensible defaults.
func Load() Config {
	// Load .env file if it exists (useful for development)
	_ = godotenv.Load()
	cfg := Config{
		GeminiKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIEndpoint: getEnv("OPENAI_API_ENDPOINT", "https://api.openai.com/v1"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		MaxFileSizeMB:  getEnvInt("MAX_FILE_SIZE_MB", 10),
		MaxPDFPages:    getEnvInt("MAX_PDF_PAGES", 5),
		SessionStore:   getEnv("SESSION_STORE", "memory"),
		Database:       getEnv("DATABASE_PATH", "./data/sessions.db"),
	}

	if cfg.SessionStore == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o755); err != nil {
			log.Fatalf("failed to ensure database dir %s: %v", cfg.Database, err)
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
		log.Printf("ignoring invalid %s=%q, using %d", key, val, fallback)
	}
	return fallback
}
