// Package config loads application configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents application configuration loaded from environment
// variables. Command-line flags override it in main.
type Config struct {
	AppEnv         string
	DatabaseURL    string
	GPTEndpoint    string
	GPTKey         string
	GPTModel       string
	GPTTimeout     time.Duration
	HTTPAddr       string
	RecentLimit    int
	GenerationWait time.Duration
}

// Load reads .env files when present, then the environment, applying
// defaults where needed.
func Load(files ...string) *Config {
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Missing files are fine.
	_ = godotenv.Load(files...)

	return &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		GPTEndpoint:    os.Getenv("GPT_CHAT_ENDPOINT"),
		GPTKey:         os.Getenv("GPT_CHAT_KEY"),
		GPTModel:       os.Getenv("GPT_MODEL"),
		GPTTimeout:     time.Second * time.Duration(getEnvInt("GPT_TIMEOUT_SECONDS", 60)),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		RecentLimit:    getEnvInt("RECENT_LIMIT", 5),
		GenerationWait: getEnvDuration("GENERATION_TIMEOUT", 90*time.Second),
	}
}

// AIEnabled reports whether chat credentials are configured.
func (c *Config) AIEnabled() bool {
	return c.GPTEndpoint != "" && c.GPTKey != ""
}

// Development reports whether the app runs in development mode.
func (c *Config) Development() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
