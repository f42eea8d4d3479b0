package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned when OPENAI_API_KEY is not set.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY environment variable is not set")

// Config holds application configuration values loaded from environment variables.
type Config struct {
	HTTPPort        string
	APIKey          string // never logged
	BaseURL         string
	Model           string
	SystemPrompt    string
	RequestInterval time.Duration // minimum spacing between completion requests
	MaxRetries      int           // retries after a 429 answer
	RequestTimeout  time.Duration // one HTTP attempt
	ReplyTimeout    time.Duration // one full send, pacing and retries included
	AllowedOrigins  []string
	StaticDir       string
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file (useful for development)
	err := godotenv.Load() // Loads .env from the current directory
	if err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.", err)
	}

	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		APIKey:          apiKey,
		BaseURL:         getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Model:           getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		SystemPrompt:    getEnv("SYSTEM_PROMPT", "Explain things like you're talking to a software professional with 2 years of experience."),
		RequestInterval: time.Duration(getEnvInt("REQUEST_INTERVAL_MS", 1000, 0)) * time.Millisecond,
		MaxRetries:      getEnvInt("MAX_RATE_LIMIT_RETRIES", 3, 0),
		RequestTimeout:  time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 60, 1)) * time.Second,
		ReplyTimeout:    time.Duration(getEnvInt("REPLY_TIMEOUT_SECONDS", 120, 1)) * time.Second,
		AllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		StaticDir:       getEnv("STATIC_DIR", ""),
	}

	log.Printf("Loaded config: Port=%s, BaseURL=%s, Model=%s, Interval=%s, MaxRetries=%d, RequestTimeout=%s, ReplyTimeout=%s, APIKey=***",
		cfg.HTTPPort, cfg.BaseURL, cfg.Model, cfg.RequestInterval, cfg.MaxRetries, cfg.RequestTimeout, cfg.ReplyTimeout)

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Env variable %s not set, using default: %s", key, fallback)
	return fallback
}

// getEnvInt retrieves an integer environment variable of at least minimum,
// falling back to the default when it is unset, invalid or too small.
func getEnvInt(key string, fallback, minimum int) int {
	raw := getEnv(key, strconv.Itoa(fallback))
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err == nil && n < minimum {
		err = fmt.Errorf("must be at least %d", minimum)
	}
	if err != nil {
		log.Printf("Warning: Invalid %s '%s', using default %d. Error: %v", key, raw, fallback, err)
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
