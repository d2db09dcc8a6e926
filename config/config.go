package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	// Google Cloud
	ProjectID string
	Location  string

	// Server
	Port  string
	Debug bool

	// Gemini Model
	GeminiModel string

	// Matching
	FitThreshold           float64
	RateLimitMaxCalls      int
	RateLimitWindowSeconds int

	// Authentication
	JWTSecret      string
	JWTExpiryHours int

	// Cloud Storage
	ResumeBucketName string
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Google Cloud
		ProjectID: getEnv("PROJECT_ID", ""),
		Location:  getEnv("LOCATION", "us-central1"),

		// Server
		Port:  getEnv("PORT", "8080"),
		Debug: getEnvBool("DEBUG", false),

		// Gemini Model
		GeminiModel: getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		// Matching
		FitThreshold:           getEnvFloat("FIT_THRESHOLD", 70),
		RateLimitMaxCalls:      getEnvInt("RATE_LIMIT_MAX_CALLS", 15),
		RateLimitWindowSeconds: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),

		// Authentication
		JWTSecret:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24),

		// Cloud Storage
		ResumeBucketName: getEnv("RESUME_BUCKET_NAME", ""),
	}

	return cfg
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	// ProjectID is required for Vertex AI and Firestore
	if c.ProjectID == "" {
		return &ConfigError{Field: "PROJECT_ID", Message: "PROJECT_ID is required for Vertex AI and Firestore"}
	}

	if c.ResumeBucketName == "" {
		return &ConfigError{Field: "RESUME_BUCKET_NAME", Message: "RESUME_BUCKET_NAME is required for resume storage"}
	}

	if c.RateLimitMaxCalls <= 0 {
		return &ConfigError{Field: "RATE_LIMIT_MAX_CALLS", Message: "RATE_LIMIT_MAX_CALLS must be positive"}
	}

	if c.RateLimitWindowSeconds <= 0 {
		return &ConfigError{Field: "RATE_LIMIT_WINDOW_SECONDS", Message: "RATE_LIMIT_WINDOW_SECONDS must be positive"}
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
