package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL   string
	Port          string
	GoEnv         string
	Auth0Domain   string
	Auth0Audience string
	LogLevel      string

	// Tax applied to order subtotals, e.g. 0.10 for 10%
	TaxRate float64

	// MoMo payment gateway
	MomoEndpoint    string
	MomoPartnerCode string
	MomoAccessKey   string
	MomoSecretKey   string
	MomoRedirectURL string
	MomoIPNURL      string
	MomoMinAmount   float64
	MomoMaxAmount   float64

	// RabbitMQ URL for the notification fan-out; empty disables it
	RabbitMQURL string
}

var configInstance *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// If environment-specific file doesn't exist, try .env
		if err := godotenv.Load(); err != nil {
			// In production, environment variables are set directly
			// so it's okay if .env files don't exist
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	config := &Config{
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		Port:            getEnv("PORT", "8080"),
		GoEnv:           getEnv("GO_ENV", "development"),
		Auth0Domain:     getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:   getEnv("AUTH0_AUDIENCE", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		TaxRate:         getEnvFloat("TAX_RATE", 0.10),
		MomoEndpoint:    getEnv("MOMO_ENDPOINT", "https://test-payment.momo.vn/v2/gateway/api/create"),
		MomoPartnerCode: getEnv("MOMO_PARTNER_CODE", ""),
		MomoAccessKey:   getEnv("MOMO_ACCESS_KEY", ""),
		MomoSecretKey:   getEnv("MOMO_SECRET_KEY", ""),
		MomoRedirectURL: getEnv("MOMO_REDIRECT_URL", ""),
		MomoIPNURL:      getEnv("MOMO_IPN_URL", ""),
		MomoMinAmount:   getEnvFloat("MOMO_MIN_AMOUNT", 1000),
		MomoMaxAmount:   getEnvFloat("MOMO_MAX_AMOUNT", 50000000),
		RabbitMQURL:     getEnv("RABBITMQ_URL", ""),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	configInstance = config
	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.TaxRate < 0 || c.TaxRate >= 1 {
		return fmt.Errorf("TAX_RATE must be in [0, 1), got %v", c.TaxRate)
	}
	if c.MomoMinAmount < 0 || c.MomoMaxAmount <= c.MomoMinAmount {
		return fmt.Errorf("MOMO_MIN_AMOUNT/MOMO_MAX_AMOUNT bounds are invalid")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// GetConfig returns the loaded configuration instance
func GetConfig() *Config {
	return configInstance
}

// SetConfig sets the configuration instance (primarily for testing)
func SetConfig(cfg *Config) {
	configInstance = cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Invalid float for %s=%q, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
