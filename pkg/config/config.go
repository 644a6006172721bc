package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Providers ProvidersConfig
	Calendar  CalendarConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host            string        `mapstructure:"HOST"`
	Port            int           `mapstructure:"PORT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	Environment     string        `mapstructure:"ENVIRONMENT"` // development, staging, production
	AllowedOrigins  string        `mapstructure:"ALLOWED_ORIGINS"`
}

// DatabaseConfig holds configuration for the events database
type DatabaseConfig struct {
	URL          string        `mapstructure:"URL"`
	Host         string        `mapstructure:"HOST"`
	Port         int           `mapstructure:"PORT"`
	User         string        `mapstructure:"USER"`
	Password     string        `mapstructure:"PASSWORD"`
	Name         string        `mapstructure:"NAME"`
	SSLMode      string        `mapstructure:"SSL_MODE"`
	MaxOpenConns int           `mapstructure:"MAX_OPEN_CONNS"`
	MaxIdleConns int           `mapstructure:"MAX_IDLE_CONNS"`
	MaxLifetime  time.Duration `mapstructure:"MAX_LIFETIME"`
}

// DSN returns the data source name for connecting to the database
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string `mapstructure:"REDIS_URL"`
	Host     string `mapstructure:"REDIS_HOST"`
	Port     int    `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

// Address returns the Redis address
func (c *RedisConfig) Address() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ProvidersConfig holds completion-provider configuration.
// Any subset of the API keys may be empty; unconfigured providers are
// skipped by the fallback chain.
type ProvidersConfig struct {
	GroqAPIKey   string        `mapstructure:"GROQ_API_KEY"`
	GeminiAPIKey string        `mapstructure:"GEMINI_API_KEY"`
	CohereAPIKey string        `mapstructure:"COHERE_API_KEY"`
	Timeout      time.Duration `mapstructure:"PROVIDER_TIMEOUT"`
}

// CalendarConfig holds date/time interpretation settings
type CalendarConfig struct {
	// TimezoneOffsetMinutes is the fixed civil timezone offset used for all
	// date/time arithmetic. Default 330 (UTC+5:30).
	TimezoneOffsetMinutes int `mapstructure:"TZ_OFFSET_MINUTES"`
}

// Location returns the fixed civil timezone as a *time.Location
func (c *CalendarConfig) Location() *time.Location {
	offset := c.TimezoneOffsetMinutes
	name := fmt.Sprintf("UTC%+03d:%02d", offset/60, abs(offset%60))
	return time.FixedZone(name, offset*60)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file from current dir or parent dirs (for running from cmd/)
	loadEnvFile()

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Try to read from config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/scout/")

	// Ignore error if config file doesn't exist
	_ = v.ReadInConfig()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Override with environment variables (for Railway/PaaS compatibility)
	overrideFromEnv(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// overrideFromEnv reads common environment variables and overrides config values
func overrideFromEnv(config *Config) {
	// Safety net for viper key mismatch. Applied before the explicit env
	// overrides so a deliberate zero from the environment still sticks
	// (TZ_OFFSET_MINUTES=0 means UTC).
	if config.Providers.Timeout == 0 {
		config.Providers.Timeout = 8 * time.Second
	}
	if config.Calendar.TimezoneOffsetMinutes == 0 {
		config.Calendar.TimezoneOffsetMinutes = 330
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		config.Database.URL = url
	}
	if url := os.Getenv("REDIS_URL"); url != "" {
		config.Redis.URL = url
	}

	// Server
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		config.Server.Environment = env
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.Server.AllowedOrigins = origins
	}

	// Completion providers
	if val := os.Getenv("GROQ_API_KEY"); val != "" {
		config.Providers.GroqAPIKey = val
	}
	if val := os.Getenv("GEMINI_API_KEY"); val != "" {
		config.Providers.GeminiAPIKey = val
	}
	if val := os.Getenv("COHERE_API_KEY"); val != "" {
		config.Providers.CohereAPIKey = val
	}
	if val := os.Getenv("PROVIDER_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			config.Providers.Timeout = d
		}
	}

	// Calendar
	if val := os.Getenv("TZ_OFFSET_MINUTES"); val != "" {
		if m, err := strconv.Atoi(val); err == nil {
			config.Calendar.TimezoneOffsetMinutes = m
		}
	}
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("Server.Host", "0.0.0.0")
	v.SetDefault("Server.Port", 8080)
	v.SetDefault("Server.ShutdownTimeout", 10*time.Second)
	v.SetDefault("Server.Environment", "development")
	v.SetDefault("Server.AllowedOrigins", "https://app.scoutcal.io,https://scoutcal.io")

	// Database defaults
	v.SetDefault("Database.Host", "localhost")
	v.SetDefault("Database.Port", 5432)
	v.SetDefault("Database.SSLMode", "disable")
	v.SetDefault("Database.MaxOpenConns", 25)
	v.SetDefault("Database.MaxIdleConns", 5)
	v.SetDefault("Database.MaxLifetime", 5*time.Minute)

	// Redis defaults
	v.SetDefault("Redis.Host", "localhost")
	v.SetDefault("Redis.Port", 6379)
	v.SetDefault("Redis.DB", 0)

	// Provider defaults
	v.SetDefault("Providers.Timeout", 8*time.Second)

	// Calendar defaults: IST (UTC+5:30)
	v.SetDefault("Calendar.TZ_OFFSET_MINUTES", 330)
}

func validate(config *Config) error {
	if config.Server.Environment == "production" {
		if config.Database.DSN() == "" {
			return fmt.Errorf("DATABASE_URL is required in production")
		}
	}
	return nil
}

// loadEnvFile attempts to load .env file from current directory or parent directories
func loadEnvFile() {
	// Try current directory first
	if err := godotenv.Load(); err == nil {
		return
	}

	// Walk up to find .env (useful when running from cmd/)
	dir, err := os.Getwd()
	if err != nil {
		return
	}

	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
