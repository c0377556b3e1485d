package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	EnvProduction = "production"

	GeocoderMapQuest = "mapquest"
)

type Config struct {
	Environment string
	Port        string
	LogLevel    string

	MongoURI      string
	MongoDatabase string
	RedisURL      string
	JWTSecret     string

	// Resume storage
	UploadPath     string
	MaxFileSize    int64
	StorageTimeout time.Duration

	// Geocoding
	GeocoderProvider string
	GeocoderAPIKey   string
	GeocoderBaseURL  string
	GeocoderTimeout  time.Duration
	GeocodeCacheTTL  time.Duration

	ApplyRateLimit  int
	ApplyRateWindow time.Duration

	DefaultPageLimit  int64
	MaxPageLimit      int64
	ApplicationWindow time.Duration

	ShutdownTimeout time.Duration
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Msg("No .env file found")
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "jobboard"),
		RedisURL:      getEnv("REDIS_URL", ""),
		JWTSecret:     getEnv("JWT_SECRET", ""),

		UploadPath:     getEnv("UPLOAD_PATH", "./public/uploads"),
		MaxFileSize:    getEnvAsInt64("MAX_FILE_SIZE", 2<<20),
		StorageTimeout: getEnvAsDuration("STORAGE_TIMEOUT", 10*time.Second),

		GeocoderProvider: getEnv("GEOCODER_PROVIDER", GeocoderMapQuest),
		GeocoderAPIKey:   getEnv("GEOCODER_API_KEY", ""),
		GeocoderBaseURL:  getEnv("GEOCODER_BASE_URL", ""),
		GeocoderTimeout:  getEnvAsDuration("GEOCODER_TIMEOUT", 5*time.Second),
		GeocodeCacheTTL:  getEnvAsDuration("GEOCODE_CACHE_TTL", 24*time.Hour),

		ApplyRateLimit:  getEnvAsInt("APPLY_RATE_LIMIT", 3),
		ApplyRateWindow: getEnvAsDuration("APPLY_RATE_WINDOW", time.Minute),

		DefaultPageLimit:  getEnvAsInt64("DEFAULT_PAGE_LIMIT", 10),
		MaxPageLimit:      getEnvAsInt64("MAX_PAGE_LIMIT", 100),
		ApplicationWindow: getEnvAsDuration("APPLICATION_WINDOW", 7*24*time.Hour),

		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// Validate reports every setting the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if c.GeocoderProvider != GeocoderMapQuest {
		errs = append(errs, fmt.Errorf("unsupported GEOCODER_PROVIDER %q", c.GeocoderProvider))
	}
	if c.MaxFileSize <= 0 {
		errs = append(errs, errors.New("MAX_FILE_SIZE must be positive"))
	}
	if c.DefaultPageLimit <= 0 || c.MaxPageLimit < c.DefaultPageLimit {
		errs = append(errs, errors.New("DEFAULT_PAGE_LIMIT must be positive and not above MAX_PAGE_LIMIT"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid integer, using default")
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid integer, using default")
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("30s") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Warn().Str("key", key).Str("value", value).Msg("invalid duration, using default")
	return defaultValue
}
