package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/chirp/internal/auth/media"
	"github.com/aussiebroadwan/chirp/pkg/cryptox"
	"github.com/aussiebroadwan/chirp/pkg/httpx"
)

type Config struct {
	Issuer        string        // Optional: issuer claim for tokens (default: chirp-auth)
	AccessSecret  string        // Required: HMAC secret for access tokens
	RefreshSecret string        // Required: HMAC secret for refresh tokens, must differ from AccessSecret
	AccessTTL     time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL    time.Duration // Optional: refresh token lifetime (default: 7 days)

	DatabaseFile         string        // Optional: path to SQLite database file (default: ./chirp.db)
	PepperFile           string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	BcryptCost           int           // Optional: bcrypt work factor (default: 12, min: 10)
	Env                  string        // Environment (dev, test, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	ProtectedPrefixes    []string      // Paths AuthGate requires a token for (default: httpx.DefaultProtectedPrefixes)

	// Optional: tweet attachments are hosted on Cloudinary when all three are set
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

// ServerConfigurationError reports a setting the service cannot start without.
type ServerConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ServerConfigurationError) Error() string {
	return fmt.Sprintf("server configuration error: %s %s", e.Setting, e.Reason)
}

func LoadConfig() Config {
	return Config{
		Issuer:               getEnvOrDefault("AUTH_ISSUER", "chirp-auth"),
		AccessSecret:         os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshSecret:        os.Getenv("REFRESH_TOKEN_SECRET"),
		AccessTTL:            getEnvDurationOrDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL:           getEnvDurationOrDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		DatabaseFile:         getEnvOrDefault("AUTH_DATABASE_FILE", "chirp.db"),
		PepperFile:           getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		BcryptCost:           getEnvIntOrDefault("BCRYPT_COST", cryptox.DefaultPasswordCost),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		ProtectedPrefixes:    getEnvListOrDefault("AUTH_PROTECTED_PREFIXES", httpx.DefaultProtectedPrefixes),
		CloudinaryCloudName:  os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:     os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:  os.Getenv("CLOUDINARY_API_SECRET"),
	}
}

// Validate fills in test secrets when ENV=test and rejects anything the
// service cannot run with.
func (c *Config) Validate() error {
	if c.Env == "test" {
		if c.AccessSecret == "" {
			c.AccessSecret = cryptox.MustGenerateToken(32)
		}
		if c.RefreshSecret == "" {
			c.RefreshSecret = cryptox.MustGenerateToken(32)
		}
	}

	if c.AccessSecret == "" {
		return &ServerConfigurationError{Setting: "ACCESS_TOKEN_SECRET", Reason: "is not set"}
	}
	if c.RefreshSecret == "" {
		return &ServerConfigurationError{Setting: "REFRESH_TOKEN_SECRET", Reason: "is not set"}
	}
	if c.AccessSecret == c.RefreshSecret {
		return &ServerConfigurationError{Setting: "REFRESH_TOKEN_SECRET", Reason: "must differ from ACCESS_TOKEN_SECRET"}
	}
	if c.BcryptCost < cryptox.MinPasswordCost {
		return &ServerConfigurationError{
			Setting: "BCRYPT_COST",
			Reason:  fmt.Sprintf("must be at least %d", cryptox.MinPasswordCost),
		}
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return &ServerConfigurationError{Setting: "ACCESS_TOKEN_TTL/REFRESH_TOKEN_TTL", Reason: "must be positive"}
	}
	if c.cloudinaryPartial() {
		return &ServerConfigurationError{
			Setting: "CLOUDINARY_CLOUD_NAME/CLOUDINARY_API_KEY/CLOUDINARY_API_SECRET",
			Reason:  "must be set together",
		}
	}
	return nil
}

// Cloudinary returns the media host credentials.
func (c Config) Cloudinary() media.CloudinaryConfig {
	return media.CloudinaryConfig{
		CloudName: c.CloudinaryCloudName,
		APIKey:    c.CloudinaryAPIKey,
		APISecret: c.CloudinaryAPISecret,
	}
}

func (c Config) cloudinaryPartial() bool {
	set := 0
	for _, v := range []string{c.CloudinaryCloudName, c.CloudinaryAPIKey, c.CloudinaryAPISecret} {
		if v != "" {
			set++
		}
	}
	return set > 0 && set < 3
}

// SecureCookies reports whether cookies should carry the Secure attribute.
func (c Config) SecureCookies() bool {
	return c.Env == "prod" || c.Env == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
