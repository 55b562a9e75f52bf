package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	DefaultPort         = "3000"
	DefaultWebexAPIURL  = "https://webexapis.com/v1"
	DefaultRefreshAt    = "13:00"
	DefaultRequestsPath = "generatedData/requests.csv"
	DefaultPublicDir    = "public"
)

type Config struct {
	Environment string
	ServerHost  string
	ServerPort  string

	// OAuth client of the service app
	RefreshToken string
	ClientID     string
	ClientSecret string

	WebexAPIURL      string
	WebexHTTPTimeout time.Duration

	GuestSubject     string
	GuestDisplayName string

	RefreshHour     int
	RefreshMinute   int
	RefreshLocation *time.Location

	RequestAccessDelay time.Duration
	RequestsCSVPath    string
	PublicDir          string

	LogLevel  string
	LogFormat string

	CORSAllowedOrigins []string

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RedisURL          string

	// TrustProxy makes the rate limiter read the client IP from
	// X-Forwarded-For. Only safe behind a proxy that appends to it.
	TrustProxy bool
}

var (
	ErrInvalidPort      = errors.New("PORT must be a number between 1 and 65535")
	ErrInvalidRefreshAt = errors.New("REFRESH_AT must be formatted as HH:MM")
	ErrInvalidTimezone  = errors.New("REFRESH_TIMEZONE is not a known location")
	ErrInvalidDuration  = errors.New("invalid duration format")
	ErrInvalidRateLimit = errors.New("RATE_LIMIT_REQUESTS must be positive")
)

// Load reads configuration from the environment. Outside production a .env
// file in the working directory is loaded first.
func Load() (*Config, error) {
	env := executionMode()
	if env != EnvProduction {
		_ = godotenv.Load()
		// .env may set the mode itself
		env = executionMode()
	}

	cfg := &Config{
		Environment:      env,
		ServerHost:       os.Getenv("HOST"),
		ServerPort:       getEnvOrDefault("PORT", DefaultPort),
		RefreshToken:     os.Getenv("REFRESH_TOKEN"),
		ClientID:         os.Getenv("CLIENT_ID"),
		ClientSecret:     os.Getenv("CLIENT_SECRET"),
		WebexAPIURL:      getEnvOrDefault("WEBEX_API_URL", DefaultWebexAPIURL),
		GuestSubject:     os.Getenv("GUEST_SUBJECT"),
		GuestDisplayName: os.Getenv("GUEST_DISPLAY_NAME"),
		RequestsCSVPath:  getEnvOrDefault("REQUESTS_CSV_PATH", DefaultRequestsPath),
		PublicDir:        getEnvOrDefault("PUBLIC_DIR", DefaultPublicDir),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        getEnvOrDefault("LOG_FORMAT", "json"),
		RateLimitEnabled: getEnvOrDefaultBool("RATE_LIMIT_ENABLED", true),
		RedisURL:         os.Getenv("REDIS_URL"),
		TrustProxy:       getEnvOrDefaultBool("TRUST_PROXY", false),

		CORSAllowedOrigins: parseAllowedOrigins(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port < 1 || port > 65535 {
		return nil, ErrInvalidPort
	}

	hour, minute, err := parseClock(getEnvOrDefault("REFRESH_AT", DefaultRefreshAt))
	if err != nil {
		return nil, err
	}
	cfg.RefreshHour = hour
	cfg.RefreshMinute = minute

	loc, err := time.LoadLocation(getEnvOrDefault("REFRESH_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimezone, err)
	}
	cfg.RefreshLocation = loc

	if cfg.WebexHTTPTimeout, err = getEnvOrDefaultDuration("WEBEX_HTTP_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestAccessDelay, err = getEnvOrDefaultDuration("REQUEST_ACCESS_DELAY", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = getEnvOrDefaultDuration("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}

	cfg.RateLimitRequests = getEnvOrDefaultInt("RATE_LIMIT_REQUESTS", 10)
	if cfg.RateLimitEnabled && cfg.RateLimitRequests <= 0 {
		return nil, ErrInvalidRateLimit
	}

	return cfg, nil
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// ServerWriteTimeout outlasts the slowest handler: an outbound platform call
// or the access request delay, plus a margin to write the response.
func (c *Config) ServerWriteTimeout() time.Duration {
	return max(c.WebexHTTPTimeout, c.RequestAccessDelay) + 15*time.Second
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.ServerHost, c.ServerPort)
}

// MissingCredentials lists the OAuth settings that are unset. The service
// still starts without them; the startup refresh fails and is logged.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.RefreshToken == "" {
		missing = append(missing, "REFRESH_TOKEN")
	}
	if c.ClientID == "" {
		missing = append(missing, "CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "CLIENT_SECRET")
	}
	return missing
}

func executionMode() string {
	if v := os.Getenv("NODE_ENV"); v != "" {
		return v
	}
	return getEnvOrDefault("ENV", EnvDevelopment)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// getEnvOrDefaultDuration interprets plain numbers as seconds, anything else
// as a Go duration.
func getEnvOrDefaultDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	if n, err := strconv.Atoi(value); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("%w: %s=%q", ErrInvalidDuration, key, value)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidDuration, key, value)
	}
	return d, nil
}

func parseClock(value string) (int, int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRefreshAt, value)
	}
	return t.Hour(), t.Minute(), nil
}

func parseAllowedOrigins(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}
