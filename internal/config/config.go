// Package config reads chorecal's settings from the environment (optionally
// seeded from a .env file) and lets command-line flags override them.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const envPrefix = "CHORECAL_"

type Config struct {
	// Server
	Port string

	// Backend
	APIBaseURL string
	APITimeout time.Duration

	// Logging
	LogLevel  string
	LogFormat string
	// LogFile is where the terminal front-end writes logs. Empty discards.
	LogFile string

	// Sessions
	SessionTTL time.Duration
	SessionKey string
	// SecureCookies marks session cookies HTTPS-only.
	SecureCookies bool

	// Chat
	ReplyDelay    time.Duration
	ChatRateLimit int

	// Timezone names the calendar's location. Empty means local time.
	Timezone string
}

// Load reads the environment after loading .env files, if present. Values
// that fail to parse fall back to their defaults.
func Load(envFiles ...string) *Config {
	godotenv.Load(envFiles...)

	return &Config{
		Port:          getEnvOrDefault("PORT", "3000"),
		APIBaseURL:    getEnvOrDefault("API_BASE_URL", "http://localhost:8080/api/v1"),
		APITimeout:    getEnvAsDurationOrDefault("API_TIMEOUT", 10*time.Second),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:     getEnvOrDefault("LOG_FORMAT", "text"),
		LogFile:       getEnvOrDefault("LOG_FILE", ""),
		SessionTTL:    getEnvAsDurationOrDefault("SESSION_TTL", 2*time.Hour),
		SessionKey:    getEnvOrDefault("SESSION_KEY", ""),
		SecureCookies: getEnvAsBoolOrDefault("SECURE_COOKIES", false),
		ReplyDelay:    getEnvAsDurationOrDefault("REPLY_DELAY", 300*time.Millisecond),
		ChatRateLimit: getEnvAsIntOrDefault("CHAT_RATE_LIMIT", 20),
		Timezone:      getEnvOrDefault("TIMEZONE", ""),
	}
}

// BindFlags registers the flags shared by both front-ends, defaulting to
// the values already loaded.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.APIBaseURL, "api-base-url", c.APIBaseURL, "base URL of the chores REST API")
	fs.DurationVar(&c.APITimeout, "api-timeout", c.APITimeout, "timeout for each backend request")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format: text or json")
	fs.DurationVar(&c.ReplyDelay, "reply-delay", c.ReplyDelay, "delay before the chat bot replies")
	fs.StringVar(&c.Timezone, "timezone", c.Timezone, "IANA timezone for the calendar (default local)")
}

// BindServerFlags registers the web front-end's flags.
func (c *Config) BindServerFlags(fs *pflag.FlagSet) {
	c.BindFlags(fs)
	fs.StringVarP(&c.Port, "port", "p", c.Port, "HTTP listen port")
	fs.DurationVar(&c.SessionTTL, "session-ttl", c.SessionTTL, "idle time before a view session expires")
	fs.StringVar(&c.SessionKey, "session-key", c.SessionKey, "secret for signing session cookies (random when empty)")
	fs.BoolVar(&c.SecureCookies, "secure-cookies", c.SecureCookies, "mark session cookies HTTPS-only")
	fs.IntVar(&c.ChatRateLimit, "chat-rate-limit", c.ChatRateLimit, "chat messages allowed per session per minute (0 disables)")
}

// BindTUIFlags registers the terminal front-end's flags.
func (c *Config) BindTUIFlags(fs *pflag.FlagSet) {
	c.BindFlags(fs)
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "write logs to this file (discarded when empty)")
}

// Validate checks values the parsers accept but the program cannot use.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api base url %q: must be an absolute URL", c.APIBaseURL)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("api timeout must be positive, got %s", c.APITimeout)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	if len(c.SessionKey) > 64 {
		return fmt.Errorf("session key is %d bytes, at most 64 allowed", len(c.SessionKey))
	}
	if c.ReplyDelay < 0 {
		return fmt.Errorf("reply delay must not be negative, got %s", c.ReplyDelay)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(envPrefix + key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(envPrefix + key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envPrefix + key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(envPrefix + key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
