// Package config assembles settings for the reference backend and the
// terminal client from the environment (optionally seeded by a .env file)
// and, for the client, an optional YAML profile.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Server holds the reference backend settings.
type Server struct {
	Port           string
	DBPath         string // empty → in-memory store
	JWTSecret      string
	ClientOrigin   string
	CookieSecure   bool
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	RateLimitRPS   int
	RateLimitBurst int
	LogLevel       string
}

// Client holds the terminal client settings.
type Client struct {
	APIBase    string        `yaml:"api_base"`
	Lang       string        `yaml:"lang"`
	Theme      string        `yaml:"theme"`
	WordLength int           `yaml:"word_length"`
	RPS        int           `yaml:"rps"`
	Timeout    time.Duration `yaml:"timeout"`
	Username   string        `yaml:"username"`
	LogLevel   string        `yaml:"log_level"`
}

// LoadDotEnv reads .env if present. A missing file is not an error.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, reading from environment")
	}
}

// LoadServer reads the backend settings from the environment.
func LoadServer() (*Server, error) {
	cfg := &Server{
		Port:           getEnv("PORT", "8000"),
		DBPath:         os.Getenv("DB_PATH"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://127.0.0.1:5500"),
		CookieSecure:   getEnvAsBool("JWT_COOKIE_SECURE", false),
		AccessTTL:      getEnvAsDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL:     getEnvAsDuration("REFRESH_TOKEN_TTL", 14*24*time.Hour),
		RateLimitRPS:   getEnvAsInt("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive (access=%s refresh=%s)", cfg.AccessTTL, cfg.RefreshTTL)
	}
	return cfg, nil
}

// DefaultClient returns the client settings used when nothing is configured.
func DefaultClient() *Client {
	return &Client{
		APIBase:    "http://127.0.0.1:8000",
		Lang:       "en",
		Theme:      "amber",
		WordLength: 5,
		RPS:        5,
		Timeout:    10 * time.Second,
		LogLevel:   "warn",
	}
}

// DefaultProfilePath is ~/.config/vocabgames/profile.yaml.
func DefaultProfilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "profile.yaml"
	}
	return filepath.Join(dir, "vocabgames", "profile.yaml")
}

// LoadClient loads the YAML profile at path over the defaults, then applies
// environment overrides. A missing profile yields the defaults.
func LoadClient(path string) (*Client, error) {
	cfg := DefaultClient()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse profile: %w", err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read profile: %w", err)
		}
	}
	cfg.applyEnvOverrides()
	if cfg.WordLength < 1 {
		return nil, fmt.Errorf("word_length must be positive, got %d", cfg.WordLength)
	}
	return cfg, nil
}

func (c *Client) applyEnvOverrides() {
	if v := os.Getenv("API_BASE"); v != "" {
		c.APIBase = v
	}
	if v := os.Getenv("RANDOM_WORD_LANG"); v != "" {
		c.Lang = v
	}
	c.RPS = getEnvAsInt("CLIENT_RPS", c.RPS)
	c.Timeout = getEnvAsDuration("CLIENT_TIMEOUT", c.Timeout)
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Save writes the profile to path, creating parent directories.
func (c *Client) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(k string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return v
	}
	return def
}

func getEnvAsBool(k string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(k)); err == nil {
		return v
	}
	return def
}

func getEnvAsDuration(k string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return v
	}
	return def
}
