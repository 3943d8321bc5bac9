// Package config loads process configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"weightbot/internal/logging"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var (
	// ErrMissingToken means TELEGRAM_TOKEN is unset.
	ErrMissingToken = errors.New("TELEGRAM_TOKEN is required")
	// ErrInvalidToken means TELEGRAM_TOKEN does not look like <id>:<secret>.
	ErrInvalidToken = errors.New("TELEGRAM_TOKEN must look like <digits>:<secret>")
	// ErrMissingAdmin means ADMIN_ID is unset or not positive.
	ErrMissingAdmin = errors.New("ADMIN_ID must be a positive integer")
)

var tokenPattern = regexp.MustCompile(`^[0-9]+:[A-Za-z0-9_-]+$`)

// Backup configures the periodic backup job.
type Backup struct {
	Interval time.Duration
	Dir      string
	Keep     int
	Compress bool
}

// OIDC configures admin single sign-on. It is enabled when Issuer is set.
type OIDC struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether SSO is configured.
func (o OIDC) Enabled() bool {
	return o.Issuer != "" && o.ClientID != ""
}

// Config is the full process configuration.
type Config struct {
	TelegramToken string
	AdminID       int64

	StoreDriver  string
	DatabasePath string
	DatabaseURL  string

	Backup Backup

	HTTPAddr          string
	AdminPasswordHash string
	AdminEmails       []string
	OIDC              OIDC

	Log logging.Config
}

// Load reads the given .env files (default ".env") if present, then builds
// the configuration from the environment. Variables already set in the
// environment win over the files.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (*Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	c := &Config{
		TelegramToken:     env("TELEGRAM_TOKEN", ""),
		StoreDriver:       strings.ToLower(env("STORE_DRIVER", DriverSQLite)),
		DatabasePath:      env("DATABASE_PATH", "data/weight_tracker.db"),
		DatabaseURL:       env("DATABASE_URL", ""),
		HTTPAddr:          env("HTTP_ADDR", ""),
		AdminPasswordHash: env("ADMIN_PASSWORD_HASH", ""),
		AdminEmails:       splitList(env("ADMIN_EMAILS", "")),
		OIDC: OIDC{
			Issuer:       env("OIDC_ISSUER", ""),
			ClientID:     env("OIDC_CLIENT_ID", ""),
			ClientSecret: env("OIDC_CLIENT_SECRET", ""),
			RedirectURL:  env("OIDC_REDIRECT_URL", ""),
		},
		Backup: Backup{Dir: env("BACKUP_DIR", "backups")},
	}

	var err error
	if raw := env("ADMIN_ID", ""); raw != "" {
		if c.AdminID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, fmt.Errorf("config: ADMIN_ID: %w", err)
		}
	}
	if c.Backup.Interval, err = time.ParseDuration(env("BACKUP_INTERVAL", "24h")); err != nil {
		return nil, fmt.Errorf("config: BACKUP_INTERVAL: %w", err)
	}
	if c.Backup.Keep, err = strconv.Atoi(env("BACKUP_KEEP", "7")); err != nil {
		return nil, fmt.Errorf("config: BACKUP_KEEP: %w", err)
	}
	if c.Backup.Compress, err = strconv.ParseBool(env("BACKUP_COMPRESS", "true")); err != nil {
		return nil, fmt.Errorf("config: BACKUP_COMPRESS: %w", err)
	}

	dev := env("LOG_DEV", "") == "1"
	lvl := "info"
	if dev {
		lvl = "debug"
	}
	c.Log = logging.Config{Level: env("LOG_LEVEL", lvl), Dev: dev}

	switch c.StoreDriver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return nil, errors.New("config: DATABASE_URL is required for the postgres driver")
		}
	default:
		return nil, fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return c, nil
}

// ValidateBot checks the settings needed to talk to the chat platform.
func (c *Config) ValidateBot() error {
	if c.TelegramToken == "" {
		return ErrMissingToken
	}
	if !tokenPattern.MatchString(c.TelegramToken) {
		return ErrInvalidToken
	}
	if c.AdminID <= 0 {
		return ErrMissingAdmin
	}
	return nil
}

// TokenPrefix returns the first 10 characters of the token for logging.
func (c *Config) TokenPrefix() string {
	if len(c.TelegramToken) <= 10 {
		return strings.Repeat("*", len(c.TelegramToken))
	}
	return c.TelegramToken[:10] + "..."
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
