// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/newsboard/internal/scheduler"
)

// Store backends selectable with NEWSBOARD_STORE.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DataDir       string `env:"NEWSBOARD_DATA_DIR" envDefault:"./Database"`
	Store         string `env:"NEWSBOARD_STORE" envDefault:"json"`
	DBPath        string `env:"NEWSBOARD_DB_PATH" envDefault:"./data/newsboard.db"`
	SessionSecret string `env:"NEWSBOARD_SESSION_SECRET,required"`
	ServerHost    string `env:"NEWSBOARD_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"NEWSBOARD_SERVER_PORT" envDefault:"3000"`
	Env           string `env:"NEWSBOARD_ENV" envDefault:"development"`
	LogLevel      string `env:"NEWSBOARD_LOG_LEVEL" envDefault:"info"`

	// Session configuration
	RedisURL        string        `env:"NEWSBOARD_REDIS_URL"` // Optional Redis URL for shared sessions
	SessionPrefix   string        `env:"NEWSBOARD_SESSION_PREFIX" envDefault:"newsboard:session:"`
	SessionLifetime time.Duration `env:"NEWSBOARD_SESSION_LIFETIME" envDefault:"1h"`
	RememberMeTTL   time.Duration `env:"NEWSBOARD_REMEMBER_ME_TTL" envDefault:"24h"`

	BcryptCost    int `env:"NEWSBOARD_BCRYPT_COST" envDefault:"10"`
	HomeNewsLimit int `env:"NEWSBOARD_HOME_NEWS_LIMIT" envDefault:"5"`

	// CounterAuditSchedule is a standard cron expression.
	CounterAuditSchedule string `env:"NEWSBOARD_COUNTER_AUDIT_SCHEDULE" envDefault:"*/15 * * * *"`

	// Seeding configuration
	DoSeed bool `env:"NEWSBOARD_DO_SEED" envDefault:"false"` // Create the demo account on an empty store
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisSessions returns true if sessions should live in Redis.
func (c Config) UseRedisSessions() bool {
	return c.RedisURL != ""
}

// UseSQLite returns true if the SQLite backend is selected.
func (c Config) UseSQLite() bool {
	return c.Store == StoreSQLite
}

// SlogLevel maps LogLevel onto a slog level. Unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MinSessionSecretLength is the minimum required length for the session secret.
// It doubles as the CSRF key, which needs 32 bytes.
const MinSessionSecretLength = 32

// Bcrypt cost bounds accepted from the environment.
const (
	minBcryptCost = 4
	maxBcryptCost = 31
)

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("NEWSBOARD_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("NEWSBOARD_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("NEWSBOARD_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks the non-secret settings.
func (c *Config) validate() error {
	switch c.Store {
	case StoreJSON, StoreSQLite:
	default:
		return fmt.Errorf("NEWSBOARD_STORE must be %q or %q, got %q", StoreJSON, StoreSQLite, c.Store)
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("NEWSBOARD_SERVER_PORT out of range: %d", c.ServerPort)
	}
	if c.SessionLifetime <= 0 {
		return fmt.Errorf("NEWSBOARD_SESSION_LIFETIME must be positive, got %s", c.SessionLifetime)
	}
	if c.RememberMeTTL <= 0 {
		return fmt.Errorf("NEWSBOARD_REMEMBER_ME_TTL must be positive, got %s", c.RememberMeTTL)
	}
	if c.BcryptCost < minBcryptCost || c.BcryptCost > maxBcryptCost {
		return fmt.Errorf("NEWSBOARD_BCRYPT_COST must be between %d and %d, got %d", minBcryptCost, maxBcryptCost, c.BcryptCost)
	}
	if c.HomeNewsLimit < 1 {
		return fmt.Errorf("NEWSBOARD_HOME_NEWS_LIMIT must be at least 1, got %d", c.HomeNewsLimit)
	}
	if err := scheduler.ValidateSchedule(c.CounterAuditSchedule); err != nil {
		return fmt.Errorf("NEWSBOARD_COUNTER_AUDIT_SCHEDULE: %w", err)
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
