package authstate

import (
	"errors"
	"strings"
	"time"
)

// Config controls manager behavior. Populate it through [Builder.WithConfig]
// before Build; the manager treats its copy as immutable afterwards.
type Config struct {
	Store         StoreConfig
	Email         EmailConfig
	Avatar        AvatarConfig
	PasswordReset PasswordResetConfig
	Audit         AuditConfig
	Metrics       MetricsConfig
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig names the key-value slots the credential store persists
// through. Namespace only applies to the Redis-backed store.
type StoreConfig struct {
	Namespace   string
	UsersKey    string
	SessionKey  string
	ResetPrefix string
}

// EmailConfig controls how email addresses are canonicalized before they
// reach the store.
type EmailConfig struct {
	// Normalize lowercases and trims addresses on register and login.
	// Matching in the store is case-insensitive either way; this only
	// affects the stored form.
	Normalize bool
}

// AvatarConfig controls the avatar URL stamped onto new registrations.
type AvatarConfig struct {
	// URLTemplate must contain one %s verb, replaced with the
	// query-escaped display name. Empty disables avatar assignment.
	URLTemplate string
}

/*
====================================
PASSWORD RESET CONFIG
====================================
*/

// PasswordResetConfig controls the simulated password-reset flow.
type PasswordResetConfig struct {
	Enabled     bool
	ResetTTL    time.Duration
	MaxAttempts int
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters and latency histograms.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Namespace:   "authstate",
			UsersKey:    "users",
			SessionKey:  "session",
			ResetPrefix: "reset:",
		},
		Email: EmailConfig{
			Normalize: true,
		},
		Avatar: AvatarConfig{
			URLTemplate: "https://api.dicebear.com/7.x/micah/svg?seed=%s",
		},
		PasswordReset: PasswordResetConfig{
			Enabled:     false,
			ResetTTL:    15 * time.Minute,
			MaxAttempts: 5,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig returns the configuration Build starts from when none is
// supplied.
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	// Every field is a value type, so a shallow copy is a full copy.
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration problem found, or nil.
func (c *Config) Validate() error {
	// Store
	if c.Store.UsersKey == "" {
		return errors.New("Store UsersKey is required")
	}
	if c.Store.SessionKey == "" {
		return errors.New("Store SessionKey is required")
	}
	if c.Store.UsersKey == c.Store.SessionKey {
		return errors.New("Store UsersKey and SessionKey must differ")
	}

	// Avatar
	if c.Avatar.URLTemplate != "" && !strings.Contains(c.Avatar.URLTemplate, "%s") {
		return errors.New("Avatar URLTemplate must contain a %s verb")
	}

	// Password Reset
	if c.PasswordReset.Enabled {
		if c.Store.ResetPrefix == "" {
			return errors.New("Store ResetPrefix is required when password reset is enabled")
		}
		if c.PasswordReset.ResetTTL <= 0 {
			return errors.New("PasswordReset ResetTTL must be > 0")
		}
		if c.PasswordReset.MaxAttempts <= 0 {
			return errors.New("PasswordReset MaxAttempts must be > 0")
		}
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	return nil
}
