// Package config loads service configuration from a YAML file with
// environment variable overrides (CUSTODIA_*).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full configuration surface of the service.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Store      StoreConfig      `koanf:"store"`
	Consent    ConsentConfig    `koanf:"consent"`
	Audit      AuditConfig      `koanf:"audit"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Violation  ViolationConfig  `koanf:"violation"`
	LogLevel   string           `koanf:"log_level"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr string `koanf:"addr"`
	// JWTSigningKey enables bearer-token auth on consent routes when set.
	JWTSigningKey string `koanf:"jwt_signing_key"`
}

// StoreConfig selects the consent/audit persistence backend.
type StoreConfig struct {
	// Driver is one of "memory" or "sqlite". The postgres-backed stores are
	// constructed by deployments that open their own *sql.DB.
	Driver string `koanf:"driver"`
	// DSN is the SQLite path when driver is "sqlite".
	DSN string `koanf:"dsn"`
	// Timeout bounds individual store operations. A timeout surfaces as
	// store_unavailable, never as a denial.
	Timeout time.Duration `koanf:"timeout"`
}

// ConsentConfig carries the consent policy knobs.
type ConsentConfig struct {
	// RequiredCategories must all be present in a registration payload.
	RequiredCategories []string `koanf:"required_categories"`
	// DefaultValidity is applied when a registration does not request one.
	DefaultValidity time.Duration `koanf:"default_validity"`
}

// AuditConfig controls the audit trail publisher.
type AuditConfig struct {
	// AsyncBuffer > 0 enables non-blocking audit emission with the given
	// buffer size. Zero means strict synchronous audit-before-respond.
	AsyncBuffer int `koanf:"async_buffer"`
}

// ClassifierConfig maps vendor finding types onto the category vocabulary.
type ClassifierConfig struct {
	TypeMapping map[string]string `koanf:"type_mapping"`
}

// ViolationConfig declares the downstream containment collaborators.
type ViolationConfig struct {
	RedactableCategories []string `koanf:"redactable_categories"`
	ControllerURL        string   `koanf:"controller_url"`
	RedactionURL         string   `koanf:"redaction_url"`
}

// Default returns the built-in configuration, mirroring the defaults the
// original deployment shipped with.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Store: StoreConfig{
			Driver:  "memory",
			Timeout: 5 * time.Second,
		},
		Consent: ConsentConfig{
			RequiredCategories: []string{"data_processing"},
			DefaultValidity:    365 * 24 * time.Hour,
		},
		Audit: AuditConfig{
			AsyncBuffer: 256,
		},
		Classifier: ClassifierConfig{
			TypeMapping: map[string]string{
				"PERSON_NAME":        "person_name",
				"EMAIL_ADDRESS":      "email",
				"PHONE_NUMBER":       "phone_number",
				"CREDIT_CARD_NUMBER": "credit_card",
			},
		},
		Violation: ViolationConfig{
			RedactableCategories: []string{"email", "phone_number"},
		},
		LogLevel: "info",
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (CUSTODIA_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	// Double underscore nests: CUSTODIA_SERVER__ADDR -> server.addr,
	// CUSTODIA_LOG_LEVEL -> log_level.
	if err := k.Load(env.Provider("CUSTODIA_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "CUSTODIA_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validDrivers is the set of recognized store driver values.
var validDrivers = map[string]bool{
	"memory": true,
	"sqlite": true,
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if !validDrivers[c.Store.Driver] {
		return fmt.Errorf("invalid store.driver %q: must be one of memory, sqlite", c.Store.Driver)
	}
	if c.Store.Driver == "sqlite" && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for the sqlite driver")
	}
	if c.Consent.DefaultValidity <= 0 {
		return fmt.Errorf("consent.default_validity must be positive")
	}
	if c.Store.Timeout < 0 {
		return fmt.Errorf("store.timeout must be non-negative")
	}
	if c.Audit.AsyncBuffer < 0 {
		return fmt.Errorf("audit.async_buffer must be non-negative")
	}
	return nil
}
