package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, []string{"data_processing"}, cfg.Consent.RequiredCategories)
	assert.Equal(t, 365*24*time.Hour, cfg.Consent.DefaultValidity)
	assert.Equal(t, "email", cfg.Classifier.TypeMapping["EMAIL_ADDRESS"])
	assert.Contains(t, cfg.Violation.RedactableCategories, "phone_number")
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custodia.yaml")
	content := []byte(`
server:
  addr: ":9090"
store:
  driver: sqlite
  dsn: /tmp/custodia.db
consent:
  required_categories: [data_processing, marketing]
  default_validity: 720h
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, []string{"data_processing", "marketing"}, cfg.Consent.RequiredCategories)
	assert.Equal(t, 720*time.Hour, cfg.Consent.DefaultValidity)
	// Untouched sections keep their defaults.
	assert.Equal(t, 256, cfg.Audit.AsyncBuffer)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CUSTODIA_SERVER__ADDR", ":7070")
	t.Setenv("CUSTODIA_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		cfg := Default()
		cfg.Store.Driver = "oracle"
		assert.Error(t, cfg.Validate())
	})

	t.Run("sqlite without dsn", func(t *testing.T) {
		cfg := Default()
		cfg.Store.Driver = "sqlite"
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive validity", func(t *testing.T) {
		cfg := Default()
		cfg.Consent.DefaultValidity = 0
		assert.Error(t, cfg.Validate())
	})
}
