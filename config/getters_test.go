package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetters(t *testing.T) {
	cfg, err := Parse([]byte("custom:\n  label: nightly\n  shards: 4\n  headless: true\n  settle: 2s\n"))
	require.NoError(t, err)

	assert.Equal(t, "nightly", cfg.GetString("custom.label"))
	assert.Equal(t, "fallback", cfg.GetString("custom.missing", "fallback"))
	assert.Equal(t, 4, cfg.GetInt("custom.shards"))
	assert.Equal(t, 9, cfg.GetInt("custom.missing", 9))
	assert.True(t, cfg.GetBool("custom.headless"))
	assert.False(t, cfg.GetBool("custom.missing"))
	assert.Equal(t, 2*time.Second, cfg.GetDuration("custom.settle"))
	assert.Equal(t, time.Minute, cfg.GetDuration("custom.missing", time.Minute))
	assert.Equal(t, "nightly", cfg.All()["custom.label"])
}

func TestUnmarshalSection(t *testing.T) {
	cfg, err := Parse([]byte("observability:\n  enabled: true\n  service:\n    name: runner\n"))
	require.NoError(t, err)

	var section struct {
		Enabled bool `mapstructure:"enabled"`
		Service struct {
			Name string `mapstructure:"name"`
		} `mapstructure:"service"`
	}
	require.NoError(t, cfg.Unmarshal("observability", &section))
	assert.True(t, section.Enabled)
	assert.Equal(t, "runner", section.Service.Name)
}

func TestNilConfigAccessors(t *testing.T) {
	var cfg *Config

	assert.False(t, cfg.Exists("app.name"))
	assert.Equal(t, "x", cfg.GetString("app.name", "x"))
	assert.Empty(t, cfg.All())

	err := cfg.Unmarshal("app", &struct{}{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.True(t, IsNotConfigured(err))
}

func TestConfigErrorFormatting(t *testing.T) {
	missing := NewMissingFieldError("webdriver.auth.password")
	assert.Equal(t, CategoryMissing, missing.Category)
	assert.Equal(t, "config: webdriver.auth.password is required (set WEBDRIVER_AUTH_PASSWORD or webdriver.auth.password in config.yaml)", missing.Error())

	invalid := NewInvalidFieldError("app.env", "invalid value \"qa\"", []string{EnvDevelopment, EnvProduction})
	assert.Equal(t, "config: app.env invalid value \"qa\" (one of: development, production)", invalid.Error())

	plain := NewInvalidFieldError("webdriver.timeout", "must be positive", nil)
	assert.Equal(t, "config: webdriver.timeout must be positive", plain.Error())

	assert.False(t, IsNotConfigured(invalid))
	assert.False(t, IsNotConfigured(nil))
}

func TestValidateNil(t *testing.T) {
	err := Validate(nil)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "config", cfgErr.Field)
}
