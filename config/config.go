// Package config loads application configuration from defaults, YAML files and
// environment variables using koanf.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// envPrefixes restricts environment loading to the sections this module owns
var envPrefixes = []string{"APP_", "LOG_", "WEBDRIVER_", "OBSERVABILITY_"}

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. config.yaml, then config.<env>.yaml
// 3. Default values (lowest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := loadOptionalFile(k, "config.yaml"); err != nil {
		return nil, err
	}

	if env := k.String("app.env"); env != "" {
		if err := loadOptionalFile(k, fmt.Sprintf("config.%s.yaml", env)); err != nil {
			return nil, err
		}
	}

	return finish(k)
}

// LoadFile loads defaults, the given YAML file and environment variables.
// Unlike Load, a missing file is an error.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	return finish(k)
}

// Parse builds a configuration from defaults and the given YAML document only.
// Environment variables are ignored, which keeps it deterministic for tests.
func Parse(data []byte) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return unmarshal(k)
}

func finish(k *koanf.Koanf) (*Config, error) {
	if err := k.Load(envprovider.Provider(".", envprovider.Opt{
		TransformFunc: envTransform,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.k = k

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadOptionalFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// envTransform converts WEBDRIVER_RETRY_ATTEMPTS to webdriver.retry.attempts and
// drops variables outside the known sections.
func envTransform(key, value string) (string, any) {
	for _, prefix := range envPrefixes {
		if strings.HasPrefix(key, prefix) {
			return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
		}
	}
	return "", nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":    "webdriver-client",
		"app.version": "v1.0.0",
		"app.env":     EnvDevelopment,

		"log.level":  "info",
		"log.pretty": false,

		"webdriver.baseurl":          "",
		"webdriver.timeout":          "60s",
		"webdriver.retry.attempts":   10,
		"webdriver.retry.delay":      "100ms",
		"webdriver.redirects.follow": false,
		"webdriver.tls.insecure":     false,
		"webdriver.rate.limit":       0,
		"webdriver.rate.burst":       1,
		"webdriver.log.payloads":     false,
		"webdriver.log.maxbytes":     1024,
		"webdriver.trace.header":     "X-Request-ID",
		"webdriver.trace.w3c":        false,

		"observability.enabled": false,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
