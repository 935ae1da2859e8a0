package config

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/v2"
)

// koanfConf decodes sections through their mapstructure tags
var koanfConf = koanf.UnmarshalConf{Tag: "mapstructure"}

// GetString retrieves a string value from the configuration or the provided default.
func (c *Config) GetString(key string, defaultVal ...string) string {
	if !c.Exists(key) {
		return optionalDefault("", defaultVal...)
	}
	return c.k.String(key)
}

// GetInt retrieves an int value from the configuration or the provided default.
func (c *Config) GetInt(key string, defaultVal ...int) int {
	if !c.Exists(key) {
		return optionalDefault(0, defaultVal...)
	}
	return c.k.Int(key)
}

// GetBool retrieves a bool value from the configuration or the provided default.
func (c *Config) GetBool(key string, defaultVal ...bool) bool {
	if !c.Exists(key) {
		return optionalDefault(false, defaultVal...)
	}
	return c.k.Bool(key)
}

// GetDuration retrieves a duration value from the configuration or the provided default.
func (c *Config) GetDuration(key string, defaultVal ...time.Duration) time.Duration {
	if !c.Exists(key) {
		return optionalDefault(time.Duration(0), defaultVal...)
	}
	return c.k.Duration(key)
}

// Unmarshal decodes the section at key into out. Sections without a typed field on
// Config, such as observability, are read this way.
func (c *Config) Unmarshal(key string, out any) error {
	if c == nil || c.k == nil {
		return fmt.Errorf("config not loaded: %w", ErrNotConfigured)
	}
	return c.k.UnmarshalWithConf(key, out, koanfConf)
}

// Exists reports whether key is set in any source.
func (c *Config) Exists(key string) bool {
	return c != nil && c.k != nil && c.k.Exists(key)
}

// All returns every loaded key flattened to dotted paths.
func (c *Config) All() map[string]any {
	if c == nil || c.k == nil {
		return map[string]any{}
	}
	return c.k.All()
}

func optionalDefault[T any](zero T, overrides ...T) T {
	if len(overrides) > 0 {
		return overrides[0]
	}
	return zero
}
