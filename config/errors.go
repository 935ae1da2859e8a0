package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured is returned when a section is read from a Config that was never loaded
var ErrNotConfigured = errors.New("not configured")

// Error categories
const (
	CategoryMissing = "missing"
	CategoryInvalid = "invalid"
)

// ConfigError reports a configuration value that failed validation, naming the dotted
// path and, for missing values, the environment variable that can supply it.
//
//nolint:revive // config.ConfigError reads better than config.Error at call sites
type ConfigError struct {
	Category string
	Field    string
	Message  string
	// EnvVar is set for missing values
	EnvVar string
	// Options lists the accepted values for enumerated fields
	Options []string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config: ")
	b.WriteString(e.Field)
	if e.Message != "" {
		b.WriteString(" ")
		b.WriteString(e.Message)
	}
	switch {
	case e.EnvVar != "":
		fmt.Fprintf(&b, " (set %s or %s in config.yaml)", e.EnvVar, e.Field)
	case len(e.Options) > 0:
		fmt.Fprintf(&b, " (one of: %s)", strings.Join(e.Options, ", "))
	}
	return b.String()
}

// NewMissingFieldError reports a required value that no source provided.
func NewMissingFieldError(field string) *ConfigError {
	return &ConfigError{
		Category: CategoryMissing,
		Field:    field,
		Message:  "is required",
		EnvVar:   envVarFor(field),
	}
}

// NewInvalidFieldError reports a value outside its allowed range or set.
func NewInvalidFieldError(field, message string, options []string) *ConfigError {
	return &ConfigError{
		Category: CategoryInvalid,
		Field:    field,
		Message:  message,
		Options:  options,
	}
}

// IsNotConfigured reports whether err stems from reading an unloaded Config.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

// envVarFor maps webdriver.retry.attempts to WEBDRIVER_RETRY_ATTEMPTS
func envVarFor(path string) string {
	return strings.ToUpper(strings.ReplaceAll(path, ".", "_"))
}
