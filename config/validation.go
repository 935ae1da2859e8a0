package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report koanf paths instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks cfg against its struct tags and returns the first violation as a
// *ConfigError.
func Validate(cfg *Config) error {
	if cfg == nil {
		return NewInvalidFieldError("config", "cannot be nil", nil)
	}

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	return toConfigError(fieldErrs[0])
}

func toConfigError(fe validator.FieldError) *ConfigError {
	path := fieldPath(fe.Namespace())

	switch fe.Tag() {
	case "required", "required_with":
		return NewMissingFieldError(path)
	case "oneof":
		return NewInvalidFieldError(path, fmt.Sprintf("invalid value %q", fmt.Sprint(fe.Value())), strings.Fields(fe.Param()))
	case "url":
		return NewInvalidFieldError(path, fmt.Sprintf("invalid url %q", fmt.Sprint(fe.Value())), nil)
	default:
		return NewInvalidFieldError(path, fmt.Sprintf("value %v violates %s=%s", fe.Value(), fe.Tag(), fe.Param()), nil)
	}
}

// fieldPath drops the root struct name from a validator namespace
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
