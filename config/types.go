package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

// Config represents the overall application configuration structure.
// The embedded koanf.Koanf instance allows for flexible access to sections
// not explicitly defined in the struct, such as observability.
type Config struct {
	App       AppConfig       `koanf:"app" json:"app" yaml:"app" mapstructure:"app"`
	Log       LogConfig       `koanf:"log" json:"log" yaml:"log" mapstructure:"log"`
	WebDriver WebDriverConfig `koanf:"webdriver" json:"webdriver" yaml:"webdriver" mapstructure:"webdriver"`

	// k holds the underlying Koanf instance for flexible access to custom configurations
	k *koanf.Koanf `json:"-" yaml:"-" mapstructure:"-"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name    string `koanf:"name" json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	Version string `koanf:"version" json:"version" yaml:"version" mapstructure:"version" validate:"required"`
	Env     string `koanf:"env" json:"env" yaml:"env" mapstructure:"env" validate:"oneof=development staging production"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" mapstructure:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty" mapstructure:"pretty"`
}

// WebDriverConfig holds the transport settings for the WebDriver remote end.
type WebDriverConfig struct {
	// BaseURL prefixes relative command paths, e.g. http://localhost:4444/wd/hub
	BaseURL string `koanf:"baseurl" json:"baseurl" yaml:"baseurl" mapstructure:"baseurl" validate:"omitempty,url"`
	// Timeout bounds each transport attempt. Default: 60s.
	Timeout   time.Duration     `koanf:"timeout" json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	Retry     RetryConfig       `koanf:"retry" json:"retry" yaml:"retry" mapstructure:"retry"`
	Redirects RedirectConfig    `koanf:"redirects" json:"redirects" yaml:"redirects" mapstructure:"redirects"`
	TLS       TLSConfig         `koanf:"tls" json:"tls" yaml:"tls" mapstructure:"tls"`
	Rate      RateConfig        `koanf:"rate" json:"rate" yaml:"rate" mapstructure:"rate"`
	Log       WireLogConfig     `koanf:"log" json:"log" yaml:"log" mapstructure:"log"`
	Trace     TraceConfig       `koanf:"trace" json:"trace" yaml:"trace" mapstructure:"trace"`
	Auth      AuthConfig        `koanf:"auth" json:"auth" yaml:"auth" mapstructure:"auth"`
	Headers   map[string]string `koanf:"headers" json:"headers" yaml:"headers" mapstructure:"headers"`
}

// RetryConfig bounds connection retries. Only refused connections are retried.
type RetryConfig struct {
	Attempts int           `koanf:"attempts" json:"attempts" yaml:"attempts" mapstructure:"attempts" validate:"gte=1,lte=100"`
	Delay    time.Duration `koanf:"delay" json:"delay" yaml:"delay" mapstructure:"delay" validate:"gte=0"`
}

// RedirectConfig holds the default redirect policy.
type RedirectConfig struct {
	Follow bool `koanf:"follow" json:"follow" yaml:"follow" mapstructure:"follow"`
}

// TLSConfig holds TLS settings for https remote ends.
type TLSConfig struct {
	Insecure bool `koanf:"insecure" json:"insecure" yaml:"insecure" mapstructure:"insecure"`
}

// RateConfig caps commands per second. Limit 0 disables limiting.
type RateConfig struct {
	Limit float64 `koanf:"limit" json:"limit" yaml:"limit" mapstructure:"limit" validate:"gte=0"`
	Burst int     `koanf:"burst" json:"burst" yaml:"burst" mapstructure:"burst" validate:"gte=0"`
}

// WireLogConfig controls payload logging.
type WireLogConfig struct {
	Payloads bool `koanf:"payloads" json:"payloads" yaml:"payloads" mapstructure:"payloads"`
	MaxBytes int  `koanf:"maxbytes" json:"maxbytes" yaml:"maxbytes" mapstructure:"maxbytes" validate:"gte=0"`
}

// TraceConfig controls request ID and W3C trace propagation.
type TraceConfig struct {
	Header string `koanf:"header" json:"header" yaml:"header" mapstructure:"header"`
	W3C    bool   `koanf:"w3c" json:"w3c" yaml:"w3c" mapstructure:"w3c"`
}

// AuthConfig holds basic auth credentials for grids that require them.
type AuthConfig struct {
	Username string `koanf:"username" json:"username" yaml:"username" mapstructure:"username"`
	Password string `koanf:"password" json:"-" yaml:"password" mapstructure:"password" validate:"required_with=Username"`
}
