// Package config loads and validates the gpst-client configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultConfigPath is the default location for the client config file.
const DefaultConfigPath = "/etc/gpst-client/gpst-client.yaml"

// Config holds all configuration needed to connect to a GlobalProtect
// gateway and run the tunnel core.
type Config struct {
	// Gateway is the gateway host (scheme+host, e.g. https://vpn.example.com).
	Gateway string `mapstructure:"gateway" yaml:"gateway"`

	// SessionCookie is the already-acquired opaque session cookie
	// (user=...&authcookie=...&...). Acquiring it is out of scope for
	// this core; it is always an input.
	SessionCookie string `mapstructure:"session_cookie" yaml:"session_cookie"`

	// OSVersion/ClientOS feed the getconfig request body verbatim
	// (ClientOS is separately mapped "win"->"Windows" by the negotiator).
	OSVersion string `mapstructure:"os_version" yaml:"os_version"`
	ClientOS  string `mapstructure:"client_os" yaml:"client_os"`

	// ReqMTU/BaseMTU are operator overrides for the MTU estimator; 0
	// means "let the estimator decide".
	ReqMTU  int `mapstructure:"req_mtu" yaml:"req_mtu"`
	BaseMTU int `mapstructure:"base_mtu" yaml:"base_mtu"`

	IPv6 bool `mapstructure:"ipv6" yaml:"ipv6"`

	// HTTPTimeout bounds the getconfig round-trip.
	HTTPTimeout time.Duration `mapstructure:"http_timeout" yaml:"http_timeout"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Load reads configuration from configPath (falling back to
// DefaultConfigPath when empty), overridden by GPST_-prefixed
// environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("os_version", "6.2")
	v.SetDefault("client_os", "linux")
	v.SetDefault("http_timeout", 30*time.Second)
	v.SetDefault("log_level", "info")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(DefaultConfigPath)
	}

	v.SetEnvPrefix("GPST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	envBindings := map[string]string{
		"gateway":        "GPST_GATEWAY",
		"session_cookie": "GPST_SESSION_COOKIE",
		"os_version":     "GPST_OS_VERSION",
		"client_os":      "GPST_CLIENT_OS",
		"req_mtu":        "GPST_REQ_MTU",
		"base_mtu":       "GPST_BASE_MTU",
		"ipv6":           "GPST_IPV6",
		"http_timeout":   "GPST_HTTP_TIMEOUT",
		"log_level":      "GPST_LOG_LEVEL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the fields this core cannot run without are
// present.
func (c *Config) Validate() error {
	if c.Gateway == "" {
		return fmt.Errorf("gateway is required")
	}
	if c.SessionCookie == "" {
		return fmt.Errorf("session_cookie is required")
	}
	return nil
}
