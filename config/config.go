// Package config resolves service settings from defaults and environment variables using viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration keys. Each key is also readable from the environment with dots
// replaced by underscores, e.g. upstream.host -> UPSTREAM_HOST.
const (
	KeyPort              = "port"
	KeyUpstreamHost      = "upstream.host"
	KeyUpstreamScheme    = "upstream.scheme"
	KeyRelayReferer      = "relay.referer"
	KeyRelayUserAgent    = "relay.user_agent"
	KeyHTTPTimeout       = "http.timeout"
	KeyHTTPHeaderTimeout = "http.header_timeout"
	KeyLogLevel          = "log.level"
	KeyLogJSON           = "log.json"
	KeyGinMode           = "gin.mode"
)

// EnvKeyReplacer maps configuration keys to environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Default holds the factory value of every key.
var Default = map[string]any{
	KeyPort:              "8080",
	KeyUpstreamHost:      "dyapi.hbum.de",
	KeyUpstreamScheme:    "https",
	KeyRelayReferer:      "https://www.douyin.com/",
	KeyRelayUserAgent:    "Mozilla/5.0",
	KeyHTTPTimeout:       30 * time.Second,
	KeyHTTPHeaderTimeout: 30 * time.Second,
	KeyLogLevel:          "info",
	KeyLogJSON:           false,
	KeyGinMode:           "release",
}

// Config is the resolved, read-only process configuration.
type Config struct {
	Port string

	UpstreamHost   string
	UpstreamScheme string

	RelayReferer   string
	RelayUserAgent string

	// HTTPTimeout bounds a whole resolver fetch. The relay streams bodies of
	// unbounded size and only uses HeaderTimeout.
	HTTPTimeout   time.Duration
	HeaderTimeout time.Duration

	LogLevel string
	LogJSON  bool
	GinMode  string
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom reads the configuration through the given viper instance, which may
// already carry overrides set by the caller.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.SetEnvKeyReplacer(EnvKeyReplacer)
	v.AutomaticEnv()

	v.SetTypeByDefaultValue(true)
	for name, value := range Default {
		v.SetDefault(name, value)
	}

	cfg := &Config{
		Port:           v.GetString(KeyPort),
		UpstreamHost:   strings.TrimSpace(v.GetString(KeyUpstreamHost)),
		UpstreamScheme: strings.ToLower(strings.TrimSpace(v.GetString(KeyUpstreamScheme))),
		RelayReferer:   v.GetString(KeyRelayReferer),
		RelayUserAgent: v.GetString(KeyRelayUserAgent),
		HTTPTimeout:    v.GetDuration(KeyHTTPTimeout),
		HeaderTimeout:  v.GetDuration(KeyHTTPHeaderTimeout),
		LogLevel:       v.GetString(KeyLogLevel),
		LogJSON:        v.GetBool(KeyLogJSON),
		GinMode:        v.GetString(KeyGinMode),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.UpstreamHost == "" {
		return errors.New("upstream host must not be empty")
	}
	if c.UpstreamScheme != "http" && c.UpstreamScheme != "https" {
		return fmt.Errorf("unsupported upstream scheme %q", c.UpstreamScheme)
	}
	if c.Port == "" {
		return errors.New("port must not be empty")
	}
	if c.HTTPTimeout < 0 || c.HeaderTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

// UpstreamBaseURL is the root of the metadata service, e.g. https://dyapi.hbum.de/.
func (c *Config) UpstreamBaseURL() *url.URL {
	return &url.URL{Scheme: c.UpstreamScheme, Host: c.UpstreamHost, Path: "/"}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
