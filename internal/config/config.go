// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-viewer/internal/fetch"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. RESUME_SOURCE.
const EnvPrefix = "RESUME"

// Config represents the viewer configuration. Every field may come from a
// JSON or YAML file, a RESUME_* environment variable, or a CLI flag.
type Config struct {
	// Source
	Source    string        `mapstructure:"source" json:"source,omitempty"`       // Path or http(s) URL of the résumé XML
	UserAgent string        `mapstructure:"user_agent" json:"user_agent,omitempty"` // User-Agent for remote sources
	Timeout   time.Duration `mapstructure:"fetch_timeout" json:"fetch_timeout,omitempty" validate:"gte=0"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl" json:"cache_ttl,omitempty" validate:"gte=0"`

	// Extraction
	MoreHistoryMode string `mapstructure:"more_history_mode" json:"more_history_mode,omitempty" validate:"omitempty,oneof=full header-only"`

	// View
	Expand    []string `mapstructure:"expand" json:"expand,omitempty"`
	ExpandAll bool     `mapstructure:"expand_all" json:"expand_all,omitempty"`

	// Server
	Port  int  `mapstructure:"port" json:"port,omitempty" validate:"gte=0,lte=65535"`
	Watch bool `mapstructure:"watch" json:"watch,omitempty"`

	// PDF
	ChromePath string `mapstructure:"chrome_path" json:"chrome_path,omitempty"`

	Verbose bool `mapstructure:"verbose" json:"verbose,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		UserAgent:       fetch.DefaultUserAgent,
		Timeout:         fetch.DefaultTimeout,
		CacheTTL:        fetch.DefaultCacheTTL,
		MoreHistoryMode: "full",
		Port:            8080,
	}
}

var keys = []string{
	"source", "user_agent", "fetch_timeout", "cache_ttl", "more_history_mode",
	"expand", "expand_all", "port", "watch", "chrome_path", "verbose",
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables (RESUME_*)
// 2. Config file at path, when path is not empty
// 3. Default values
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &Error{Message: "failed to read config file " + path, Cause: err}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &Error{Message: "failed to unmarshal config", Cause: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("source", d.Source)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("fetch_timeout", d.Timeout)
	v.SetDefault("cache_ttl", d.CacheTTL)
	v.SetDefault("more_history_mode", d.MoreHistoryMode)
	v.SetDefault("expand", []string{})
	v.SetDefault("expand_all", d.ExpandAll)
	v.SetDefault("port", d.Port)
	v.SetDefault("watch", d.Watch)
	v.SetDefault("chrome_path", d.ChromePath)
	v.SetDefault("verbose", d.Verbose)
}

// Validate checks that the configuration has valid values.
// It doesn't require a source since commands may take it from arguments.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fe := validationErrors[0]
			return &Error{Field: fe.Field(), Message: "failed '" + fe.Tag() + "' check", Cause: err}
		}
		return &Error{Message: "invalid configuration", Cause: err}
	}

	if c.Source != "" && !fetch.IsRemote(c.Source) {
		if _, err := os.Stat(c.Source); os.IsNotExist(err) {
			return &Error{Field: "source", Message: "file not found: " + c.Source}
		}
	}

	if c.Watch && fetch.IsRemote(c.Source) {
		return &Error{Field: "watch", Message: "only local sources can be watched"}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Source == "" {
		result.Source = defaults.Source
	}
	if result.UserAgent == "" {
		result.UserAgent = defaults.UserAgent
	}
	if result.MoreHistoryMode == "" {
		result.MoreHistoryMode = defaults.MoreHistoryMode
	}
	if result.ChromePath == "" {
		result.ChromePath = defaults.ChromePath
	}
	if len(result.Expand) == 0 {
		result.Expand = defaults.Expand
	}

	if result.Timeout == 0 {
		result.Timeout = defaults.Timeout
	}
	if result.CacheTTL == 0 {
		result.CacheTTL = defaults.CacheTTL
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// FetchOptions converts the source settings into loader options.
func (c *Config) FetchOptions() *fetch.Options {
	opts := fetch.DefaultOptions()
	if c.Timeout > 0 {
		opts.Timeout = c.Timeout
	}
	if c.UserAgent != "" {
		opts.UserAgent = c.UserAgent
	}
	return opts
}

// CachedLoaderConfig builds the cached loader settings.
func (c *Config) CachedLoaderConfig() *fetch.CachedLoaderConfig {
	cfg := fetch.DefaultCachedLoaderConfig()
	cfg.Options = c.FetchOptions()
	if c.CacheTTL > 0 {
		cfg.CacheTTL = c.CacheTTL
	}
	return cfg
}
