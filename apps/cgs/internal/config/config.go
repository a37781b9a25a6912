// Package config resolves cgs settings. Precedence, lowest first: built-in
// defaults, the YAML config file, CGS_* environment variables, command-line
// flags. Flags are applied by the cli package on top of Load's result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"
	"gopkg.in/yaml.v3"

	"github.com/tilsley/cgs/apps/cgs/internal/clone"
	"github.com/tilsley/cgs/apps/cgs/internal/platform/github"
)

// Environment variable names.
const (
	EnvConfig      = "CGS_CONFIG"
	EnvAPIURL      = "CGS_API_URL"
	EnvUserAgent   = "CGS_USER_AGENT"
	EnvMaxDepth    = "CGS_MAX_DEPTH"
	EnvHTTPTimeout = "CGS_HTTP_TIMEOUT"
	EnvOTelEnabled = "OTEL_ENABLED"
)

// Config is the resolved runtime configuration.
type Config struct {
	// APIURL overrides the contents API base derived from the browsing URL.
	APIURL    string `yaml:"apiURL"`
	UserAgent string `yaml:"userAgent"`
	// MaxDepth bounds recursion below the starting directory. 0 disables the limit.
	MaxDepth int `yaml:"maxDepth"`
	// HTTPTimeout bounds each request. 0 means no timeout.
	HTTPTimeout    time.Duration `yaml:"httpTimeout"`
	CurrentDirOnly bool          `yaml:"currentDirOnly"`
	OTelEnabled    bool          `yaml:"otelEnabled"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		UserAgent: github.DefaultUserAgent,
		MaxDepth:  clone.DefaultMaxDepth,
	}
}

// Mode maps CurrentDirOnly onto the resolver mode.
func (c Config) Mode() clone.Mode {
	if c.CurrentDirOnly {
		return clone.CurrentDirOnly
	}
	return clone.FullPath
}

// Load builds a Config from defaults, the file at path (skipped when empty)
// and the environment as seen through getenv. A nil getenv means os.Getenv.
func Load(fs vfs.FileSystem, path string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(fs, path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(fs vfs.FileSystem, path string) error {
	data, err := vfs.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	envOr := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	c.APIURL = envOr(EnvAPIURL, c.APIURL)
	c.UserAgent = envOr(EnvUserAgent, c.UserAgent)

	if v := getenv(EnvMaxDepth); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxDepth, err)
		}
		c.MaxDepth = n
	}
	if v := getenv(EnvHTTPTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHTTPTimeout, err)
		}
		c.HTTPTimeout = d
	}
	if v := getenv(EnvOTelEnabled); v != "" {
		c.OTelEnabled = v == "true"
	}
	return nil
}

// Validate rejects settings no run could use.
func (c Config) Validate() error {
	var errs []error
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("maxDepth must not be negative, got %d", c.MaxDepth))
	}
	if c.HTTPTimeout < 0 {
		errs = append(errs, fmt.Errorf("httpTimeout must not be negative, got %s", c.HTTPTimeout))
	}
	return errors.Join(errs...)
}
