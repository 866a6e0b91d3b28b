// Package config loads the formwizard command configuration. A YAML file is
// decoded into a generic map and then into Config with mapstructure, so
// durations may be written as "30m" and unknown keys are rejected.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Session backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds settings shared by the serve and fill commands.
type Config struct {
	Schema string `mapstructure:"schema"`
	Addr   string `mapstructure:"addr"`
	Locale string `mapstructure:"locale"`
	// Catalog is an optional YAML translation file, see LoadCatalog.
	Catalog string        `mapstructure:"catalog"`
	Output  string        `mapstructure:"output"`
	Log     LogConfig     `mapstructure:"log"`
	Sess    SessionConfig `mapstructure:"session"`
	Theme   ThemeConfig   `mapstructure:"theme"`
}

// LogConfig selects the zerolog level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SessionConfig configures where wizard state is kept between requests.
type SessionConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Cookie  string        `mapstructure:"cookie"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RedisConfig addresses the redis session backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// ThemeConfig names a go-theme manifest file and the variant to apply.
type ThemeConfig struct {
	Manifest string `mapstructure:"manifest"`
	Variant  string `mapstructure:"variant"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:   ":8080",
		Output: "json",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Sess: SessionConfig{
			Backend: BackendMemory,
			TTL:     30 * time.Minute,
			Cookie:  "formwizard_session",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "formwizard:session:",
			},
		},
	}
}

// Load reads path over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Decode(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses YAML data over the defaults and validates the result.
func Decode(data []byte) (Config, error) {
	cfg := Default()

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	if len(raw) > 0 {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			ErrorUnused:      true,
			WeaklyTypedInput: true,
			Result:           &cfg,
		})
		if err != nil {
			return Config{}, err
		}
		if err := decoder.Decode(raw); err != nil {
			return Config{}, fmt.Errorf("decode: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the commands cannot act on.
func (c Config) Validate() error {
	var errs []error
	switch c.Sess.Backend {
	case BackendMemory, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("session.backend must be %q or %q, got %q", BackendMemory, BackendRedis, c.Sess.Backend))
	}
	if c.Sess.TTL < 0 {
		errs = append(errs, errors.New("session.ttl must not be negative"))
	}
	if strings.TrimSpace(c.Sess.Cookie) == "" {
		errs = append(errs, errors.New("session.cookie is required"))
	}
	if c.Sess.Backend == BackendRedis && strings.TrimSpace(c.Sess.Redis.Addr) == "" {
		errs = append(errs, errors.New("session.redis.addr is required for the redis backend"))
	}
	return errors.Join(errs...)
}
