package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Load when no config file exists yet.
var ErrNotFound = errors.New("config not found, run 'chatbridge init' first")

// saveMu serializes concurrent Config.Save() calls to prevent file corruption.
var saveMu sync.Mutex

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load loads the configuration from the config directory.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads path, expanding ${VAR} references after loading any .env
// files from the working directory and the config directory.
func LoadFrom(path string) (*Config, error) {
	loadDotEnv(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return parse(data)
}

// LoadOrDefault loads the config file, falling back to the defaults (with
// environment references expanded) when none exists yet.
func LoadOrDefault() (*Config, error) {
	cfg, err := Load()
	if !errors.Is(err, ErrNotFound) {
		return cfg, err
	}

	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	loadDotEnv(dir)
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("encoding default config: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// Save saves the configuration to config.yaml.
// Concurrent calls are serialized to prevent file corruption.
func (c *Config) Save() error {
	saveMu.Lock()
	defer saveMu.Unlock()

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Validate checks values that applyDefaults cannot repair.
func (c *Config) Validate() error {
	durations := map[string]string{
		"bridge.input_timeout": c.Bridge.InputTimeout,
		"bridge.poll_interval": c.Bridge.PollInterval,
	}
	if c.Channels != nil && c.Channels.Web != nil {
		durations["channels.web.ping_interval"] = c.Channels.Web.PingInterval
	}
	for field, raw := range durations {
		if raw == "" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%s is not a valid duration: %w", field, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", field)
		}
	}

	switch c.Team.Provider {
	case "openai", "openrouter", "anthropic":
	default:
		return fmt.Errorf("team.provider %q is not supported (use openai, openrouter, anthropic)", c.Team.Provider)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json", "pretty":
	default:
		return fmt.Errorf("logging.format %q is not supported (use text, json, pretty)", c.Logging.Format)
	}
	return nil
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(name)
	})
}

// loadDotEnv loads .env files without overriding variables already set.
func loadDotEnv(configDir string) {
	candidates := []string{".env"}
	if configDir != "" {
		candidates = append(candidates, filepath.Join(configDir, ".env"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_ = godotenv.Load(path)
	}
}
