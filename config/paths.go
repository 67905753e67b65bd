package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/iamsorenl/Autogen-Chat-Demo/internal/runtimecfg"
)

// HomeEnv overrides the default config directory when set.
const HomeEnv = "CHATBRIDGE_HOME"

var configDirOverride string

// SetConfigDir overrides the config directory for the rest of the process.
// An empty dir restores the default.
func SetConfigDir(dir string) {
	configDirOverride = strings.TrimSpace(dir)
}

// ConfigDir returns the chatbridge config directory (~/.chatbridge).
func ConfigDir() (string, error) {
	dir := configDirOverride
	if dir == "" {
		dir = strings.TrimSpace(os.Getenv(HomeEnv))
	}
	if dir != "" {
		return resolveDir(dir)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".chatbridge"), nil
}

// ConfigPath returns the default YAML config path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// AgentsPath returns the participant template directory.
func (c *Config) AgentsPath() (string, error) {
	if dir := strings.TrimSpace(c.Team.AgentsDir); dir != "" {
		return resolveDir(dir)
	}
	base, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, runtimecfg.TeamAgentsDirName), nil
}

func resolveDir(dir string) (string, error) {
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if dir == "~" {
			return home, nil
		}
		return filepath.Join(home, dir[2:]), nil
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir), nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
