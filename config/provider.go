package config

import (
	"errors"
	"os"
	"strings"
)

// GetProvider returns the configured team provider.
func (c *Config) GetProvider() string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Team.Provider)
}

// GetModel returns the configured team model.
func (c *Config) GetModel() string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Team.Model)
}

// GetAPIKey returns the API key for the named provider. The provider's
// environment variable wins over the config file.
func (c *Config) GetAPIKey(provider string) (string, error) {
	providerCfg, envKey, _, err := c.providerConfigEnv(provider)
	if err != nil {
		return "", err
	}
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v, nil
	}
	if providerCfg == nil || strings.TrimSpace(providerCfg.APIKey) == "" {
		return "", errors.New(provider + " API key not configured")
	}
	return strings.TrimSpace(providerCfg.APIKey), nil
}

// GetAPIBase returns the API base URL for the named provider (env overrides config).
func (c *Config) GetAPIBase(provider string) string {
	providerCfg, _, envBase, err := c.providerConfigEnv(provider)
	if err != nil {
		return ""
	}
	if v := strings.TrimSpace(os.Getenv(envBase)); v != "" {
		return v
	}
	if providerCfg != nil {
		return strings.TrimSpace(providerCfg.APIBase)
	}
	return ""
}

func (c *Config) providerConfigEnv(provider string) (*ProviderConfig, string, string, error) {
	switch provider {
	case "openai":
		return c.Providers.OpenAI, "OPENAI_API_KEY", "OPENAI_API_BASE", nil
	case "openrouter":
		return c.Providers.OpenRouter, "OPENROUTER_API_KEY", "OPENROUTER_API_BASE", nil
	case "anthropic":
		return c.Providers.Anthropic, "ANTHROPIC_API_KEY", "ANTHROPIC_API_BASE", nil
	default:
		return nil, "", "", errors.New("unknown provider: " + provider)
	}
}
