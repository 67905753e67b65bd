// Package config handles configuration loading and saving.
package config

import (
	"time"
)

const configFileName = "config.yaml"

// Config is the root configuration structure.
type Config struct {
	Bridge    BridgeConfig    `yaml:"bridge"`
	Channels  *ChannelsConfig `yaml:"channels,omitempty"`
	Team      TeamConfig      `yaml:"team"`
	Providers ProvidersConfig `yaml:"providers"`
	Tools     ToolsConfig     `yaml:"tools,omitempty"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// BridgeConfig tunes the routing core. Durations are Go duration strings.
type BridgeConfig struct {
	InputTimeout   string `yaml:"input_timeout,omitempty"`   // defaults to 300s
	PollInterval   string `yaml:"poll_interval,omitempty"`   // defaults to 1s
	OutboundBuffer int    `yaml:"outbound_buffer,omitempty"` // per-client envelope buffer
	HumanName      string `yaml:"human_name,omitempty"`      // participant whose events are not echoed
}

// ChannelsConfig contains transport configuration.
type ChannelsConfig struct {
	Web      *WebChannelConfig      `yaml:"web,omitempty"`
	Telegram *TelegramChannelConfig `yaml:"telegram,omitempty"`
	CLI      *CLIChannelConfig      `yaml:"cli,omitempty"`
}

// WebChannelConfig configures the websocket server.
type WebChannelConfig struct {
	Addr         string `yaml:"addr,omitempty"`
	PingInterval string `yaml:"ping_interval,omitempty"`
}

// TelegramChannelConfig configures the Telegram bot.
type TelegramChannelConfig struct {
	Token      string  `yaml:"token,omitempty"`
	AllowedIDs []int64 `yaml:"allowed_ids"`
}

// CLIChannelConfig configures the local console channel.
type CLIChannelConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TeamConfig configures the group chat engine.
type TeamConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	MaxTurns    int     `yaml:"max_turns,omitempty"`
	Termination string  `yaml:"termination,omitempty"`
	AgentsDir   string  `yaml:"agents_dir,omitempty"` // defaults to <config dir>/agents
}

// ProvidersConfig contains provider API configurations.
type ProvidersConfig struct {
	OpenAI     *ProviderConfig `yaml:"openai,omitempty"`
	OpenRouter *ProviderConfig `yaml:"openrouter,omitempty"`
	Anthropic  *ProviderConfig `yaml:"anthropic,omitempty"`
}

// ProviderConfig contains API credentials for a provider.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	APIBase string `yaml:"api_base,omitempty"` // optional custom base URL
}

// ToolsConfig contains tool-related configuration.
type ToolsConfig struct {
	Web WebToolsConfig `yaml:"web,omitempty"`
}

// WebToolsConfig contains web tool configuration.
type WebToolsConfig struct {
	MaxResults int `yaml:"max_results,omitempty"`
}

// LoggingConfig mirrors logger.Config.
type LoggingConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Level   string `yaml:"level,omitempty"`
	Format  string `yaml:"format,omitempty"` // text, json, pretty
	Stdout  bool   `yaml:"stdout"`
	File    string `yaml:"file,omitempty"`
}

// InputTimeout returns the parsed human-input timeout.
func (c *Config) InputTimeout() time.Duration {
	return parseDuration(c.Bridge.InputTimeout)
}

// PollInterval returns the parsed task poll interval.
func (c *Config) PollInterval() time.Duration {
	return parseDuration(c.Bridge.PollInterval)
}

// PingInterval returns the parsed websocket keepalive interval.
func (c *Config) PingInterval() time.Duration {
	if c.Channels == nil || c.Channels.Web == nil {
		return 0
	}
	return parseDuration(c.Channels.Web.PingInterval)
}

// parseDuration returns 0 for empty or invalid input; Validate reports the latter.
func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
