package config

import (
	"path/filepath"

	"github.com/iamsorenl/Autogen-Chat-Demo/internal/runtimecfg"
)

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Bridge: BridgeConfig{
			InputTimeout:   runtimecfg.BridgeDefaultInputTimeout.String(),
			PollInterval:   runtimecfg.BridgeDefaultPollInterval.String(),
			OutboundBuffer: runtimecfg.BridgeDefaultOutboundBuffer,
			HumanName:      runtimecfg.BridgeDefaultHumanName,
		},
		Channels: &ChannelsConfig{
			Web: &WebChannelConfig{
				Addr:         runtimecfg.WebChannelDefaultAddr,
				PingInterval: runtimecfg.WebChannelDefaultPingInterval.String(),
			},
			Telegram: &TelegramChannelConfig{
				Token:      "",
				AllowedIDs: []int64{},
			},
			CLI: &CLIChannelConfig{},
		},
		Team: TeamConfig{
			Provider:    runtimecfg.TeamDefaultProvider,
			Model:       runtimecfg.TeamDefaultModelType,
			MaxTokens:   runtimecfg.TeamDefaultMaxTokens,
			Temperature: runtimecfg.TeamDefaultTemperature,
			MaxTurns:    runtimecfg.TeamDefaultMaxTurns,
			Termination: runtimecfg.TeamDefaultTermination,
		},
		Providers: ProvidersConfig{
			OpenAI: &ProviderConfig{APIKey: "${OPENAI_API_KEY}"},
		},
		Tools: ToolsConfig{
			Web: WebToolsConfig{MaxResults: runtimecfg.ToolWebSearchDefaultMaxResults},
		},
		Logging: defaultLoggingConfig(),
	}
}

func defaultLoggingConfig() LoggingConfig {
	dir, err := ConfigDir()
	if err != nil {
		dir = ""
	}
	enabled := true
	return LoggingConfig{
		Enabled: &enabled,
		Level:   "info",
		Format:  "text",
		Stdout:  true,
		File:    filepath.Join(dir, "logs", "chatbridge.log"),
	}
}

func (c *Config) applyDefaults() {
	if c.Bridge.InputTimeout == "" {
		c.Bridge.InputTimeout = runtimecfg.BridgeDefaultInputTimeout.String()
	}
	if c.Bridge.PollInterval == "" {
		c.Bridge.PollInterval = runtimecfg.BridgeDefaultPollInterval.String()
	}
	if c.Bridge.OutboundBuffer <= 0 {
		c.Bridge.OutboundBuffer = runtimecfg.BridgeDefaultOutboundBuffer
	}
	if c.Bridge.HumanName == "" {
		c.Bridge.HumanName = runtimecfg.BridgeDefaultHumanName
	}

	if c.Channels == nil {
		c.Channels = &ChannelsConfig{}
	}
	if c.Channels.Web == nil {
		c.Channels.Web = &WebChannelConfig{}
	}
	if c.Channels.Web.Addr == "" {
		c.Channels.Web.Addr = runtimecfg.WebChannelDefaultAddr
	}
	if c.Channels.Web.PingInterval == "" {
		c.Channels.Web.PingInterval = runtimecfg.WebChannelDefaultPingInterval.String()
	}
	if c.Channels.Telegram == nil {
		c.Channels.Telegram = &TelegramChannelConfig{}
	}
	if c.Channels.Telegram.AllowedIDs == nil {
		c.Channels.Telegram.AllowedIDs = []int64{}
	}
	if c.Channels.CLI == nil {
		c.Channels.CLI = &CLIChannelConfig{}
	}

	if c.Team.Provider == "" {
		c.Team.Provider = runtimecfg.TeamDefaultProvider
	}
	if c.Team.Model == "" {
		c.Team.Model = runtimecfg.TeamDefaultModelType
	}
	if c.Team.MaxTokens <= 0 {
		c.Team.MaxTokens = runtimecfg.TeamDefaultMaxTokens
	}
	if c.Team.Temperature == 0 {
		c.Team.Temperature = runtimecfg.TeamDefaultTemperature
	}
	if c.Team.MaxTurns <= 0 {
		c.Team.MaxTurns = runtimecfg.TeamDefaultMaxTurns
	}
	if c.Team.Termination == "" {
		c.Team.Termination = runtimecfg.TeamDefaultTermination
	}

	if c.Tools.Web.MaxResults <= 0 {
		c.Tools.Web.MaxResults = runtimecfg.ToolWebSearchDefaultMaxResults
	}

	def := defaultLoggingConfig()
	if c.Logging == (LoggingConfig{}) {
		c.Logging = def
		return
	}
	if c.Logging.Enabled == nil {
		c.Logging.Enabled = def.Enabled
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = def.Format
	}
	if !c.Logging.Stdout && c.Logging.File == "" {
		c.Logging.Stdout = def.Stdout
	}
}
