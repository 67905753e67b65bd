package runtimecfg

import "time"

const (
	BridgeDefaultInputTimeout   = 300 * time.Second
	BridgeDefaultPollInterval   = 1 * time.Second
	BridgeDefaultOutboundBuffer = 256
	BridgeDefaultHumanName      = "UserProxy"
)

const (
	TeamDefaultProvider    = "openai"
	TeamDefaultModelType   = "gpt-4o"
	TeamDefaultMaxTokens   = 4096
	TeamDefaultTemperature = 0.7
	TeamDefaultMaxTurns    = 20
	TeamDefaultTermination = "TERMINATE"
	TeamAgentsDirName      = "agents"
)

const (
	CLIChannelPrompt               = "> "
	CLIChannelStopWaitTimeout      = 500 * time.Millisecond
	TelegramUpdateTimeoutSeconds   = 30
	TelegramMaxMessageLength       = 4096
	WebChannelDefaultAddr          = "localhost:8765"
	WebChannelShutdownTimeout      = 5 * time.Second
	WebChannelDefaultPingInterval  = 30 * time.Second
	WebChannelPingTimeout          = 10 * time.Second
	WebChannelReadLimitBytes       = 1 << 20
	StatusHeartbeatDefaultInterval = 5 * time.Minute
)

const (
	ToolWebSearchDefaultMaxResults = 5
	ToolWebSearchHTTPTimeout       = 15 * time.Second
	ToolWebFetchHTTPTimeout        = 30 * time.Second
	ToolWebFetchMaxReadBytes       = 500000
	ToolWebFetchMaxContentChars    = 100000
	ToolResultMaxChars             = 100000
	ToolMaxIterations              = 8
)

const (
	ProviderSDKMaxRetries      = 2
	AnthropicFallbackMaxTokens = 1024
)
