// Package cmd provides CLI commands.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iamsorenl/Autogen-Chat-Demo/config"
	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
	"github.com/iamsorenl/Autogen-Chat-Demo/provider"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	logLevelOverride string
	configDirFlag    string
)

// rootCmd is the root command.
var rootCmd = &cobra.Command{
	Use:           "chatbridge",
	Short:         "chatbridge - bridge chat clients to a team of AI agents",
	Long:          buildRootLong(),
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func buildRootLong() string {
	var sb strings.Builder
	sb.WriteString("chatbridge connects websocket, Telegram and console clients to a\n")
	sb.WriteString("group chat of AI agents. Clients submit tasks, watch every agent\n")
	sb.WriteString("message as it is produced, and answer when the team asks the human.\n\n")
	sb.WriteString("Supported providers:\n")
	for _, name := range provider.SupportedProviders() {
		sb.WriteString(fmt.Sprintf("  - %s (default model %s)\n", name, provider.DefaultModelFor(name)))
	}
	sb.WriteString("\nGet started with: chatbridge init")
	return sb.String()
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&logLevelOverride, "log-level", "", "Override log level for this run (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "Config directory (default ~/.chatbridge, or $"+config.HomeEnv+")")
	rootCmd.PersistentPreRunE = applyRuntimeOverrides
}

func applyRuntimeOverrides(cmd *cobra.Command, args []string) error {
	config.SetConfigDir(configDirFlag)

	level := strings.ToLower(strings.TrimSpace(logLevelOverride))
	switch level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid --log-level: %q (use debug, info, warn, error)", logLevelOverride)
	}

	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	if level != "" {
		cfg.Logging.Level = level
	}
	return initLogger(cfg)
}

func initLogger(cfg *config.Config) error {
	configDir, _ := config.ConfigDir()
	logEnabled := true
	if cfg.Logging.Enabled != nil {
		logEnabled = *cfg.Logging.Enabled
	}

	logCfg := logger.Config{
		Enabled: logEnabled,
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Stdout:  cfg.Logging.Stdout,
		File:    cfg.Logging.File,
	}

	if err := logger.Init(logCfg, configDir); err != nil {
		return fmt.Errorf("logger init error: %w", err)
	}
	return nil
}
