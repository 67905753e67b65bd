package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iamsorenl/Autogen-Chat-Demo/agent"
	"github.com/iamsorenl/Autogen-Chat-Demo/config"
	"github.com/iamsorenl/Autogen-Chat-Demo/provider"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the config file and participant templates",
	Long: `Write config.yaml and the default participant templates into the config
directory. Existing files are kept unless --force is given.

Without --api-key the config references the provider's environment variable
(for example ${OPENAI_API_KEY}), which may also be set in a .env file.

Examples:
  chatbridge init
  chatbridge init --provider anthropic --api-key sk-ant-xxx
  chatbridge init --telegram-token 123:ABC --force`,
	RunE: runInit,
}

var (
	initProvider      string
	initModel         string
	initAPIKey        string
	initTelegramToken string
	initForce         bool
)

func init() {
	initCmd.Flags().StringVar(&initProvider, "provider", "openai", fmt.Sprintf("LLM provider (%s)", strings.Join(provider.SupportedProviders(), ", ")))
	initCmd.Flags().StringVar(&initModel, "model", "", "Model (defaults to the provider's default model)")
	initCmd.Flags().StringVar(&initAPIKey, "api-key", "", "Provider API key (optional)")
	initCmd.Flags().StringVar(&initTelegramToken, "telegram-token", "", "Telegram bot token (optional)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing config and templates")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	name := strings.ToLower(strings.TrimSpace(initProvider))
	if provider.DefaultModelFor(name) == "" {
		return fmt.Errorf("unknown provider %q (use %s)", initProvider, strings.Join(provider.SupportedProviders(), ", "))
	}

	cfg := config.DefaultConfig()
	cfg.Team.Provider = name
	cfg.Team.Model = provider.DefaultModelFor(name)
	if m := strings.TrimSpace(initModel); m != "" {
		cfg.Team.Model = m
	}
	setProviderKey(cfg, name, strings.TrimSpace(initAPIKey))
	if token := strings.TrimSpace(initTelegramToken); token != "" {
		cfg.Channels.Telegram.Token = token
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(configPath); err == nil && !initForce {
		fmt.Println("Config already exists, skipping:", configPath)
	} else {
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Println("Config created:", configPath)
	}

	agentsDir, err := cfg.AgentsPath()
	if err != nil {
		return err
	}
	written, err := agent.WriteBuiltins(agentsDir, initForce)
	if err != nil {
		return fmt.Errorf("failed to write participant templates: %w", err)
	}
	for _, path := range written {
		fmt.Println("Template created:", path)
	}

	fmt.Println("Participants:", agentsDir)
	fmt.Println("Run 'chatbridge serve' to start.")
	return nil
}

// setProviderKey stores key for the named provider, or an environment
// reference when key is empty.
func setProviderKey(cfg *config.Config, name, key string) {
	if key == "" {
		key = "${" + strings.ToUpper(name) + "_API_KEY}"
	}
	pc := &config.ProviderConfig{APIKey: key}
	switch name {
	case "openai":
		cfg.Providers.OpenAI = pc
	case "openrouter":
		cfg.Providers.OpenRouter = pc
	case "anthropic":
		cfg.Providers.Anthropic = pc
	}
}
