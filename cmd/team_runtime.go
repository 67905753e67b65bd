package cmd

import (
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/iamsorenl/Autogen-Chat-Demo/agent"
	"github.com/iamsorenl/Autogen-Chat-Demo/config"
	"github.com/iamsorenl/Autogen-Chat-Demo/engine"
	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
	"github.com/iamsorenl/Autogen-Chat-Demo/provider"
	"github.com/iamsorenl/Autogen-Chat-Demo/team"
	"github.com/iamsorenl/Autogen-Chat-Demo/tools"
)

// buildTeam wires providers, participant templates and tools into the group
// chat engine. input answers the human participant's turns.
func buildTeam(cfg *config.Config, input engine.InputFunc, clock clockwork.Clock) (*team.Team, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	providerFactory, err := provider.NewFactory(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider factory: %w", err)
	}

	agentsDir, err := cfg.AgentsPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve agents dir: %w", err)
	}
	agentRegistry := agent.NewRegistry(agentsDir)
	if len(agentRegistry.List()) == 0 {
		return nil, fmt.Errorf("no participant templates found")
	}

	toolRegistry := tools.NewRegistry()
	toolRegistry.RegisterDefaultTools(tools.DefaultToolsConfig{
		WebSearchMaxResults: cfg.Tools.Web.MaxResults,
	})

	t, err := team.Build(team.Deps{
		Config:    cfg,
		Providers: providerFactory,
		Agents:    agentRegistry,
		Tools:     toolRegistry,
		Input:     input,
		Clock:     clock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build team: %w", err)
	}

	logger.Debug("team runtime ready",
		"provider", providerFactory.DefaultProvider(),
		"model", providerFactory.DefaultModel(),
		"agentsDir", agentsDir,
		"tools", toolRegistry.Names(),
	)
	return t, nil
}
