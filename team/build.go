package team

import (
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/iamsorenl/Autogen-Chat-Demo/agent"
	"github.com/iamsorenl/Autogen-Chat-Demo/config"
	"github.com/iamsorenl/Autogen-Chat-Demo/engine"
	"github.com/iamsorenl/Autogen-Chat-Demo/internal/runtimecfg"
	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
	"github.com/iamsorenl/Autogen-Chat-Demo/provider"
	"github.com/iamsorenl/Autogen-Chat-Demo/tools"
)

// ProviderSource creates providers by name and model.
type ProviderSource interface {
	Create(providerName, model string) (provider.Provider, error)
}

// Deps are the collaborators Build wires into a team.
type Deps struct {
	Config    *config.Config
	Providers ProviderSource
	Agents    *agent.Registry
	Tools     *tools.Registry
	Input     engine.InputFunc
	Clock     clockwork.Clock
}

// Build assembles the configured team: the human proxy first, then one
// assistant per participant definition, coordinated by a model selector.
func Build(d Deps) (*Team, error) {
	if d.Config == nil || d.Providers == nil || d.Agents == nil || d.Input == nil {
		return nil, fmt.Errorf("team: incomplete dependencies")
	}
	toolReg := d.Tools
	if toolReg == nil {
		toolReg = tools.NewRegistry()
	}

	participants := []Participant{NewUserProxy(d.Config.Bridge.HumanName, d.Input)}
	for _, def := range d.Agents.List() {
		p, err := d.Providers.Create(def.Provider, def.Model)
		if err != nil {
			return nil, fmt.Errorf("participant %s: %w", def.Name, err)
		}
		runner := agent.NewRunner(p, toolReg.Subset(def.Tools), runtimecfg.ToolMaxIterations)
		participants = append(participants, NewAssistant(def, runner, d.Clock))
	}

	selectorProvider, err := d.Providers.Create("", "")
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	t, err := New(Options{
		Participants: participants,
		Selector:     NewModelSelector(selectorProvider, d.Config.Team.Termination),
		MaxTurns:     d.Config.Team.MaxTurns,
		Termination:  d.Config.Team.Termination,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("team ready", "participants", t.Participants(), "maxTurns", t.maxTurns)
	return t, nil
}
