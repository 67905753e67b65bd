package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iamsorenl/Autogen-Chat-Demo/agent"
	"github.com/iamsorenl/Autogen-Chat-Demo/config"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the team's participant templates",
	Long: `List the assistant participants that 'chatbridge serve' will load, with
their provider, model and tools. Templates in the agents directory override
the built-in ones of the same name.`,
	RunE: runAgents,
}

func init() {
	rootCmd.AddCommand(agentsCmd)
}

func runAgents(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	agentsDir, err := cfg.AgentsPath()
	if err != nil {
		return err
	}
	fmt.Println("Agents dir:", agentsDir)
	fmt.Println()
	printAgents(os.Stdout, agent.NewRegistry(agentsDir).List(), cfg)
	return nil
}

func printAgents(w io.Writer, defs []*agent.Def, cfg *config.Config) {
	for _, def := range defs {
		prov := def.Provider
		if prov == "" {
			prov = cfg.GetProvider()
		}
		model := def.Model
		if model == "" {
			model = cfg.GetModel()
		}
		source := "built-in"
		if def.Path != "" {
			source = def.Path
		}
		tools := "none"
		if len(def.Tools) > 0 {
			tools = strings.Join(def.Tools, ", ")
		}

		fmt.Fprintf(w, "%s\n", def.Name)
		if def.Description != "" {
			fmt.Fprintf(w, "  %s\n", def.Description)
		}
		fmt.Fprintf(w, "  Model: %s/%s\n", prov, model)
		fmt.Fprintf(w, "  Tools: %s\n", tools)
		fmt.Fprintf(w, "  Source: %s\n\n", source)
	}
}
