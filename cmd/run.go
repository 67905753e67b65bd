package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/iamsorenl/Autogen-Chat-Demo/bridge"
	"github.com/iamsorenl/Autogen-Chat-Demo/channel"
	"github.com/iamsorenl/Autogen-Chat-Demo/config"
	"github.com/iamsorenl/Autogen-Chat-Demo/engine"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single task through the team in the terminal",
	Long: `Run one task without starting any channel. Agent messages are printed as
they arrive; when the team asks the human, type the answer on stdin.

Examples:
  chatbridge run -m "Find a recent paper on protein folding and sketch it"`,
	RunE: runRun,
}

var runMessage string

func init() {
	runCmd.Flags().StringVarP(&runMessage, "message", "m", "", "Task to run (required)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	task := strings.TrimSpace(runMessage)
	if task == "" {
		return fmt.Errorf("task is required (-m flag)\nFor a long-running bridge, use: chatbridge serve")
	}

	cfg, err := config.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := buildTeam(cfg, stdinInput(os.Stdin, os.Stdout), clockwork.NewRealClock())
	if err != nil {
		return err
	}
	return printRun(ctx, eng, task, os.Stdout, cfg.Bridge.HumanName)
}

// printRun drains one engine run, printing each event except the human's own.
func printRun(ctx context.Context, eng engine.Engine, task string, out io.Writer, hidden string) error {
	for ev, err := range eng.Run(ctx, task) {
		if err != nil {
			return err
		}
		env := bridge.Normalize(ev)
		if env.Sender == hidden {
			continue
		}
		fmt.Fprintf(out, "%s\n\n", channel.RenderEnvelope(env))
	}
	return nil
}

// stdinInput answers the human participant from in. End of input ends the
// conversation with the termination sentinel.
func stdinInput(in io.Reader, out io.Writer) engine.InputFunc {
	scanner := bufio.NewScanner(in)
	return func(ctx context.Context, prompt string, token *engine.CancellationToken) (string, error) {
		if token != nil && token.Cancelled() {
			return "", engine.ErrInputCancelled
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprint(out, "Your reply> ")
		if !scanner.Scan() {
			return engine.Terminate, nil
		}
		return strings.TrimSpace(scanner.Text()), nil
	}
}
