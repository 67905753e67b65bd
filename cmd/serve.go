package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iamsorenl/Autogen-Chat-Demo/bridge"
	"github.com/iamsorenl/Autogen-Chat-Demo/channel"
	"github.com/iamsorenl/Autogen-Chat-Demo/config"
	"github.com/iamsorenl/Autogen-Chat-Demo/cron"
	"github.com/iamsorenl/Autogen-Chat-Demo/internal/health"
	"github.com/iamsorenl/Autogen-Chat-Demo/internal/runtimecfg"
	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bridge with its client channels",
	Long: `Start chatbridge as a long-running service. Clients submit tasks, the
agent team works on them one at a time, and every agent message is broadcast
to all connected clients. While the team waits for the human, the next client
message answers it instead of starting a new task.

Supported channels:
  - web: websocket endpoint at ws://<addr>/ws (default)
  - telegram: Telegram bot (requires channels.telegram.token)
  - cli: interactive console

Examples:
  chatbridge serve                 # web, plus telegram/cli when configured
  chatbridge serve --web --cli     # websocket server and console
  chatbridge serve --telegram      # Telegram bot only`,
	RunE: runServe,
}

var (
	serveWeb      bool
	serveTelegram bool
	serveCLI      bool
)

func init() {
	serveCmd.Flags().BoolVar(&serveWeb, "web", false, "Enable websocket channel")
	serveCmd.Flags().BoolVar(&serveTelegram, "telegram", false, "Enable Telegram bot channel")
	serveCmd.Flags().BoolVar(&serveCLI, "cli", false, "Enable console channel")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	targets, err := resolveServeTargets(cmd, cfg)
	if err != nil {
		return err
	}

	clock := clockwork.NewRealClock()
	b := bridge.New(bridge.Options{
		InputTimeout:   cfg.InputTimeout(),
		PollInterval:   cfg.PollInterval(),
		OutboundBuffer: cfg.Bridge.OutboundBuffer,
		HumanName:      cfg.Bridge.HumanName,
		Clock:          clock,
	})
	defer b.Close()

	eng, err := buildTeam(cfg, b.RequestInput, clock)
	if err != nil {
		return err
	}

	scheduler, err := cron.NewScheduler(nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	healthOpts := health.Options{Jobs: scheduler.Jobs}
	chManager := channel.NewManager()
	if targets.web {
		chManager.Register(channel.NewWebChannel(b, channel.WebConfig{
			Addr:         cfg.Channels.Web.Addr,
			PingInterval: cfg.PingInterval(),
			Status:       health.Handler(b, healthOpts),
			Scheduler:    scheduler,
		}))
	}
	if targets.telegram {
		chManager.Register(channel.NewTelegramChannel(b, channel.TelegramConfig{
			Token:      cfg.Channels.Telegram.Token,
			AllowedIDs: cfg.Channels.Telegram.AllowedIDs,
		}))
	}
	if targets.cli {
		chManager.Register(channel.NewCLIChannel(b, channel.CLIConfig{OnExit: stop}))
	}

	if err := cron.ScheduleHeartbeat(scheduler, runtimecfg.StatusHeartbeatDefaultInterval, func() []any {
		return health.Collect(b, healthOpts).LogFields()
	}); err != nil {
		return err
	}

	if err := chManager.StartAll(ctx); err != nil {
		scheduler.Stop()
		return fmt.Errorf("failed to start channels: %w", err)
	}
	scheduler.Start()
	logger.Info("chatbridge is running. Press Ctrl+C to stop.",
		"channels", chManager.Names(),
		"participants", eng.Participants(),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b.Run(gctx, eng)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		scheduler.Stop()
		return chManager.StopAll()
	})

	if err := g.Wait(); err != nil {
		logger.Error("error stopping channels", "err", err)
	}
	logger.Info("chatbridge service stopped")
	return nil
}

type serveTargets struct {
	web      bool
	telegram bool
	cli      bool
}

// resolveServeTargets applies explicit channel flags, or picks the configured
// channels when none are given.
func resolveServeTargets(cmd *cobra.Command, cfg *config.Config) (serveTargets, error) {
	if cmd == nil {
		return serveTargets{}, fmt.Errorf("serve command is nil")
	}
	flags := cmd.Flags()
	telegramToken := ""
	cliEnabled := false
	if cfg.Channels != nil {
		if cfg.Channels.Telegram != nil {
			telegramToken = strings.TrimSpace(cfg.Channels.Telegram.Token)
		}
		if cfg.Channels.CLI != nil {
			cliEnabled = cfg.Channels.CLI.Enabled
		}
	}

	if !flags.Changed("web") && !flags.Changed("telegram") && !flags.Changed("cli") {
		return serveTargets{web: true, telegram: telegramToken != "", cli: cliEnabled}, nil
	}

	t := serveTargets{web: serveWeb, telegram: serveTelegram, cli: serveCLI}
	if !t.web && !t.telegram && !t.cli {
		return serveTargets{}, fmt.Errorf("no channels enabled; use --web, --telegram or --cli")
	}
	if t.telegram && telegramToken == "" {
		return serveTargets{}, fmt.Errorf("--telegram requires channels.telegram.token in the config")
	}
	return t, nil
}
