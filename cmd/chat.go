package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iamsorenl/Autogen-Chat-Demo/bridge"
	"github.com/iamsorenl/Autogen-Chat-Demo/config"
	"github.com/iamsorenl/Autogen-Chat-Demo/engine"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Connect to a running bridge from the terminal",
	Long: `Open a websocket session with a running 'chatbridge serve'.
Each line you type is sent to the bridge: the first starts a task, and lines
typed while the team waits for the human answer it. Type 'exit' to leave.

Examples:
  chatbridge chat
  chatbridge chat --addr 192.168.1.10:8765`,
	RunE: runChat,
}

var chatAddr string

func init() {
	chatCmd.Flags().StringVar(&chatAddr, "addr", "", "Bridge address (default: channels.web.addr)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	url := webSocketURL(resolveBridgeAddr(chatAddr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("connect %s: %w", url, err)
	}
	defer conn.CloseNow()

	fmt.Fprintf(os.Stderr, "Connected to %s. Type a task, or 'exit' to quit.\n", url)
	return chatSession(ctx, conn, os.Stdin, os.Stdout, engine.UserProxyName)
}

// chatSession pumps lines from in to the bridge and prints envelopes to out
// until the connection closes, in ends or ctx is cancelled.
func chatSession(ctx context.Context, conn *websocket.Conn, in io.Reader, out io.Writer, hidden string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return printEnvelopes(gctx, conn, out, hidden)
	})
	go func() {
		sendLines(gctx, conn, in)
		_ = conn.Close(websocket.StatusNormalClosure, "bye")
	}()
	return g.Wait()
}

func sendLines(ctx context.Context, conn *websocket.Conn, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" || text == "/exit" || text == "/quit" {
			return
		}
		if err := wsjson.Write(ctx, conn, map[string]string{"text": text}); err != nil {
			return
		}
	}
}

func printEnvelopes(ctx context.Context, conn *websocket.Conn, out io.Writer, hidden string) error {
	senderColor := color.New(color.FgCyan, color.Bold)
	systemColor := color.New(color.FgYellow)
	for {
		var env bridge.Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			return fmt.Errorf("read from bridge: %w", err)
		}
		if env.Sender == hidden {
			continue
		}
		label := senderColor
		if env.Sender == bridge.DefaultSender {
			label = systemColor
		}
		fmt.Fprintf(out, "%s %s\n\n", label.Sprintf("[%s %.1fs]", env.Sender, env.Timestamp), env.Text)
	}
}

// resolveBridgeAddr returns addr, or the configured web address.
func resolveBridgeAddr(addr string) string {
	if addr = strings.TrimSpace(addr); addr != "" {
		return addr
	}
	cfg, err := config.LoadOrDefault()
	if err != nil || cfg.Channels == nil || cfg.Channels.Web == nil {
		return config.DefaultConfig().Channels.Web.Addr
	}
	return cfg.Channels.Web.Addr
}

func webSocketURL(addr string) string {
	switch {
	case strings.HasPrefix(addr, "ws://"), strings.HasPrefix(addr, "wss://"):
		return addr
	case strings.HasPrefix(addr, "http://"):
		return "ws://" + strings.TrimPrefix(addr, "http://") + "/ws"
	case strings.HasPrefix(addr, "https://"):
		return "wss://" + strings.TrimPrefix(addr, "https://") + "/ws"
	}
	return "ws://" + addr + "/ws"
}

func httpURL(addr, path string) string {
	switch {
	case strings.HasPrefix(addr, "http://"), strings.HasPrefix(addr, "https://"):
		return strings.TrimSuffix(addr, "/") + path
	case strings.HasPrefix(addr, "ws://"):
		return "http://" + strings.TrimSuffix(strings.TrimPrefix(addr, "ws://"), "/ws") + path
	case strings.HasPrefix(addr, "wss://"):
		return "https://" + strings.TrimSuffix(strings.TrimPrefix(addr, "wss://"), "/ws") + path
	}
	return "http://" + addr + path
}
