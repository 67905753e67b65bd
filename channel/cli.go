package channel

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/iamsorenl/Autogen-Chat-Demo/bridge"
	"github.com/iamsorenl/Autogen-Chat-Demo/internal/runtimecfg"
	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
)

// CLIConnID is the registry ID of the console connection.
const CLIConnID = "cli:console"

// CLIConfig holds CLI channel configuration.
type CLIConfig struct {
	Prompt string    // Input prompt (default: "> ")
	In     io.Reader // default: os.Stdin
	Out    io.Writer // default: os.Stdout
	OnExit func()    // called when the user types exit or input ends
}

// CLIChannel reads lines from the console and prints every envelope.
type CLIChannel struct {
	prompt string
	in     io.Reader
	out    io.Writer
	onExit func()
	hub    Hub
	done   chan struct{}
	wg     sync.WaitGroup
	conn   *consoleConn
}

// consoleConn adapts the console to bridge.Conn.
type consoleConn struct {
	mu     sync.Mutex
	out    io.Writer
	sender *color.Color
	system *color.Color
}

// NewCLIChannel creates a new CLI channel.
func NewCLIChannel(hub Hub, cfg CLIConfig) *CLIChannel {
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = runtimecfg.CLIChannelPrompt
	}
	in := cfg.In
	if in == nil {
		in = os.Stdin
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	return &CLIChannel{
		prompt: prompt,
		in:     in,
		out:    out,
		onExit: cfg.OnExit,
		hub:    hub,
		done:   make(chan struct{}),
		conn: &consoleConn{
			out:    out,
			sender: color.New(color.FgCyan, color.Bold),
			system: color.New(color.FgYellow),
		},
	}
}

// Name returns the channel name.
func (c *CLIChannel) Name() string {
	return "cli"
}

// Start registers the console and begins reading input.
func (c *CLIChannel) Start(ctx context.Context) error {
	c.hub.Registry().Register(c.conn)
	logger.Info("cli channel started")

	c.wg.Add(1)
	go c.readInput(ctx)

	return nil
}

// Stop unregisters the console. A read blocked on the terminal is abandoned
// after a short wait.
func (c *CLIChannel) Stop() error {
	select {
	case <-c.done:
		return nil
	default:
		close(c.done)
	}
	c.hub.Registry().Unregister(CLIConnID)

	waited := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(runtimecfg.CLIChannelStopWaitTimeout):
	}
	logger.Info("cli channel stopped")
	return nil
}

// readInput reads lines from the console and routes them.
func (c *CLIChannel) readInput(ctx context.Context) {
	defer c.wg.Done()
	defer func() {
		if c.onExit != nil {
			c.onExit()
		}
	}()

	scanner := bufio.NewScanner(c.in)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		c.conn.write(c.prompt)
		if !scanner.Scan() {
			return
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" || text == "/exit" || text == "/quit" {
			c.conn.write("Goodbye!\n")
			return
		}

		c.hub.Route(text)
	}
}

func (c *consoleConn) ID() string { return CLIConnID }

// Send prints the envelope with a colored sender label.
func (c *consoleConn) Send(_ context.Context, payload []byte) error {
	env, err := decodeEnvelope(payload)
	if err != nil {
		return err
	}
	label := c.sender
	if env.Sender == "" || env.Sender == bridge.DefaultSender {
		label = c.system
	}
	c.write(fmt.Sprintf("\n%s %s\n", label.Sprintf("[%s]", env.Sender), env.Text))
	return nil
}

func (c *consoleConn) write(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.out, s)
}
