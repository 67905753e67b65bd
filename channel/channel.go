// Package channel connects client transports to the bridge: a websocket
// server, a Telegram bot and the local console.
package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/iamsorenl/Autogen-Chat-Demo/bridge"
	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
)

// Channel is the interface for client transports.
type Channel interface {
	// Name returns the channel name (e.g., "web", "telegram", "cli").
	Name() string

	// Start begins accepting clients. It must not block.
	Start(ctx context.Context) error

	// Stop disconnects every client and releases the transport.
	Stop() error
}

// Hub is the part of the bridge a transport talks to: inbound text is routed
// and live connections are registered for outbound envelopes.
type Hub interface {
	Route(text string) bridge.Destination
	Registry() *bridge.Registry
}

// Manager manages multiple channels as a pure registry.
type Manager struct {
	channels map[string]Channel
}

// NewManager creates a new channel manager.
func NewManager() *Manager {
	return &Manager{
		channels: make(map[string]Channel),
	}
}

// Register adds a channel to the manager and logs it. Nil is silently ignored.
func (m *Manager) Register(ch Channel) {
	if ch == nil {
		return
	}
	m.channels[ch.Name()] = ch
	logger.Info("channel registered", "channel", ch.Name())
}

// Get returns a channel by name.
func (m *Manager) Get(name string) (Channel, bool) {
	ch, ok := m.channels[name]
	return ch, ok
}

// Names returns the registered channel names, sorted.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.channels))
	for name := range m.channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// startOrder puts the console last so its prompt follows the startup logs.
var startOrder = []string{"web", "telegram"}

// StartAll starts all registered channels. On failure the channels already
// started are stopped again.
func (m *Manager) StartAll(ctx context.Context) error {
	ordered := make([]Channel, 0, len(m.channels))
	seen := make(map[string]bool, len(m.channels))
	for _, name := range startOrder {
		if ch, ok := m.channels[name]; ok {
			ordered = append(ordered, ch)
			seen[name] = true
		}
	}
	for _, name := range m.Names() {
		if !seen[name] && name != "cli" {
			ordered = append(ordered, m.channels[name])
		}
	}
	if ch, ok := m.channels["cli"]; ok {
		ordered = append(ordered, ch)
	}

	for i, ch := range ordered {
		if err := ch.Start(ctx); err != nil {
			for _, started := range ordered[:i] {
				_ = started.Stop()
			}
			return fmt.Errorf("start %s channel: %w", ch.Name(), err)
		}
	}
	return nil
}

// StopAll stops all registered channels and returns the first error.
func (m *Manager) StopAll() error {
	var first error
	for _, name := range m.Names() {
		if err := m.channels[name].Stop(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Each iterates over all registered channels.
func (m *Manager) Each(fn func(Channel)) {
	for _, ch := range m.channels {
		fn(ch)
	}
}

// decodeEnvelope parses an outbound payload produced by the bridge registry.
func decodeEnvelope(payload []byte) (bridge.Envelope, error) {
	var env bridge.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return bridge.Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// RenderEnvelope formats an envelope as a single "[sender] text" block.
func RenderEnvelope(env bridge.Envelope) string {
	sender := strings.TrimSpace(env.Sender)
	if sender == "" {
		sender = bridge.DefaultSender
	}
	return fmt.Sprintf("[%s] %s", sender, env.Text)
}

// SplitMessage splits a long message into chunks (byte-based maxLen),
// preferring newline boundaries and avoiding mid-rune splits.
func SplitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		// Try to split at newline within the byte window.
		splitAt := maxLen
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > maxLen/2 {
			splitAt = idx + 1
		}

		// Avoid splitting in the middle of a multi-byte UTF-8 character.
		for splitAt > 0 && !utf8.RuneStart(text[splitAt]) {
			splitAt--
		}
		if splitAt == 0 {
			_, size := utf8.DecodeRuneInString(text)
			splitAt = size
		}

		chunks = append(chunks, text[:splitAt])
		text = text[splitAt:]
	}

	return chunks
}
