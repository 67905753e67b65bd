package bridge

import (
	"fmt"
	"unicode/utf8"

	"github.com/iamsorenl/Autogen-Chat-Demo/engine"
)

// DefaultSender labels events that carry no recognizable source.
const DefaultSender = "System"

// Envelope is the outbound wire record sent to every connected client.
type Envelope struct {
	Sender    string  `json:"sender"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
}

var senderKeys = []string{"source", "sender", "name", "agent"}
var textKeys = []string{"content", "text", "message"}

// Normalize extracts a sender and display text from an arbitrary engine event.
// The timestamp is left zero; the adapter stamps it at emission time.
func Normalize(ev engine.Event) Envelope {
	return Envelope{
		Sender: resolveSender(ev),
		Text:   resolveText(ev),
	}
}

// resolveSender checks the sender attributes in priority order.
func resolveSender(ev engine.Event) string {
	switch v := ev.(type) {
	case engine.Sourcer:
		return v.Source()
	case engine.Senderer:
		return v.Sender()
	case engine.Namer:
		return v.Name()
	case engine.Agenter:
		return v.Agent()
	case map[string]any:
		for _, k := range senderKeys {
			if val, ok := v[k]; ok {
				return fmt.Sprint(val)
			}
		}
	case map[string]string:
		for _, k := range senderKeys {
			if val, ok := v[k]; ok {
				return val
			}
		}
	}
	return DefaultSender
}

// resolveText checks the text attributes in priority order and falls back to
// the event's default string form.
func resolveText(ev engine.Event) string {
	switch v := ev.(type) {
	case engine.Contenter:
		return v.Content()
	case engine.Texter:
		return v.Text()
	case engine.Messager:
		return v.Message()
	case map[string]any:
		for _, k := range textKeys {
			if val, ok := v[k]; ok {
				return fmt.Sprint(val)
			}
		}
	case map[string]string:
		for _, k := range textKeys {
			if val, ok := v[k]; ok {
				return val
			}
		}
	}
	return fmt.Sprint(ev)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
