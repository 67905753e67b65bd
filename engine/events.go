package engine

import (
	"fmt"
	"strings"
)

// TextMessage is a chat turn produced by one participant.
type TextMessage struct {
	From string
	Body string
}

// Source returns the participant that produced the message.
func (m TextMessage) Source() string { return m.From }

// Content returns the message body.
func (m TextMessage) Content() string { return m.Body }

func (m TextMessage) String() string {
	return fmt.Sprintf("%s: %s", m.From, m.Body)
}

// ToolCallEvent records a participant invoking a tool.
type ToolCallEvent struct {
	From      string
	Tool      string
	Arguments string
}

// Source returns the calling participant.
func (e ToolCallEvent) Source() string { return e.From }

// Content renders the call for display.
func (e ToolCallEvent) Content() string {
	return fmt.Sprintf("calling %s(%s)", e.Tool, e.Arguments)
}

// ToolResultEvent records the output of a tool call.
type ToolResultEvent struct {
	From   string
	Tool   string
	Result string
}

// Source returns the participant that made the call.
func (e ToolResultEvent) Source() string { return e.From }

// Content renders the result for display.
func (e ToolResultEvent) Content() string {
	return fmt.Sprintf("%s returned: %s", e.Tool, e.Result)
}

// TaskResult is the final event of a run. It has no sender or content
// accessor; consumers render it through String.
type TaskResult struct {
	Messages   []TextMessage
	StopReason string
}

func (r TaskResult) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("TaskResult(messages=%d", len(r.Messages)))
	if r.StopReason != "" {
		sb.WriteString(fmt.Sprintf(", stop_reason=%q", r.StopReason))
	}
	sb.WriteString(")")
	return sb.String()
}
