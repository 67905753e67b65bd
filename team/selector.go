package team

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/iamsorenl/Autogen-Chat-Demo/engine"
	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
	"github.com/iamsorenl/Autogen-Chat-Demo/provider"
)

// OrchestratorName is the identity used in logs for speaker selection.
const OrchestratorName = "Orchestrator"

// Selector picks the next speaker. It returns the chosen participant's name,
// or done=true to end the conversation. An empty name with done=false means
// the selector had no opinion and the team falls back to round-robin.
type Selector interface {
	Select(ctx context.Context, transcript []engine.TextMessage, participants []Participant) (name string, done bool, err error)
}

// ModelSelector asks a model to choose the next speaker.
type ModelSelector struct {
	provider    provider.Provider
	termination string
}

// NewModelSelector creates a model-backed selector.
func NewModelSelector(p provider.Provider, termination string) *ModelSelector {
	if termination == "" {
		termination = engine.Terminate
	}
	return &ModelSelector{provider: p, termination: termination}
}

// Select implements Selector.
func (s *ModelSelector) Select(ctx context.Context, transcript []engine.TextMessage, participants []Participant) (string, bool, error) {
	resp, err := s.provider.Chat(ctx, &provider.Request{
		Messages: []provider.Message{
			provider.SystemMessage(selectorSystemPrompt(participants, s.termination)),
			provider.UserMessage(renderTranscript(transcript, OrchestratorName)),
		},
	})
	if err != nil {
		return "", false, fmt.Errorf("select next speaker: %w", err)
	}

	answer := strings.TrimSpace(resp.Content)
	name, done := parseSelection(answer, participants, s.termination)
	logger.Debug("speaker selection", "answer", answer, "selected", name, "done", done)
	return name, done, nil
}

func selectorSystemPrompt(participants []Participant, termination string) string {
	var sb strings.Builder
	sb.WriteString("You coordinate a team working on the user's task. The team members are:\n\n")
	names := make([]string, 0, len(participants))
	for _, p := range participants {
		fmt.Fprintf(&sb, "- %s: %s\n", p.Name(), p.Description())
		names = append(names, p.Name())
	}
	fmt.Fprintf(&sb, "\nRead the conversation and choose who should speak next from [%s]. ", strings.Join(names, ", "))
	sb.WriteString("Ask the human only when the team needs information it cannot find itself. ")
	fmt.Fprintf(&sb, "Answer with the name only. If the task is fully complete, answer %s.", termination)
	return sb.String()
}

// parseSelection matches the answer against participant names, preferring an
// exact match and then the longest name the answer mentions.
func parseSelection(answer string, participants []Participant, termination string) (string, bool) {
	clean := strings.Trim(answer, " \t\r\n.\"'`*")
	for _, p := range participants {
		if strings.EqualFold(clean, p.Name()) {
			return p.Name(), false
		}
	}
	if termination != "" && strings.Contains(strings.ToUpper(clean), strings.ToUpper(termination)) {
		return "", true
	}

	byLength := make([]Participant, len(participants))
	copy(byLength, participants)
	sort.SliceStable(byLength, func(i, j int) bool { return len(byLength[i].Name()) > len(byLength[j].Name()) })
	lower := strings.ToLower(clean)
	for _, p := range byLength {
		if strings.Contains(lower, strings.ToLower(p.Name())) {
			return p.Name(), false
		}
	}
	return "", false
}
