// Package team implements a group chat engine: a set of participants that
// take turns on a task, with a selector choosing each next speaker.
package team

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/iamsorenl/Autogen-Chat-Demo/engine"
	"github.com/iamsorenl/Autogen-Chat-Demo/internal/runtimecfg"
	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
)

// TaskSource is the sender of the opening task message.
const TaskSource = "user"

// Options configures a Team.
type Options struct {
	Participants []Participant
	Selector     Selector // nil selects round-robin
	MaxTurns     int
	Termination  string
}

// Team runs group chats. It implements engine.Engine.
type Team struct {
	participants []Participant
	byName       map[string]Participant
	selector     Selector
	maxTurns     int
	termination  string
}

// New validates opts and creates a team.
func New(opts Options) (*Team, error) {
	if len(opts.Participants) == 0 {
		return nil, errors.New("team needs at least one participant")
	}

	byName := make(map[string]Participant, len(opts.Participants))
	for _, p := range opts.Participants {
		if _, dup := byName[p.Name()]; dup {
			return nil, fmt.Errorf("duplicate participant name: %s", p.Name())
		}
		byName[p.Name()] = p
	}

	maxTurns := opts.MaxTurns
	if maxTurns <= 0 {
		maxTurns = runtimecfg.TeamDefaultMaxTurns
	}
	termination := opts.Termination
	if termination == "" {
		termination = runtimecfg.TeamDefaultTermination
	}

	return &Team{
		participants: opts.Participants,
		byName:       byName,
		selector:     opts.Selector,
		maxTurns:     maxTurns,
		termination:  termination,
	}, nil
}

// Participants returns the names of the team members in order.
func (t *Team) Participants() []string {
	names := make([]string, 0, len(t.participants))
	for _, p := range t.participants {
		names = append(names, p.Name())
	}
	return names
}

// Run starts a conversation on task. The stream opens with the task message,
// yields every participant message and tool event, and closes with a
// TaskResult carrying the stop reason. A participant or selector error ends
// the stream with that error instead.
func (t *Team) Run(ctx context.Context, task string) iter.Seq2[engine.Event, error] {
	return func(yield func(engine.Event, error) bool) {
		opening := engine.TextMessage{From: TaskSource, Body: task}
		transcript := []engine.TextMessage{opening}
		if !yield(opening, nil) {
			return
		}

		next := 0
		stopReason := ""
		for turn := 0; ; turn++ {
			if turn >= t.maxTurns {
				stopReason = fmt.Sprintf("Maximum number of turns %d reached.", t.maxTurns)
				break
			}
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			speaker, done, err := t.pickSpeaker(ctx, transcript, &next)
			if err != nil {
				yield(nil, err)
				return
			}
			if done {
				stopReason = OrchestratorName + " ended the conversation."
				break
			}
			logger.Debug("next speaker", "turn", turn+1, "speaker", speaker.Name())

			stopped := false
			emit := func(ev engine.Event) bool {
				if stopped {
					return false
				}
				if !yield(ev, nil) {
					stopped = true
				}
				return !stopped
			}

			msg, err := speaker.Respond(ctx, transcript, emit)
			if stopped {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("%s: %w", speaker.Name(), err))
				return
			}

			transcript = append(transcript, msg)
			if !yield(msg, nil) {
				return
			}
			if strings.Contains(msg.Body, t.termination) {
				stopReason = fmt.Sprintf("Text '%s' mentioned", t.termination)
				break
			}
		}

		yield(engine.TaskResult{Messages: transcript, StopReason: stopReason}, nil)
	}
}

// pickSpeaker consults the selector and falls back to round-robin order when
// there is no selector or it names nobody.
func (t *Team) pickSpeaker(ctx context.Context, transcript []engine.TextMessage, next *int) (Participant, bool, error) {
	if t.selector != nil {
		name, done, err := t.selector.Select(ctx, transcript, t.participants)
		if err != nil {
			return nil, false, err
		}
		if done {
			return nil, true, nil
		}
		if p, ok := t.byName[name]; ok {
			*next = (t.indexOf(name) + 1) % len(t.participants)
			return p, false, nil
		}
		logger.Debug("selector named no participant, using round-robin")
	}

	p := t.participants[*next%len(t.participants)]
	*next = (*next + 1) % len(t.participants)
	return p, false, nil
}

func (t *Team) indexOf(name string) int {
	for i, p := range t.participants {
		if p.Name() == name {
			return i
		}
	}
	return 0
}
