package engine

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancellationToken(t *testing.T) {
	tok := NewCancellationToken()
	assert.False(t, tok.Cancelled())

	tok.Cancel()
	tok.Cancel()

	assert.True(t, tok.Cancelled())
	select {
	case <-tok.Done():
	default:
		t.Fatal("Done channel not closed after Cancel")
	}
}

func TestIsCancelled(t *testing.T) {
	assert.True(t, IsCancelled(ErrInputCancelled))
	assert.True(t, IsCancelled(context.Canceled))
	assert.False(t, IsCancelled(errors.New("boom")))
	assert.False(t, IsCancelled(nil))
}

func TestFuncAdapter(t *testing.T) {
	var eng Engine = Func(func(_ context.Context, task string) iter.Seq2[Event, error] {
		return func(yield func(Event, error) bool) {
			if !yield(TextMessage{From: "Scientist", Body: task}, nil) {
				return
			}
			yield(TaskResult{Messages: []TextMessage{{From: "Scientist", Body: task}}, StopReason: "done"}, nil)
		}
	})

	var got []Event
	for ev, err := range eng.Run(context.Background(), "hello") {
		require.NoError(t, err)
		got = append(got, ev)
	}

	require.Len(t, got, 2)
	assert.Equal(t, "Scientist: hello", got[0].(TextMessage).String())
	assert.Equal(t, `TaskResult(messages=1, stop_reason="done")`, got[1].(TaskResult).String())
}

func TestEventAccessors(t *testing.T) {
	call := ToolCallEvent{From: "Artist", Tool: "web_search", Arguments: `{"query":"cats"}`}
	assert.Equal(t, "Artist", call.Source())
	assert.Equal(t, `calling web_search({"query":"cats"})`, call.Content())

	res := ToolResultEvent{From: "Artist", Tool: "web_search", Result: "3 hits"}
	assert.Equal(t, "Artist", res.Source())
	assert.Equal(t, "web_search returned: 3 hits", res.Content())

	assert.Equal(t, "TaskResult(messages=0)", TaskResult{}.String())
}
