package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/iksnae/storyline/internal/llm"
	"github.com/iksnae/storyline/internal/tools"
	"github.com/iksnae/storyline/internal/ui"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedGateway replays responses in order. Once the script is exhausted
// the last response repeats.
type scriptedGateway struct {
	responses []*llm.Response
	errs      map[int]error
	requests  []llm.Request
}

func (g *scriptedGateway) Send(_ context.Context, req llm.Request) (*llm.Response, error) {
	g.requests = append(g.requests, req)
	call := len(g.requests) - 1
	if err, ok := g.errs[call]; ok {
		return nil, err
	}
	if len(g.responses) == 0 {
		return nil, errors.New("no scripted response")
	}
	if call >= len(g.responses) {
		call = len(g.responses) - 1
	}
	return g.responses[call], nil
}

// recordingExecutor records calls and answers from a table.
type recordingExecutor struct {
	calls    []string
	inputs   []json.RawMessage
	results  map[string]tools.Result
	cancelOn string
}

func (e *recordingExecutor) Execute(_ context.Context, name string, input json.RawMessage) (tools.Result, error) {
	e.calls = append(e.calls, name)
	e.inputs = append(e.inputs, input)
	if name == e.cancelOn {
		return tools.Result{}, ui.ErrCancelled
	}
	if res, ok := e.results[name]; ok {
		return res, nil
	}
	return tools.Ok(map[string]string{"tool": name}), nil
}

type recordingDisplay struct {
	texts    []string
	toolUses []string
}

func (d *recordingDisplay) ShowText(text string)    { d.texts = append(d.texts, text) }
func (d *recordingDisplay) ShowToolUse(name string) { d.toolUses = append(d.toolUses, name) }

func textResponse(text string) *llm.Response {
	return &llm.Response{Content: []llm.ContentItem{llm.TextItem{Text: text}}, StopReason: llm.StopEndTurn}
}

func toolUse(name, input string) llm.ToolUseItem {
	return llm.ToolUseItem{ID: "toolu_" + uuid.NewString()[:8], Name: name, Input: json.RawMessage(input)}
}

func toolResponse(text string, uses ...llm.ToolUseItem) *llm.Response {
	resp := &llm.Response{StopReason: llm.StopToolUse}
	if text != "" {
		resp.Content = append(resp.Content, llm.TextItem{Text: text})
	}
	for _, u := range uses {
		resp.Content = append(resp.Content, u)
	}
	return resp
}

// checkAlternation verifies that every assistant message with tool requests
// is followed by exactly one user message answering them in order.
func checkAlternation(history []llm.Message) error {
	for i, m := range history {
		uses := m.ToolUses()
		if m.Role != llm.RoleAssistant || len(uses) == 0 {
			continue
		}
		if i+1 >= len(history) {
			return fmt.Errorf("message %d: tool requests without results", i)
		}
		next := history[i+1]
		if next.Role != llm.RoleUser {
			return fmt.Errorf("message %d: followed by %s", i, next.Role)
		}
		results := next.ToolResults()
		if len(results) != len(uses) || len(next.Content) != len(uses) {
			return fmt.Errorf("message %d: %d requests, %d results", i, len(uses), len(results))
		}
		for j := range uses {
			if results[j].ToolUseID != uses[j].ID {
				return fmt.Errorf("message %d: result %d answers %s, want %s", i, j, results[j].ToolUseID, uses[j].ID)
			}
		}
	}
	return nil
}
