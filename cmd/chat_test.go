package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/storyline/internal/llm"
	"github.com/iksnae/storyline/internal/store"
	"github.com/iksnae/storyline/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGateway answers with queued responses, then with a fixed text.
type stubGateway struct {
	responses []*llm.Response
	errs      []error
	requests  []llm.Request
}

func (g *stubGateway) Send(ctx context.Context, req llm.Request) (*llm.Response, error) {
	g.requests = append(g.requests, req)
	if len(g.errs) > 0 {
		err := g.errs[0]
		g.errs = g.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	if len(g.responses) > 0 {
		resp := g.responses[0]
		g.responses = g.responses[1:]
		return resp, nil
	}
	return &llm.Response{
		Content:    []llm.ContentItem{llm.TextItem{Text: "Sure."}},
		StopReason: llm.StopEndTurn,
	}, nil
}

func (g *stubGateway) lastUserText() string {
	if len(g.requests) == 0 {
		return ""
	}
	msgs := g.requests[len(g.requests)-1].Messages
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != llm.RoleUser {
			continue
		}
		for _, item := range msgs[i].Content {
			if text, ok := item.(llm.TextItem); ok {
				return text.Text
			}
		}
	}
	return ""
}

func startSession(t *testing.T, gateway llm.Gateway, root, input, extra string) (*session, *bytes.Buffer) {
	t.Helper()
	st, err := store.Open(root)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	var out bytes.Buffer
	term := ui.NewTerminal(strings.NewReader(input), &out)
	sess, err := newSession(context.Background(), gateway, st, term, 5, extra)
	require.NoError(t, err)
	return sess, &out
}

func TestSession_Commands(t *testing.T) {
	gateway := &stubGateway{}
	sess, out := startSession(t, gateway, seedStore(t), "help\nhistory\nhello\nhistory\nclear\nhistory\nexit\nignored\n", "")

	require.NoError(t, sess.run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "review <feature> <story>")
	assert.Contains(t, text, "2 messages (1 user, 1 assistant)")
	assert.Contains(t, text, "Sure.")
	assert.Contains(t, text, "4 messages (2 user, 2 assistant)")
	assert.Contains(t, text, "Conversation cleared.")
	assert.Contains(t, text, "0 messages (0 user, 0 assistant)")
	assert.Contains(t, text, "Goodbye!")

	require.Len(t, gateway.requests, 1)
	assert.Equal(t, "hello", gateway.lastUserText())
	assert.Len(t, gateway.requests[0].Tools, 9)
}

func TestSession_ProjectContext(t *testing.T) {
	gateway := &stubGateway{}
	sess, _ := startSession(t, gateway, seedStore(t), "", "We sell shoes.")

	history := sess.orch.History()
	require.Len(t, history, 2)
	ctxText := history[0].Content[0].(llm.TextItem).Text
	assert.Contains(t, ctxText, "- checkout: Checkout [active] (2 stories)")
	assert.Contains(t, ctxText, "Backlog stories: 1")
	assert.Contains(t, ctxText, "We sell shoes.")
}

func TestSession_Review(t *testing.T) {
	gateway := &stubGateway{}
	sess, out := startSession(t, gateway, seedStore(t), "review checkout US-001\nreview checkout US-404\n", "")

	require.NoError(t, sess.run(context.Background()))

	require.Len(t, gateway.requests, 1)
	assert.Contains(t, gateway.lastUserText(), "Please review story US-001 in checkout")
	assert.Contains(t, out.String(), "story not found: checkout/US-404")
}

func TestSession_ErrorsKeepSessionAlive(t *testing.T) {
	gateway := &stubGateway{errs: []error{&llm.APIError{StatusCode: 529, Type: "overloaded_error", Message: "Overloaded"}}}
	sess, out := startSession(t, gateway, t.TempDir(), "first\nsecond\n", "")

	require.NoError(t, sess.run(context.Background()))

	assert.Contains(t, out.String(), "model request failed")
	assert.Contains(t, out.String(), "Sure.")
	assert.Len(t, gateway.requests, 2)
	assert.Equal(t, "second", gateway.lastUserText())
}

func TestSession_ToolRound(t *testing.T) {
	root := seedStore(t)
	gateway := &stubGateway{responses: []*llm.Response{
		{
			Content: []llm.ContentItem{
				llm.ToolUseItem{ID: "toolu_1", Name: "list_stories", Input: []byte(`{"feature":"checkout"}`)},
			},
			StopReason: llm.StopToolUse,
		},
	}}
	sess, out := startSession(t, gateway, root, "what is in checkout?\n", "")

	require.NoError(t, sess.run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "⚙ list_stories")
	assert.Contains(t, text, "Pay by card")
	require.Len(t, gateway.requests, 2)

	msgs := gateway.requests[1].Messages
	last := msgs[len(msgs)-1]
	require.Len(t, last.Content, 1)
	result, ok := last.Content[0].(llm.ToolResultItem)
	require.True(t, ok)
	assert.Equal(t, "toolu_1", result.ToolUseID)
	assert.False(t, result.IsError)
}

func TestRunChat_ContextFileMissing(t *testing.T) {
	isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test-0123456789")

	missing := filepath.Join(t.TempDir(), "nope.md")
	_, err := executeCommand(t, "", "chat", "--store", t.TempDir(), "--context-file", missing)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
