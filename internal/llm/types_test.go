package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStopReason_IsTerminal(t *testing.T) {
	tests := []struct {
		reason StopReason
		want   bool
	}{
		{StopEndTurn, true},
		{StopSequence, true},
		{StopMaxTokens, true},
		{StopRefusal, true},
		{StopToolUse, false},
		{StopPauseTurn, false},
		{StopUnknown, false},
		{StopReason("something_new"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.reason.IsTerminal())
		})
	}
}

func TestMessage_Clone(t *testing.T) {
	orig := Message{Role: RoleAssistant, Content: []ContentItem{
		TextItem{Text: "hi"},
		ToolUseItem{ID: "t1", Name: "list_stories", Input: json.RawMessage(`{"a":1}`)},
	}}

	clone := orig.Clone()
	clone.Content[0] = TextItem{Text: "changed"}
	clone.Content[1].(ToolUseItem).Input[2] = 'b'

	assert.Equal(t, TextItem{Text: "hi"}, orig.Content[0])
	assert.JSONEq(t, `{"a":1}`, string(orig.Content[1].(ToolUseItem).Input))
}

func TestMessage_ToolUsesAndResults(t *testing.T) {
	m := Message{Role: RoleUser, Content: []ContentItem{
		ToolResultItem{ToolUseID: "a", Content: "{}"},
		TextItem{Text: "x"},
		ToolResultItem{ToolUseID: "b", Content: "{}"},
	}}
	assert.Empty(t, m.ToolUses())
	results := m.ToolResults()
	if assert.Len(t, results, 2) {
		assert.Equal(t, "a", results[0].ToolUseID)
		assert.Equal(t, "b", results[1].ToolUseID)
	}
}

func TestCloneMessages_Nil(t *testing.T) {
	assert.Nil(t, CloneMessages(nil))
	assert.Len(t, CloneMessages([]Message{UserText("a"), AssistantText("b")}), 2)
}

func TestResponse_ToolUses(t *testing.T) {
	r := &Response{Content: []ContentItem{
		TextItem{Text: "Hello "},
		ToolUseItem{ID: "1", Name: "x"},
		TextItem{Text: "world"},
	}}
	uses := r.ToolUses()
	if assert.Len(t, uses, 1) {
		assert.Equal(t, "x", uses[0].Name)
	}
}
