// Package llm holds the conversation message model exchanged with the
// language model and the gateway that carries it over the wire.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentItem is one entry of a message body. The set of implementations is
// closed: TextItem, ToolUseItem and ToolResultItem.
type ContentItem interface {
	contentItem()
}

// TextItem is a plain text segment.
type TextItem struct {
	Text string `json:"text"`
}

// ToolUseItem is a request from the model to run a tool.
type ToolUseItem struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolResultItem answers the ToolUseItem with the same id.
type ToolResultItem struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error,omitempty"`
}

func (TextItem) contentItem()       {}
func (ToolUseItem) contentItem()    {}
func (ToolResultItem) contentItem() {}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content []ContentItem
}

// UserText builds a user message holding a single text segment
func UserText(text string) Message {
	return Message{Role: RoleUser, Content: []ContentItem{TextItem{Text: text}}}
}

// AssistantText builds an assistant message holding a single text segment
func AssistantText(text string) Message {
	return Message{Role: RoleAssistant, Content: []ContentItem{TextItem{Text: text}}}
}

// ToolUses returns the tool requests of the message in order.
func (m Message) ToolUses() []ToolUseItem {
	var uses []ToolUseItem
	for _, item := range m.Content {
		if use, ok := item.(ToolUseItem); ok {
			uses = append(uses, use)
		}
	}
	return uses
}

// ToolResults returns the tool results of the message in order.
func (m Message) ToolResults() []ToolResultItem {
	var results []ToolResultItem
	for _, item := range m.Content {
		if result, ok := item.(ToolResultItem); ok {
			results = append(results, result)
		}
	}
	return results
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	out := Message{Role: m.Role, Content: make([]ContentItem, len(m.Content))}
	for i, item := range m.Content {
		if use, ok := item.(ToolUseItem); ok {
			use.Input = append(json.RawMessage(nil), use.Input...)
			item = use
		}
		out.Content[i] = item
	}
	return out
}

// CloneMessages deep-copies a history
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}

// StopReason is the model's reason for ending a response.
type StopReason string

const (
	StopEndTurn   StopReason = "end_turn"
	StopToolUse   StopReason = "tool_use"
	StopMaxTokens StopReason = "max_tokens"
	StopSequence  StopReason = "stop_sequence"
	StopRefusal   StopReason = "refusal"
	StopPauseTurn StopReason = "pause_turn"
	StopUnknown   StopReason = ""
)

// IsTerminal reports whether a response with this stop reason and no tool
// requests completes the turn.
func (r StopReason) IsTerminal() bool {
	switch r {
	case StopEndTurn, StopSequence, StopMaxTokens, StopRefusal:
		return true
	}
	return false
}

// ToolSpec describes a tool the model may call.
type ToolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// Request is one model call.
type Request struct {
	System   string
	Messages []Message
	Tools    []ToolSpec
}

// Response is the model's reply to a Request.
type Response struct {
	Content    []ContentItem
	StopReason StopReason
}

// ToolUses returns the tool requests of the response in order.
func (r *Response) ToolUses() []ToolUseItem {
	return Message{Content: r.Content}.ToolUses()
}

// Gateway sends a conversation to the model.
type Gateway interface {
	Send(ctx context.Context, req Request) (*Response, error)
}

var (
	// ErrMissingCredential is returned when no API key could be resolved.
	ErrMissingCredential = errors.New("no API key configured: set ANTHROPIC_API_KEY or run 'storyline config set-key'")
	// ErrEmptyResponse is returned when the model replies with no content.
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// APIError is an error reported by the model API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("anthropic API error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("anthropic API error (%d, %s): %s", e.StatusCode, e.Type, e.Message)
}
