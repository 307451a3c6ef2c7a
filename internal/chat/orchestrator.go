// Package chat drives a conversation with the model: it owns the message
// history, sends it to the gateway, runs the tools the model asks for and
// feeds their results back until the model answers.
package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/iksnae/storyline/internal"
	"github.com/iksnae/storyline/internal/llm"
	"github.com/iksnae/storyline/internal/tools"
	"go.uber.org/zap"
)

// DefaultMaxRounds caps the model calls made by a single Chat call.
const DefaultMaxRounds = 25

const cancelledResult = "cancelled by user"

const contextAck = "Thanks, I have the project context. What would you like to work on?"

// Executor runs one tool call.
type Executor interface {
	Execute(ctx context.Context, name string, input json.RawMessage) (tools.Result, error)
}

// Display shows model output as it arrives.
type Display interface {
	ShowText(text string)
	ShowToolUse(name string)
}

// Waiter wraps a blocking model call, e.g. to draw a spinner.
type Waiter func(ctx context.Context, message string, fn func() error) error

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxRounds sets the round cap; n <= 0 disables it.
func WithMaxRounds(n int) Option {
	return func(o *Orchestrator) { o.maxRounds = n }
}

// WithSystemPrompt replaces the default system prompt.
func WithSystemPrompt(s string) Option {
	return func(o *Orchestrator) { o.system = s }
}

// WithTools sets the tool declarations sent with every request.
func WithTools(specs []llm.ToolSpec) Option {
	return func(o *Orchestrator) { o.tools = specs }
}

// WithWaiter sets the hook wrapped around each model call.
func WithWaiter(w Waiter) Option {
	return func(o *Orchestrator) { o.wait = w }
}

// Orchestrator runs one chat session. It is not safe for concurrent use.
type Orchestrator struct {
	gateway   llm.Gateway
	executor  Executor
	display   Display
	system    string
	tools     []llm.ToolSpec
	maxRounds int
	wait      Waiter
	log       *zap.Logger

	history []llm.Message
}

// New creates an orchestrator with an empty history.
func New(gateway llm.Gateway, executor Executor, display Display, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gateway:   gateway,
		executor:  executor,
		display:   display,
		system:    SystemPrompt,
		maxRounds: DefaultMaxRounds,
		wait: func(ctx context.Context, _ string, fn func() error) error {
			return fn()
		},
		log: internal.Logger().With(zap.String("session", uuid.NewString())),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Chat adds the user's text to the history and runs rounds until the model
// answers without requesting tools.
//
// A gateway failure ends the call and leaves the history as it was after
// the last completed round. A cancelled prompt ends the call after the
// unanswered tool requests of the round have been given error results.
func (o *Orchestrator) Chat(ctx context.Context, text string) error {
	o.history = append(o.history, llm.UserText(text))

	for round := 1; ; round++ {
		if o.maxRounds > 0 && round > o.maxRounds {
			o.log.Warn("round limit reached", zap.Int("limit", o.maxRounds))
			return &RoundLimitError{Limit: o.maxRounds}
		}

		resp, err := o.send(ctx)
		if err != nil {
			o.log.Error("model request failed", zap.Int("round", round), zap.Error(err))
			return fmt.Errorf("model request failed: %w", err)
		}

		uses := resp.ToolUses()
		o.log.Debug("model response",
			zap.Int("round", round),
			zap.Int("items", len(resp.Content)),
			zap.Int("tool_uses", len(uses)),
			zap.String("stop_reason", string(resp.StopReason)),
		)

		for _, item := range resp.Content {
			if t, ok := item.(llm.TextItem); ok {
				o.display.ShowText(t.Text)
			}
		}

		if len(uses) == 0 {
			if len(resp.Content) > 0 {
				o.appendAssistant(resp)
			}
			if resp.StopReason.IsTerminal() {
				return nil
			}
			o.log.Warn("response has no tool calls and no terminal stop reason; continuing",
				zap.String("stop_reason", string(resp.StopReason)))
			continue
		}

		o.appendAssistant(resp)
		results, err := o.runTools(ctx, uses)
		o.history = append(o.history, llm.Message{Role: llm.RoleUser, Content: results})
		if err != nil {
			return err
		}
	}
}

func (o *Orchestrator) send(ctx context.Context) (*llm.Response, error) {
	req := llm.Request{
		System:   o.system,
		Messages: llm.CloneMessages(o.history),
		Tools:    o.tools,
	}
	var resp *llm.Response
	err := o.wait(ctx, "Thinking...", func() error {
		var err error
		resp, err = o.gateway.Send(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, llm.ErrEmptyResponse
	}
	return resp, nil
}

func (o *Orchestrator) appendAssistant(resp *llm.Response) {
	msg := llm.Message{Role: llm.RoleAssistant, Content: resp.Content}
	o.history = append(o.history, msg.Clone())
}

// runTools executes the requests in order and returns one result per
// request. When the user cancels, the remaining requests are answered with
// error results and the cancellation is returned.
func (o *Orchestrator) runTools(ctx context.Context, uses []llm.ToolUseItem) ([]llm.ContentItem, error) {
	results := make([]llm.ContentItem, 0, len(uses))
	for i, use := range uses {
		o.display.ShowToolUse(use.Name)

		res, err := o.executor.Execute(ctx, use.Name, use.Input)
		if err != nil {
			o.log.Info("tool cancelled", zap.String("tool", use.Name), zap.String("id", use.ID), zap.Error(err))
			for _, pending := range uses[i:] {
				results = append(results, llm.ToolResultItem{
					ToolUseID: pending.ID,
					Content:   tools.Fail(cancelledResult).JSON(),
					IsError:   true,
				})
			}
			return results, err
		}

		o.log.Debug("tool executed",
			zap.String("tool", use.Name),
			zap.String("id", use.ID),
			zap.Bool("success", res.Success),
		)
		results = append(results, llm.ToolResultItem{
			ToolUseID: use.ID,
			Content:   res.JSON(),
			IsError:   !res.Success,
		})
	}
	return results, nil
}

// AddContext primes the history with text and a canned acknowledgment,
// without calling the model.
func (o *Orchestrator) AddContext(text string) {
	o.history = append(o.history,
		llm.UserText(text),
		llm.AssistantText(contextAck),
	)
}

// ClearHistory discards every message
func (o *Orchestrator) ClearHistory() {
	o.history = nil
}

// History returns a copy of the messages so far
func (o *Orchestrator) History() []llm.Message {
	return llm.CloneMessages(o.history)
}
