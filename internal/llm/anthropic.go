package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/iksnae/storyline/internal"
	"go.uber.org/zap"
	"resty.dev/v3"
)

const (
	// DefaultBaseURL is the public Anthropic API endpoint
	DefaultBaseURL   = "https://api.anthropic.com"
	messagesPath     = "/v1/messages"
	anthropicVersion = "2023-06-01"
	defaultMaxTokens = 4096
	defaultTimeout   = 5 * time.Minute
)

// AnthropicConfig configures an AnthropicGateway.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// AnthropicGateway sends requests to the Anthropic Messages API.
type AnthropicGateway struct {
	client    *resty.Client
	model     string
	maxTokens int
}

// NewAnthropicGateway builds a gateway. It fails fast when no API key is set.
func NewAnthropicGateway(cfg AnthropicConfig) (*AnthropicGateway, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, ErrMissingCredential
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("model id is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-api-key", key).
		SetHeader("anthropic-version", anthropicVersion)
	client.AddResponseMiddleware(func(c *resty.Client, r *resty.Response) error {
		internal.Logger().Debug("model request",
			zap.Int("status", r.StatusCode()),
			zap.Duration("latency", r.Duration()),
		)
		return nil
	})

	return &AnthropicGateway{client: client, model: cfg.Model, maxTokens: maxTokens}, nil
}

// Model returns the configured model id
func (g *AnthropicGateway) Model() string {
	return g.model
}

// Close releases idle connections
func (g *AnthropicGateway) Close() error {
	return g.client.Close()
}

// Send posts the conversation and decodes the reply.
func (g *AnthropicGateway) Send(ctx context.Context, req Request) (*Response, error) {
	body := messageRequest{
		Model:     g.model,
		System:    req.System,
		MaxTokens: g.maxTokens,
		Messages:  encodeMessages(req.Messages),
		Tools:     req.Tools,
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(messagesPath)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return nil, decodeAPIError(resp.StatusCode(), resp.Bytes())
	}

	var out messageResponse
	if err := json.Unmarshal(resp.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("failed to decode model response: %w", err)
	}
	return out.toResponse()
}

type messageRequest struct {
	Model     string         `json:"model"`
	System    string         `json:"system,omitempty"`
	MaxTokens int            `json:"max_tokens"`
	Messages  []messageParam `json:"messages"`
	Tools     []ToolSpec     `json:"tools,omitempty"`
}

type messageParam struct {
	Role    Role           `json:"role"`
	Content []contentBlock `json:"content"`
}

// contentBlock is the wire union of text, tool_use and tool_result blocks.
type contentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

type messageResponse struct {
	ID         string         `json:"id"`
	Role       string         `json:"role"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// encodeMessages converts history to wire turns, merging consecutive
// messages of the same role into one turn.
func encodeMessages(msgs []Message) []messageParam {
	params := make([]messageParam, 0, len(msgs))
	for _, m := range msgs {
		blocks := make([]contentBlock, 0, len(m.Content))
		for _, item := range m.Content {
			blocks = append(blocks, encodeItem(item))
		}
		if n := len(params); n > 0 && params[n-1].Role == m.Role {
			params[n-1].Content = append(params[n-1].Content, blocks...)
			continue
		}
		params = append(params, messageParam{Role: m.Role, Content: blocks})
	}
	return params
}

func encodeItem(item ContentItem) contentBlock {
	switch v := item.(type) {
	case TextItem:
		return contentBlock{Type: "text", Text: v.Text}
	case ToolUseItem:
		input := v.Input
		if len(input) == 0 {
			input = json.RawMessage("{}")
		}
		return contentBlock{Type: "tool_use", ID: v.ID, Name: v.Name, Input: input}
	case ToolResultItem:
		return contentBlock{Type: "tool_result", ToolUseID: v.ToolUseID, Content: v.Content, IsError: v.IsError}
	}
	panic(fmt.Sprintf("llm: unknown content item %T", item))
}

func (r *messageResponse) toResponse() (*Response, error) {
	out := &Response{StopReason: StopReason(r.StopReason)}
	for _, block := range r.Content {
		switch block.Type {
		case "text":
			out.Content = append(out.Content, TextItem{Text: block.Text})
		case "tool_use":
			input := block.Input
			if len(input) == 0 {
				input = json.RawMessage("{}")
			}
			out.Content = append(out.Content, ToolUseItem{ID: block.ID, Name: block.Name, Input: input})
		default:
			internal.LogDebug("Ignoring content block of type %q", block.Type)
		}
	}
	if len(out.Content) == 0 && !out.StopReason.IsTerminal() {
		return nil, ErrEmptyResponse
	}
	return out, nil
}

func decodeAPIError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}
	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		apiErr.Type = payload.Error.Type
		apiErr.Message = payload.Error.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
