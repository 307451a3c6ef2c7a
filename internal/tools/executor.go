// Package tools implements the tools the model can call: typed inputs,
// their JSON schemas, and the executor that runs them against the story
// store and the terminal.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/iksnae/storyline/internal"
	"github.com/iksnae/storyline/internal/store"
	"github.com/iksnae/storyline/internal/ui"
)

// Store is the part of the document store the tools use.
type Store interface {
	CreateStory(story *store.Story) (string, error)
	UpdateStory(story *store.Story) (string, error)
	GetStory(featureID, storyID string) (*store.Story, error)
	ListStories(featureID string) ([]*store.Story, error)
	SearchStories(query string) ([]*store.Story, error)
	CreateFeature(feature *store.Feature) (string, error)
	GetFeature(id string) (*store.Feature, error)
	FeatureSummaries(ctx context.Context) ([]store.FeatureSummary, error)
}

// UI is the terminal surface the tools render to and prompt through.
// Prompts return ui.ErrCancelled when the user aborts.
type UI interface {
	AskSingleChoice(ctx context.Context, question string, choices []ui.Choice) (string, error)
	AskMultiChoice(ctx context.Context, question string, choices []ui.Choice) ([]string, error)
	AskText(ctx context.Context, prompt string) (string, error)
	AskYesNo(ctx context.Context, prompt string, def bool) (bool, error)
	ShowDraft(title string, fields []ui.Field)
	ShowStories(stories []*store.Story)
	ShowFeatures(summaries []store.FeatureSummary)
}

// Executor runs tool calls.
type Executor struct {
	store    Store
	ui       UI
	validate *validator.Validate
	now      func() time.Time
}

// NewExecutor creates an executor over a store and a UI
func NewExecutor(s Store, u UI) *Executor {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Executor{
		store:    s,
		ui:       u,
		validate: v,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Execute runs the named tool. Failures are reported in the Result; the
// returned error is non-nil only when the user cancelled an interactive
// prompt.
func (e *Executor) Execute(ctx context.Context, name string, input json.RawMessage) (Result, error) {
	kind, err := Lookup(name)
	if err != nil {
		internal.LogWarn("Model requested unknown tool %q", name)
		return Fail("Unknown tool: " + name), nil
	}

	result, err := e.dispatch(ctx, kind, input)
	if err != nil {
		if errors.Is(err, ui.ErrCancelled) {
			return Result{}, err
		}
		return Fail(err.Error()), nil
	}
	return result, nil
}

func (e *Executor) dispatch(ctx context.Context, kind Kind, raw json.RawMessage) (Result, error) {
	switch kind {
	case CreateStory:
		return run(e, raw, e.createStory)
	case UpdateStory:
		return run(e, raw, e.updateStory)
	case ListStories:
		return run(e, raw, e.listStories)
	case CreateFeature:
		return run(e, raw, e.createFeature)
	case ListFeatures:
		return run(e, raw, func(in *ListFeaturesInput) (Result, error) { return e.listFeatures(ctx) })
	case SearchStories:
		return run(e, raw, e.searchStories)
	case AskUserQuestion:
		return run(e, raw, func(in *AskUserQuestionInput) (Result, error) { return e.askUserQuestion(ctx, in) })
	case PresentDraft:
		return run(e, raw, func(in *PresentDraftInput) (Result, error) { return e.presentDraft(ctx, in) })
	case AnalyzeStoryQuality:
		return run(e, raw, e.analyzeStoryQuality)
	}
	return Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, kind)
}

// run decodes and validates the input, then calls the handler.
func run[T any](e *Executor, raw json.RawMessage, handler func(*T) (Result, error)) (Result, error) {
	in := new(T)
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, in); err != nil {
			return Fail(fmt.Sprintf("invalid input: %v", err)), nil
		}
	}
	if err := e.validate.Struct(in); err != nil {
		return Fail(validationMessage(err)), nil
	}
	return handler(in)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Sprintf("invalid input: %v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("missing required field %q", fieldPath(fe)))
		default:
			msgs = append(msgs, fmt.Sprintf("field %q failed %s validation", fieldPath(fe), fe.Tag()))
		}
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

// fieldPath drops the struct name from the namespace, e.g. options[0].label
func fieldPath(fe validator.FieldError) string {
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return path
}
