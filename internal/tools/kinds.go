package tools

import (
	"errors"
	"fmt"
)

// ErrUnknownTool is returned by Lookup for names outside the registry.
var ErrUnknownTool = errors.New("unknown tool")

// Kind enumerates the tools the model may call.
type Kind int

const (
	CreateStory Kind = iota + 1
	UpdateStory
	ListStories
	CreateFeature
	ListFeatures
	SearchStories
	AskUserQuestion
	PresentDraft
	AnalyzeStoryQuality
)

// Kinds lists every tool in registry order.
var Kinds = []Kind{
	CreateStory,
	UpdateStory,
	ListStories,
	CreateFeature,
	ListFeatures,
	SearchStories,
	AskUserQuestion,
	PresentDraft,
	AnalyzeStoryQuality,
}

var kindNames = map[Kind]string{
	CreateStory:         "create_story",
	UpdateStory:         "update_story",
	ListStories:         "list_stories",
	CreateFeature:       "create_feature",
	ListFeatures:        "list_features",
	SearchStories:       "search_stories",
	AskUserQuestion:     "ask_user_question",
	PresentDraft:        "present_draft",
	AnalyzeStoryQuality: "analyze_story_quality",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// String returns the wire name of the tool
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Lookup resolves a wire name to its Kind.
func Lookup(name string) (Kind, error) {
	if k, ok := kindsByName[name]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownTool, name)
}
