package tools

import (
	"encoding/json"
	"fmt"

	"github.com/iksnae/storyline/internal/llm"
	"github.com/invopop/jsonschema"
)

var descriptions = map[Kind]string{
	CreateStory: "Create a user story and save it. Stories without a feature go to the backlog. " +
		"Only call this after the user approved the draft.",
	UpdateStory: "Update fields of an existing story. Only the keys present in updates are changed.",
	ListStories: "List stored stories, optionally filtered by feature and status. " +
		"The list is also shown to the user.",
	CreateFeature: "Create a feature that groups related stories.",
	ListFeatures:  "List all features with the number of stories in each. The list is also shown to the user.",
	SearchStories: "Search every story for text in its title, role, goal, benefit, acceptance criteria, " +
		"open questions, edge cases and tags. Matching ignores case.",
	AskUserQuestion: "Ask the user a multiple-choice question and wait for the answer. " +
		"Use it to clarify requirements instead of guessing.",
	PresentDraft: "Show a story draft to the user and ask for approval. " +
		"If the user rejects it, their requested changes are returned.",
	AnalyzeStoryQuality: "Score a stored story against the INVEST criteria with a structural heuristic " +
		"and return improvement suggestions.",
}

// Description returns the natural-language description of a tool
func (k Kind) Description() string {
	return descriptions[k]
}

// Schema returns the JSON schema of the tool's input.
func (k Kind) Schema() (json.RawMessage, error) {
	v := inputFor(k)
	if v == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, k)
	}
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}
	schema := r.Reflect(v)
	schema.Version = ""
	schema.ID = ""
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s schema: %w", k, err)
	}
	return data, nil
}

// Specs returns the tool declarations sent with every model request.
func Specs() ([]llm.ToolSpec, error) {
	specs := make([]llm.ToolSpec, 0, len(Kinds))
	for _, k := range Kinds {
		schema, err := k.Schema()
		if err != nil {
			return nil, err
		}
		specs = append(specs, llm.ToolSpec{
			Name:        k.String(),
			Description: k.Description(),
			InputSchema: schema,
		})
	}
	return specs, nil
}
