package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iksnae/storyline/internal/store"
	"github.com/iksnae/storyline/internal/ui"
)

// otherValue is the sentinel value of the free-text option.
const otherValue = "__other__"

const otherLabel = "Other (type your own answer)"

// fixedFields are story fields update_story never overwrites.
var fixedFields = map[string]bool{"id": true, "feature": true, "createdAt": true, "updatedAt": true}

// enumValue folds an enum the model sent in another case or with padding.
func enumValue(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// storySummary is the compact story shape returned by list and search tools.
type storySummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Feature  string `json:"feature"`
	Status   string `json:"status"`
	Priority string `json:"priority,omitempty"`
}

func summarize(stories []*store.Story) []storySummary {
	out := make([]storySummary, 0, len(stories))
	for _, s := range stories {
		out = append(out, storySummary{
			ID:       s.ID,
			Title:    s.Title,
			Feature:  store.FeatureKey(s.Feature),
			Status:   s.Status,
			Priority: s.Priority,
		})
	}
	return out
}

func (e *Executor) createStory(in *CreateStoryInput) (Result, error) {
	story := &store.Story{
		ID:                 in.ID,
		Title:              in.Title,
		Feature:            in.Feature,
		Type:               store.StoryType,
		Status:             store.StatusDraft,
		Priority:           enumValue(in.Priority),
		AsA:                in.AsA,
		IWant:              in.IWant,
		SoThat:             in.SoThat,
		AcceptanceCriteria: in.AcceptanceCriteria,
		Dependencies:       in.Dependencies,
		EdgeCases:          in.EdgeCases,
		OpenQuestions:      in.OpenQuestions,
		Tags:               in.Tags,
		Estimate:           in.Estimate,
	}
	path, err := e.store.CreateStory(story)
	if err != nil {
		return Fail(fmt.Sprintf("failed to create story: %v", err)), nil
	}
	data := map[string]any{
		"id":      story.ID,
		"feature": story.Feature,
		"path":    path,
		"message": fmt.Sprintf("Created story %s in %s", story.ID, story.Feature),
	}
	if story.Feature != store.BacklogFeature {
		if feature, err := e.store.GetFeature(story.Feature); err == nil && feature == nil {
			data["warning"] = fmt.Sprintf("feature %s does not exist yet; create it with create_feature", story.Feature)
		}
	}
	return Ok(data), nil
}

func (e *Executor) updateStory(in *UpdateStoryInput) (Result, error) {
	existing, err := e.store.GetStory(in.Feature, in.ID)
	if err != nil {
		return Fail(fmt.Sprintf("failed to load story: %v", err)), nil
	}
	if existing == nil {
		return Fail(fmt.Sprintf("Story not found: %s/%s", store.FeatureKey(in.Feature), in.ID)), nil
	}

	merged, err := mergeStory(existing, in.Updates)
	if err != nil {
		return Fail(fmt.Sprintf("invalid updates: %v", err)), nil
	}
	merged.ID = existing.ID
	merged.Feature = existing.Feature
	merged.CreatedAt = existing.CreatedAt
	merged.UpdatedAt = e.now()
	merged.Status = enumValue(merged.Status)
	merged.Priority = enumValue(merged.Priority)

	path, err := e.store.UpdateStory(merged)
	if err != nil {
		return Fail(fmt.Sprintf("failed to update story: %v", err)), nil
	}

	updated := make([]string, 0, len(in.Updates))
	var ignored []string
	for k := range in.Updates {
		if fixedFields[k] {
			ignored = append(ignored, k)
		} else {
			updated = append(updated, k)
		}
	}
	sort.Strings(updated)
	data := map[string]any{
		"id":      merged.ID,
		"feature": merged.Feature,
		"path":    path,
		"updated": updated,
	}
	if len(ignored) > 0 {
		sort.Strings(ignored)
		data["ignored"] = ignored
	}
	return Ok(data), nil
}

// mergeStory overlays updates on the top-level fields of a story.
func mergeStory(s *store.Story, updates map[string]any) (*store.Story, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for k, v := range updates {
		fields[k] = v
	}
	data, err = json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var merged store.Story
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

func (e *Executor) listStories(in *ListStoriesInput) (Result, error) {
	stories, err := e.store.ListStories(in.Feature)
	if err != nil {
		return Fail(fmt.Sprintf("failed to list stories: %v", err)), nil
	}
	if status := enumValue(in.Status); status != "" {
		filtered := stories[:0]
		for _, s := range stories {
			if enumValue(s.Status) == status {
				filtered = append(filtered, s)
			}
		}
		stories = filtered
	}

	e.ui.ShowStories(stories)
	return Ok(map[string]any{
		"count":   len(stories),
		"stories": summarize(stories),
	}), nil
}

func (e *Executor) createFeature(in *CreateFeatureInput) (Result, error) {
	feature := &store.Feature{
		ID:              in.ID,
		Title:           in.Title,
		Description:     in.Description,
		Status:          store.FeatureStatusDraft,
		Priority:        enumValue(in.Priority),
		SuccessCriteria: in.SuccessCriteria,
	}
	path, err := e.store.CreateFeature(feature)
	if err != nil {
		return Fail(fmt.Sprintf("failed to create feature: %v", err)), nil
	}
	return Ok(map[string]any{
		"id":      feature.ID,
		"path":    path,
		"message": fmt.Sprintf("Created feature %s", feature.ID),
	}), nil
}

func (e *Executor) listFeatures(ctx context.Context) (Result, error) {
	summaries, err := e.store.FeatureSummaries(ctx)
	if err != nil {
		return Fail(fmt.Sprintf("failed to list features: %v", err)), nil
	}

	e.ui.ShowFeatures(summaries)

	type featureSummary struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		Status     string `json:"status"`
		Priority   string `json:"priority,omitempty"`
		StoryCount int    `json:"storyCount"`
	}
	features := make([]featureSummary, 0, len(summaries))
	for _, s := range summaries {
		features = append(features, featureSummary{
			ID:         s.Feature.ID,
			Title:      s.Feature.Title,
			Status:     s.Feature.Status,
			Priority:   s.Feature.Priority,
			StoryCount: s.StoryCount,
		})
	}
	return Ok(map[string]any{
		"count":    len(features),
		"features": features,
	}), nil
}

func (e *Executor) searchStories(in *SearchStoriesInput) (Result, error) {
	stories, err := e.store.SearchStories(in.Query)
	if err != nil {
		return Fail(fmt.Sprintf("search failed: %v", err)), nil
	}
	return Ok(map[string]any{
		"query":   in.Query,
		"count":   len(stories),
		"stories": summarize(stories),
	}), nil
}

func (e *Executor) askUserQuestion(ctx context.Context, in *AskUserQuestionInput) (Result, error) {
	choices := make([]ui.Choice, 0, len(in.Options)+1)
	for _, o := range in.Options {
		choices = append(choices, ui.Choice{Label: o.Label, Value: o.Value, Description: o.Description})
	}
	if in.allowCustom() {
		choices = append(choices, ui.Choice{Label: otherLabel, Value: otherValue})
	}

	var answer any
	if in.MultiSelect {
		values, err := e.ui.AskMultiChoice(ctx, in.Question, choices)
		if err != nil {
			return promptFailure(err)
		}
		for i, v := range values {
			if v != otherValue {
				continue
			}
			text, err := e.ui.AskText(ctx, "Please type your answer:")
			if err != nil {
				return promptFailure(err)
			}
			values[i] = text
		}
		answer = values
	} else {
		value, err := e.ui.AskSingleChoice(ctx, in.Question, choices)
		if err != nil {
			return promptFailure(err)
		}
		if value == otherValue {
			if value, err = e.ui.AskText(ctx, "Please type your answer:"); err != nil {
				return promptFailure(err)
			}
		}
		answer = value
	}

	return Result{
		Success:           true,
		Data:              map[string]any{"question": in.Question, "selected": answer},
		RequiresUserInput: true,
		UserInput:         answer,
	}, nil
}

func (e *Executor) presentDraft(ctx context.Context, in *PresentDraftInput) (Result, error) {
	fields := []ui.Field{
		{Label: "As a", Value: in.AsA},
		{Label: "I want", Value: in.IWant},
		{Label: "So that", Value: in.SoThat},
		{Label: "Acceptance Criteria", Items: in.AcceptanceCriteria},
	}
	if in.Priority != "" {
		fields = append(fields, ui.Field{Label: "Priority", Value: in.Priority})
	}
	if len(in.EdgeCases) > 0 {
		fields = append(fields, ui.Field{Label: "Edge Cases", Items: in.EdgeCases})
	}
	if len(in.OpenQuestions) > 0 {
		fields = append(fields, ui.Field{Label: "Open Questions", Items: in.OpenQuestions})
	}
	e.ui.ShowDraft(in.Title, fields)

	approved, err := e.ui.AskYesNo(ctx, "Does this draft look good?", true)
	if err != nil {
		return promptFailure(err)
	}
	if approved {
		return Ok(map[string]any{"approved": true}), nil
	}

	feedback, err := e.ui.AskText(ctx, "What would you like changed?")
	if err != nil {
		return promptFailure(err)
	}
	feedback = strings.TrimSpace(feedback)
	return Result{
		Success:           true,
		Data:              map[string]any{"approved": false, "feedback": feedback},
		RequiresUserInput: true,
		UserInput:         feedback,
	}, nil
}

func (e *Executor) analyzeStoryQuality(in *AnalyzeStoryQualityInput) (Result, error) {
	story, err := e.store.GetStory(in.FeatureID, in.StoryID)
	if err != nil {
		return Fail(fmt.Sprintf("failed to load story: %v", err)), nil
	}
	if story == nil {
		return Fail(fmt.Sprintf("Story not found: %s/%s", store.FeatureKey(in.FeatureID), in.StoryID)), nil
	}
	return Ok(AnalyzeINVEST(story)), nil
}

// promptFailure propagates cancellation and reports any other prompt error
// as a failed result.
func promptFailure(err error) (Result, error) {
	if errors.Is(err, ui.ErrCancelled) {
		return Result{}, err
	}
	return Fail(fmt.Sprintf("prompt failed: %v", err)), nil
}
