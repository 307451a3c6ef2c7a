package ui

import (
	"fmt"
	"strings"

	"github.com/iksnae/storyline/internal/store"
)

// RenderStories formats stories grouped by feature.
func RenderStories(stories []*store.Story) string {
	if len(stories) == 0 {
		return dimStyle.Render("No stories found.") + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", titleStyle.Render(fmt.Sprintf("Stories (%d)", len(stories))))
	current := ""
	for _, s := range stories {
		feature := store.FeatureKey(s.Feature)
		if feature != current {
			current = feature
			fmt.Fprintf(&b, "\n%s\n", labelStyle.Render(feature))
		}
		line := fmt.Sprintf("  %s  %s %s", s.ID, s.Title, statusBadge(s.Status))
		if s.Priority != "" {
			line += dimStyle.Render(" " + s.Priority)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// RenderFeatures formats features with their story counts.
func RenderFeatures(summaries []store.FeatureSummary) string {
	if len(summaries) == 0 {
		return dimStyle.Render("No features found.") + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", titleStyle.Render(fmt.Sprintf("Features (%d)", len(summaries))))
	for _, s := range summaries {
		noun := "stories"
		if s.StoryCount == 1 {
			noun = "story"
		}
		fmt.Fprintf(&b, "  %s  %s %s %s\n",
			labelStyle.Render(s.Feature.ID),
			s.Feature.Title,
			statusBadge(s.Feature.Status),
			dimStyle.Render(fmt.Sprintf("(%d %s)", s.StoryCount, noun)),
		)
		if s.Feature.Description != "" {
			fmt.Fprintf(&b, "      %s\n", dimStyle.Render(s.Feature.Description))
		}
	}
	return b.String()
}

// RenderDraft formats a story draft inside a box.
func RenderDraft(title string, fields []Field) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Draft: "+title) + "\n")
	for _, f := range fields {
		if f.Value == "" && len(f.Items) == 0 {
			continue
		}
		if len(f.Items) > 0 {
			fmt.Fprintf(&b, "\n%s\n", labelStyle.Render(f.Label+":"))
			for _, item := range f.Items {
				fmt.Fprintf(&b, "  • %s\n", item)
			}
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(f.Label+":"), f.Value)
	}
	return draftStyle.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

// RenderStory formats a single story in full.
func RenderStory(s *store.Story) string {
	fields := []Field{
		{Label: "Feature", Value: store.FeatureKey(s.Feature)},
		{Label: "Status", Value: s.Status},
	}
	if s.Priority != "" {
		fields = append(fields, Field{Label: "Priority", Value: s.Priority})
	}
	if s.Estimate > 0 {
		fields = append(fields, Field{Label: "Estimate", Value: fmt.Sprintf("%d", s.Estimate)})
	}
	fields = append(fields,
		Field{Label: "As a", Value: s.AsA},
		Field{Label: "I want", Value: s.IWant},
		Field{Label: "So that", Value: s.SoThat},
		Field{Label: "Acceptance Criteria", Items: s.AcceptanceCriteria},
		Field{Label: "Edge Cases", Items: s.EdgeCases},
		Field{Label: "Open Questions", Items: s.OpenQuestions},
		Field{Label: "Dependencies", Items: s.Dependencies},
	)
	if len(s.Tags) > 0 {
		fields = append(fields, Field{Label: "Tags", Value: strings.Join(s.Tags, ", ")})
	}
	return RenderDraft(s.ID+" "+s.Title, fields)
}
