package ui

import (
	"testing"

	"github.com/iksnae/storyline/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestRenderStories(t *testing.T) {
	out := RenderStories([]*store.Story{
		{ID: "US-3", Title: "Dark mode", Feature: "backlog", Status: "draft"},
		{ID: "US-1", Title: "Guest checkout", Feature: "checkout", Status: "ready", Priority: "high"},
		{ID: "US-2", Title: "Saved cards", Feature: "checkout", Status: "done"},
	})

	assert.Contains(t, out, "Stories (3)")
	for _, want := range []string{"US-1", "Guest checkout", "US-2", "Saved cards", "US-3", "Dark mode", "checkout", "backlog", "[ready]", "high"} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 1, countOf(out, "checkout\n"), "feature heading printed once")

	assert.Contains(t, RenderStories(nil), "No stories found.")
}

func TestRenderFeatures(t *testing.T) {
	out := RenderFeatures([]store.FeatureSummary{
		{Feature: &store.Feature{ID: "accounts", Title: "Accounts", Status: "draft"}, StoryCount: 1},
		{Feature: &store.Feature{ID: "checkout", Title: "Checkout", Status: "active", Description: "Pay for things"}, StoryCount: 3},
	})
	assert.Contains(t, out, "Features (2)")
	assert.Contains(t, out, "(1 story)")
	assert.Contains(t, out, "(3 stories)")
	assert.Contains(t, out, "Pay for things")

	assert.Contains(t, RenderFeatures(nil), "No features found.")
}

func TestRenderDraft(t *testing.T) {
	out := RenderDraft("Guest checkout", []Field{
		{Label: "As a", Value: "shopper"},
		{Label: "Acceptance Criteria", Items: []string{"Email required", "Card validated"}},
		{Label: "Priority"},
	})
	assert.Contains(t, out, "Draft: Guest checkout")
	assert.Contains(t, out, "As a:")
	assert.Contains(t, out, "shopper")
	assert.Contains(t, out, "• Email required")
	assert.Contains(t, out, "• Card validated")
	assert.NotContains(t, out, "Priority")
}

func TestRenderStory(t *testing.T) {
	out := RenderStory(&store.Story{
		ID:                 "US-1",
		Title:              "Guest checkout",
		Status:             "draft",
		AsA:                "shopper",
		AcceptanceCriteria: []string{"Email required"},
		Tags:               []string{"mvp", "payments"},
		Estimate:           3,
	})
	assert.Contains(t, out, "US-1 Guest checkout")
	assert.Contains(t, out, "backlog")
	assert.Contains(t, out, "mvp, payments")
	assert.Contains(t, out, "Estimate:")
	assert.NotContains(t, out, "Edge Cases")
}

func countOf(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
