package export

import (
	"time"

	"github.com/iksnae/storyline/internal/store"
)

func createTestStory(id string) *store.Story {
	return &store.Story{
		ID:                 id,
		Title:              "Guest checkout",
		Feature:            "checkout",
		Type:               store.StoryType,
		Status:             store.StatusDraft,
		AsA:                "shopper",
		IWant:              "to pay without an account",
		SoThat:             "I can finish quickly",
		AcceptanceCriteria: []string{"Email is required", "Card is validated"},
		CreatedAt:          time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:          time.Date(2025, 1, 3, 3, 4, 5, 0, time.UTC),
	}
}
