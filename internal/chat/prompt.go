package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/iksnae/storyline/internal/store"
)

// SystemPrompt is sent with every model request.
const SystemPrompt = `You are Storyline, an assistant that helps a product owner write and refine user stories.

Stories follow the format "As a <role>, I want <goal>, so that <benefit>" and carry testable acceptance criteria. Related stories are grouped under features; stories without a feature live in the backlog.

How to work:
- Ask clarifying questions with ask_user_question instead of guessing. Offer concrete options.
- Before saving a new story, show it with present_draft. Only call create_story after the user approved the draft. If they asked for changes, revise and present again.
- Use ids like US-001 for stories and short kebab-case ids for features. Check existing stories with list_stories or search_stories to avoid duplicate ids; creating a story with an existing id replaces it.
- Keep acceptance criteria specific and testable, preferably Given/When/Then. Aim for no more than seven per story; suggest splitting larger stories.
- Record edge cases and open questions when they come up.
- Use analyze_story_quality for a quick INVEST check, then add your own judgement.

Answer in concise markdown.`

// ProjectSource is what BuildProjectContext reads from the store.
type ProjectSource interface {
	FeatureSummaries(ctx context.Context) ([]store.FeatureSummary, error)
	ListStories(featureID string) ([]*store.Story, error)
}

// BuildProjectContext summarises the features and story counts of the
// store, followed by extra, for injection with AddContext.
func BuildProjectContext(ctx context.Context, src ProjectSource, extra string) (string, error) {
	summaries, err := src.FeatureSummaries(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to summarise features: %w", err)
	}
	backlog, err := src.ListStories(store.BacklogFeature)
	if err != nil {
		return "", fmt.Errorf("failed to list backlog: %w", err)
	}

	var b strings.Builder
	b.WriteString("Project context for this session.\n\n")
	if len(summaries) == 0 {
		b.WriteString("There are no features yet.\n")
	} else {
		b.WriteString("Features:\n")
		for _, s := range summaries {
			fmt.Fprintf(&b, "- %s: %s [%s] (%d stories)\n", s.Feature.ID, s.Feature.Title, s.Feature.Status, s.StoryCount)
		}
	}
	fmt.Fprintf(&b, "\nBacklog stories: %d\n", len(backlog))

	if extra = strings.TrimSpace(extra); extra != "" {
		b.WriteString("\nAdditional context from the user:\n\n")
		b.WriteString(extra)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// ReviewPrompt asks the model for a qualitative review of a stored story.
func ReviewPrompt(s *store.Story) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please review story %s in %s against the INVEST criteria and suggest concrete improvements.\n\n",
		s.ID, store.FeatureKey(s.Feature))
	fmt.Fprintf(&b, "Title: %s\n", s.Title)
	fmt.Fprintf(&b, "As a %s, I want %s, so that %s.\n", s.AsA, s.IWant, s.SoThat)
	writeSection(&b, "Acceptance criteria", s.AcceptanceCriteria)
	writeSection(&b, "Edge cases", s.EdgeCases)
	writeSection(&b, "Open questions", s.OpenQuestions)
	writeSection(&b, "Dependencies", s.Dependencies)
	return b.String()
}

func writeSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}
