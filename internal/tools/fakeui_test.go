package tools

import (
	"context"
	"testing"
	"time"

	"github.com/iksnae/storyline/internal/store"
	"github.com/iksnae/storyline/internal/ui"
	"github.com/iksnae/storyline/testutil"
	"github.com/stretchr/testify/require"
)

// fakeUI answers prompts from queues and records what was shown.
type fakeUI struct {
	single []string
	multi  [][]string
	texts  []string
	yesNo  []bool
	err    error

	prompts       []string
	choices       [][]ui.Choice
	drafts        []string
	draftFields   [][]ui.Field
	shownStories  [][]*store.Story
	shownFeatures [][]store.FeatureSummary
}

func (f *fakeUI) AskSingleChoice(_ context.Context, question string, choices []ui.Choice) (string, error) {
	f.prompts = append(f.prompts, question)
	f.choices = append(f.choices, choices)
	if f.err != nil {
		return "", f.err
	}
	v := f.single[0]
	f.single = f.single[1:]
	return v, nil
}

func (f *fakeUI) AskMultiChoice(_ context.Context, question string, choices []ui.Choice) ([]string, error) {
	f.prompts = append(f.prompts, question)
	f.choices = append(f.choices, choices)
	if f.err != nil {
		return nil, f.err
	}
	v := f.multi[0]
	f.multi = f.multi[1:]
	return v, nil
}

func (f *fakeUI) AskText(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	v := f.texts[0]
	f.texts = f.texts[1:]
	return v, nil
}

func (f *fakeUI) AskYesNo(_ context.Context, prompt string, _ bool) (bool, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return false, f.err
	}
	v := f.yesNo[0]
	f.yesNo = f.yesNo[1:]
	return v, nil
}

func (f *fakeUI) ShowDraft(title string, fields []ui.Field) {
	f.drafts = append(f.drafts, title)
	f.draftFields = append(f.draftFields, fields)
}

func (f *fakeUI) ShowStories(stories []*store.Story) {
	f.shownStories = append(f.shownStories, stories)
}

func (f *fakeUI) ShowFeatures(summaries []store.FeatureSummary) {
	f.shownFeatures = append(f.shownFeatures, summaries)
}

var fixedNow = time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)

// newTestExecutor opens a store on a temp dir seeded by seed.
func newTestExecutor(t *testing.T, seed func(root string)) (*Executor, *store.Store, *fakeUI) {
	t.Helper()
	root := testutil.CreateTempDir(t)
	if seed != nil {
		seed(root)
	}
	s, err := store.Open(root)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	fui := &fakeUI{}
	e := NewExecutor(s, fui)
	e.now = func() time.Time { return fixedNow }
	return e, s, fui
}
