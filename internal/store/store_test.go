package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/storyline/internal"
	"github.com/iksnae/storyline/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(testutil.CreateTempDir(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	return s
}

func TestStore_CreateAndGetStory(t *testing.T) {
	s := openTestStore(t)

	path, err := s.CreateStory(&Story{
		ID:                 "US-001",
		Title:              "Guest checkout",
		Feature:            "checkout",
		AsA:                "shopper",
		IWant:              "to pay as guest",
		SoThat:             "I save time",
		AcceptanceCriteria: []string{"AC one"},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root(), "features", "checkout", "stories", "US-001.md"), path)

	got, err := s.GetStory("checkout", "US-001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Guest checkout", got.Title)
	assert.Equal(t, StatusDraft, got.Status)
	assert.Equal(t, StoryType, got.Type)
	assert.True(t, s.now().Equal(got.CreatedAt))
	assert.True(t, s.now().Equal(got.UpdatedAt))
}

func TestStore_CreateStoryDefaultsToBacklog(t *testing.T) {
	s := openTestStore(t)

	path, err := s.CreateStory(&Story{ID: "US-002", Title: "Loose idea"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root(), "backlog", "US-002.md"), path)

	got, err := s.GetStory("", "US-002")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, BacklogFeature, got.Feature)
}

func TestStore_CreateStoryOverwrites(t *testing.T) {
	s := openTestStore(t)

	_, err := s.CreateStory(&Story{ID: "US-1", Title: "First"})
	require.NoError(t, err)
	_, err = s.CreateStory(&Story{ID: "US-1", Title: "Second"})
	require.NoError(t, err)

	got, err := s.GetStory(BacklogFeature, "US-1")
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Title)

	all, err := s.ListStories("")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStore_GetStoryMissing(t *testing.T) {
	s := openTestStore(t)

	got, err := s.GetStory("nope", "US-404")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_InvalidIDs(t *testing.T) {
	s := openTestStore(t)

	for _, id := range []string{"", "  ", "..", "a/b", `a\b`} {
		_, err := s.CreateStory(&Story{ID: id})
		assert.Error(t, err, "id %q", id)
	}
	_, err := s.CreateFeature(&Feature{ID: BacklogFeature})
	assert.Error(t, err)
}

func TestStore_FeatureIDEscapingRoot(t *testing.T) {
	s := openTestStore(t)
	outside := testutil.CreateTempDir(t)
	victim := testutil.WriteStoryDoc(t, outside, "victim", "US-1", map[string]interface{}{"title": "Original"})
	before, err := os.ReadFile(victim)
	require.NoError(t, err)

	rel, err := filepath.Rel(filepath.Join(s.Root(), featuresDir), filepath.Join(outside, featuresDir, "victim"))
	require.NoError(t, err)

	for _, feature := range []string{rel, "..", "../backlog", `..\x`} {
		t.Run(feature, func(t *testing.T) {
			_, err := s.GetStory(feature, "US-1")
			assert.Error(t, err)

			_, err = s.UpdateStory(&Story{ID: "US-1", Feature: feature, Title: "changed"})
			assert.Error(t, err)

			_, err = s.ListStories(feature)
			assert.Error(t, err)

			err = s.DeleteStory(feature, "US-1")
			assert.Error(t, err)
			assert.False(t, errors.Is(err, ErrNotFound))
		})
	}

	after, err := os.ReadFile(victim)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	count, err := s.StoryCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_CorruptDocument(t *testing.T) {
	s := openTestStore(t)
	path := s.StoryPath("f", "US-1")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("no front matter"), 0644))

	_, err := s.GetStory("f", "US-1")
	var parseErr *internal.ParseError
	assert.ErrorAs(t, err, &parseErr)

	stories, err := s.ListStories("f")
	require.NoError(t, err)
	assert.Empty(t, stories)
}

func TestStore_ListStories(t *testing.T) {
	root := testutil.CreateTempDir(t)
	testutil.WriteStoryDoc(t, root, "checkout", "US-2", nil)
	testutil.WriteStoryDoc(t, root, "checkout", "US-1", nil)
	testutil.WriteStoryDoc(t, root, "accounts", "US-3", nil)
	testutil.WriteStoryDoc(t, root, "", "US-4", nil)

	s, err := Open(root)
	require.NoError(t, err)
	defer s.Close()

	all, err := s.ListStories("")
	require.NoError(t, err)
	var keys []string
	for _, st := range all {
		keys = append(keys, st.Feature+"/"+st.ID)
	}
	assert.Equal(t, []string{"accounts/US-3", "backlog/US-4", "checkout/US-1", "checkout/US-2"}, keys)

	checkout, err := s.ListStories("checkout")
	require.NoError(t, err)
	assert.Len(t, checkout, 2)

	missing, err := s.ListStories("ghost")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestStore_SearchStories(t *testing.T) {
	root := testutil.CreateTempDir(t)
	testutil.WriteStoryDoc(t, root, "checkout", "US-1", map[string]interface{}{"title": "Guest checkout"})
	testutil.WriteStoryDoc(t, root, "checkout", "US-2", map[string]interface{}{
		"openQuestions": []string{"Do we support Apple Pay?"},
	})
	testutil.WriteStoryDoc(t, root, "", "US-3", map[string]interface{}{
		"edgeCases": []string{"Card expires mid-session"},
		"tags":      []string{"payments"},
	})

	s, err := Open(root)
	require.NoError(t, err)
	defer s.Close()

	tests := []struct {
		query string
		want  []string
	}{
		{query: "GUEST", want: []string{"US-1"}},
		{query: "apple pay", want: []string{"US-2"}},
		{query: "expires", want: []string{"US-3"}},
		{query: "payments", want: []string{"US-3"}},
		{query: "precondition", want: []string{"US-3", "US-1", "US-2"}},
		{query: "zzz", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.SearchStories(tt.query)
			require.NoError(t, err)
			var ids []string
			for _, st := range got {
				ids = append(ids, st.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	_, err = s.CreateStory(&Story{ID: "US-5", Title: "Refund flow"})
	require.NoError(t, err)
	got, err := s.SearchStories("refund")
	require.NoError(t, err)
	assert.Len(t, got, 1, "writes should be searchable immediately")
}

func TestStore_DeleteStory(t *testing.T) {
	s := openTestStore(t)
	_, err := s.CreateStory(&Story{ID: "US-1", Title: "Delete me", Feature: "f"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteStory("f", "US-1"))
	got, err := s.GetStory("f", "US-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	found, err := s.SearchStories("delete")
	require.NoError(t, err)
	assert.Empty(t, found)

	err = s.DeleteStory("f", "US-1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_Features(t *testing.T) {
	s := openTestStore(t)

	_, err := s.CreateFeature(&Feature{ID: "checkout", Title: "Checkout", SuccessCriteria: []string{"fast"}})
	require.NoError(t, err)
	_, err = s.CreateFeature(&Feature{ID: "accounts", Title: "Accounts"})
	require.NoError(t, err)
	_, err = s.CreateStory(&Story{ID: "US-1", Feature: "checkout"})
	require.NoError(t, err)
	_, err = s.CreateStory(&Story{ID: "US-2", Feature: "checkout"})
	require.NoError(t, err)

	f, err := s.GetFeature("checkout")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, FeatureStatusDraft, f.Status)
	assert.Equal(t, []string{"fast"}, f.SuccessCriteria)

	missing, err := s.GetFeature("ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)

	features, err := s.ListFeatures()
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, "accounts", features[0].ID)

	summaries, err := s.FeatureSummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, 0, summaries[0].StoryCount)
	assert.Equal(t, 2, summaries[1].StoryCount)

	require.NoError(t, s.DeleteFeature("checkout"))
	n, err := s.StoryCount()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.True(t, errors.Is(s.DeleteFeature("checkout"), ErrNotFound))
}

func TestStore_UpdateStory(t *testing.T) {
	s := openTestStore(t)
	_, err := s.CreateStory(&Story{ID: "US-1", Title: "Old", Feature: "f"})
	require.NoError(t, err)

	story, err := s.GetStory("f", "US-1")
	require.NoError(t, err)
	story.Title = "New"
	_, err = s.UpdateStory(story)
	require.NoError(t, err)

	got, err := s.GetStory("f", "US-1")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	found, err := s.SearchStories("new")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}
