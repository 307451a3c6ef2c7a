package store

import (
	"testing"

	"github.com/iksnae/storyline/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Search(t *testing.T) {
	ix := &Index{db: testutil.CreateInMemoryDB(t,
		[3]string{"checkout", "US-2", "pay with card"},
		[3]string{"checkout", "US-1", "guest checkout\nemail receipt"},
		[3]string{"backlog", "US-9", "dark mode"},
	)}

	tests := []struct {
		name  string
		query string
		want  []Key
	}{
		{name: "single match", query: "receipt", want: []Key{{Feature: "checkout", ID: "US-1"}}},
		{name: "case insensitive", query: "DARK", want: []Key{{Feature: "backlog", ID: "US-9"}}},
		{name: "ordered", query: "c", want: []Key{{Feature: "checkout", ID: "US-1"}, {Feature: "checkout", ID: "US-2"}}},
		{name: "no match", query: "refund", want: nil},
		{name: "blank query", query: "   ", want: nil},
		{name: "like wildcards are literal", query: "%", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ix.Search(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndex_UpsertRemove(t *testing.T) {
	ix, err := OpenIndex()
	require.NoError(t, err)
	defer ix.Close()

	require.NoError(t, ix.Upsert(&Story{ID: "US-1", Title: "Alpha"}))
	require.NoError(t, ix.Upsert(&Story{ID: "US-1", Title: "Beta"}))
	require.NoError(t, ix.Upsert(&Story{ID: "US-2", Feature: "f", Title: "Beta two"}))

	n, err := ix.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, err := ix.Search("alpha")
	require.NoError(t, err)
	assert.Empty(t, keys, "upsert should replace the old haystack")

	require.NoError(t, ix.Remove("", "US-1"))
	require.NoError(t, ix.RemoveFeature("f"))
	n, err = ix.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
