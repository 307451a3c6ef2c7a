package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeDocument(t *testing.T) {
	story := &Story{
		ID:                 "US-001",
		Title:              "Guest checkout",
		Feature:            "checkout",
		AsA:                "first-time shopper",
		IWant:              "to pay without an account",
		SoThat:             "I can finish quickly",
		AcceptanceCriteria: []string{"Email is required", "Card is validated"},
	}

	data, err := encodeDocument(story, renderStoryBody(story))
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "---\n"))
	assert.Contains(t, text, "# Guest checkout")
	assert.Contains(t, text, "- [ ] Email is required")

	var decoded Story
	require.NoError(t, decodeFrontMatter(data, &decoded))
	assert.Equal(t, story.ID, decoded.ID)
	assert.Equal(t, story.AcceptanceCriteria, decoded.AcceptanceCriteria)
	assert.Equal(t, story.IWant, decoded.IWant)
}

func TestDecodeFrontMatter_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "no front matter", data: "# Title\n"},
		{name: "unterminated", data: "---\nid: x\n"},
		{name: "bad yaml", data: "---\nid: [x\n---\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Story
			assert.Error(t, decodeFrontMatter([]byte(tt.data), &s))
		})
	}
}

func TestDecodeFrontMatter_CRLF(t *testing.T) {
	var s Story
	require.NoError(t, decodeFrontMatter([]byte("---\r\nid: US-9\r\ntitle: T\r\n---\r\n\r\nbody"), &s))
	assert.Equal(t, "US-9", s.ID)
	assert.Equal(t, "T", s.Title)
}

func TestRenderFeatureBody(t *testing.T) {
	body := renderFeatureBody(&Feature{
		Title:           "Checkout",
		Description:     "Everything after the cart",
		SuccessCriteria: []string{"Conversion +5%"},
	})
	assert.Contains(t, body, "# Checkout")
	assert.Contains(t, body, "Everything after the cart")
	assert.Contains(t, body, "## Success Criteria")
	assert.Contains(t, body, "- Conversion +5%")
}
