package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("# Week 3\n\nLearned **tones**.")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Week 3</h1>")
	assert.Contains(t, out, "<strong>tones</strong>")
}

func TestRender_DropsRawHTML(t *testing.T) {
	out, err := NewRenderer().Render("<script>alert(1)</script>\n\nok")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<p>ok</p>")
}

func TestRender_GFMTable(t *testing.T) {
	out, err := NewRenderer().Render("| a | b |\n|---|---|\n| 1 | 2 |")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
}
