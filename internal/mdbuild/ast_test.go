package mdbuild

import (
	"testing"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// headingLevels parses markdown and returns the heading levels in
// document order.
func headingLevels(t *testing.T, markdown string) []int {
	t.Helper()
	doc := parser.New().Parse([]byte(markdown))
	var levels []int
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if heading, ok := node.(*ast.Heading); ok && entering {
			levels = append(levels, heading.Level)
		}
		return ast.GoToNext
	})
	return levels
}

func TestBuild_ParsedHeadingOutlineHasNoSkips(t *testing.T) {
	b := newTestBuilder()
	html := `<h1>Title</h1><p>Intro prose.</p>` +
		`<h4>Deep Section</h4><p>Body.</p>` +
		`<h2>Back Up</h2><p>More body.</p>` +
		`<h6>Very Deep</h6><p>Tail.</p>`

	result, err := b.Build(html, buildPageURL, nil, "Title")
	require.Nil(t, err)

	levels := headingLevels(t, result.Plain())
	require.NotEmpty(t, levels)
	assert.Equal(t, 1, levels[0])
	for i := 1; i < len(levels); i++ {
		assert.LessOrEqual(t, levels[i], levels[i-1]+1)
		assert.LessOrEqual(t, levels[i], 6)
	}
}

func TestBuild_HoistedH1DoesNotReintroduceSkips(t *testing.T) {
	b := newTestBuilder()
	html := `<h3>Deep First Section</h3><p>Body.</p><h4>Deeper</h4><p>Tail.</p>`

	result, err := b.Build(html, buildPageURL, nil, "Page Title")
	require.Nil(t, err)

	levels := headingLevels(t, result.Plain())
	require.NotEmpty(t, levels)
	assert.Equal(t, 1, levels[0])
	for i := 1; i < len(levels); i++ {
		assert.LessOrEqual(t, levels[i], levels[i-1]+1)
	}
}

func TestBuild_ParsedOutlineHasSingleH1(t *testing.T) {
	b := newTestBuilder()
	html := `<p>Preamble.</p><h1>Real Heading</h1><p>Body text.</p><h2>Section</h2><p>More.</p>`

	result, err := b.Build(html, buildPageURL, nil, "Real Heading")
	require.Nil(t, err)

	levels := headingLevels(t, result.Plain())
	h1Count := 0
	for _, level := range levels {
		if level == 1 {
			h1Count++
		}
	}
	assert.Equal(t, 1, h1Count)
}
