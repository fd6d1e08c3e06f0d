package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveImage_SpecScenario5(t *testing.T) {
	urls := DeriveImage("https://psychonautwiki.org/", "File:LSD.svg")
	assert.Equal(t, "https://psychonautwiki.org/w/images/a/a7/File:LSD.svg", urls.Image)
	assert.Equal(t, "https://psychonautwiki.org/w/thumb.php?f=File:LSD.svg&width=100", urls.Thumb)
}

func TestDeriveImage_XPng(t *testing.T) {
	urls := DeriveImage("https://example.com/", "X.png")
	assert.Equal(t, "https://example.com/w/images/a/a5/X.png", urls.Image)
	assert.Equal(t, "https://example.com/w/thumb.php?f=X.png&width=100", urls.Thumb)
}

func TestDeriveImages_Empty(t *testing.T) {
	urls := DeriveImages("https://example.com/", nil)
	assert.NotNil(t, urls)
	assert.Empty(t, urls)
}

func TestDeriveAbstract_TwoParagraphs(t *testing.T) {
	html := `<p>First paragraph of prose. [1]</p><p>Second paragraph here.</p><p>Third, unused.</p>`
	abstract, ok := DeriveAbstract(html)
	assert.True(t, ok)
	assert.Contains(t, abstract, "First paragraph of prose.")
	assert.Contains(t, abstract, "Second paragraph here.")
	assert.NotContains(t, abstract, "Third, unused.")
}

func TestDeriveAbstract_NoParagraphs(t *testing.T) {
	_, ok := DeriveAbstract(`<div>no paragraphs here</div>`)
	assert.False(t, ok)
}

func TestDeriveAbstract_RemovesOnlyFirstReference(t *testing.T) {
	abstract, ok := DeriveAbstract(`<p>Text [1] with [2] two refs.</p>`)
	assert.True(t, ok)
	assert.Contains(t, abstract, "[2]")
	assert.NotContains(t, abstract, "[1]")
}

func TestDeriveAbstract_CollapsesWhitespace(t *testing.T) {
	abstract, ok := DeriveAbstract(`<p>Too    much     space.</p>`)
	assert.True(t, ok)
	assert.Equal(t, "Too much space.", abstract)
}
