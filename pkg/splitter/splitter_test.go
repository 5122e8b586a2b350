package splitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSplitter(t *testing.T) *Splitter {
	t.Helper()
	s, err := NewSplitter()
	require.NoError(t, err)
	return s
}

func TestSplitShortTextReturnsSingleChunk(t *testing.T) {
	s := newTestSplitter(t)

	text := "A quiet film about a lighthouse keeper."
	chunks := s.Split(text, 512, 50)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitTrimsWhitespace(t *testing.T) {
	s := newTestSplitter(t)

	chunks := s.Split("  padded overview text.  ", 512, 50)

	require.Len(t, chunks, 1)
	assert.Equal(t, "padded overview text.", chunks[0])
}

func TestSplitLongTextHonorsTokenLimit(t *testing.T) {
	s := newTestSplitter(t)

	text := strings.Repeat("The crew drifts beyond the outer rim. ", 80)
	maxTokens := 64
	chunks := s.Split(text, maxTokens, 16)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, s.TokenCount(c), maxTokens)
		assert.NotEmpty(t, c)
		assert.Equal(t, strings.TrimSpace(c), c)
	}
}

func TestSplitPrefersSentenceBoundaries(t *testing.T) {
	s := newTestSplitter(t)

	text := strings.Repeat("A heist goes wrong in the old quarter.\n", 60)
	chunks := s.Split(text, 50, 20)

	require.Greater(t, len(chunks), 1)
	// Every chunk except possibly the last should end on a sentence, since
	// the text is nothing but short sentences and the lookback window is
	// wide enough to find one.
	for _, c := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(c, "."), "chunk should end at a sentence boundary: %q", c)
	}
}

func TestSplitReconstructsContent(t *testing.T) {
	s := newTestSplitter(t)

	text := strings.Repeat("An archivist uncovers a forgotten reel. ", 70)
	chunks := s.Split(text, 48, 0)

	// With zero overlap, concatenating the chunks restores the original
	// content apart from whitespace at the cut boundaries.
	stripped := func(s string) string { return strings.Join(strings.Fields(s), "") }
	assert.Equal(t, stripped(text), stripped(strings.Join(chunks, " ")))
}

func TestSplitAlwaysMakesForwardProgress(t *testing.T) {
	s := newTestSplitter(t)

	// Overlap nearly as wide as the window plus sentence breaks early in
	// each window is the pathological case for window advancement. The
	// chunk count being bounded by the token count proves each iteration
	// advanced by at least one token.
	text := strings.Repeat("No. ", 200)
	maxTokens := 10
	chunks := s.Split(text, maxTokens, 9)

	assert.NotEmpty(t, chunks)
	assert.LessOrEqual(t, len(chunks), s.TokenCount(text)+1)
}

func TestSplitClampsInvalidOverlap(t *testing.T) {
	s := newTestSplitter(t)

	text := strings.Repeat("The storm closes in on the valley. ", 40)
	chunks := s.Split(text, 20, 20)

	assert.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, s.TokenCount(c), 20)
	}
}
