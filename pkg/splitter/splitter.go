// Package splitter cuts text into token-bounded chunks suitable for
// embedding. Cut points prefer sentence boundaries so that chunks remain
// coherent units of meaning.
package splitter

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

type Splitter struct {
	tkm *tiktoken.Tiktoken
}

// NewSplitter creates a Splitter backed by the cl100k_base BPE encoding.
func NewSplitter() (*Splitter, error) {
	tkm, err := tiktoken.GetEncoding(defaultEncoding)
	if err != nil {
		return nil, err
	}
	return &Splitter{tkm: tkm}, nil
}

// Split cuts text into ordered chunks of at most maxTokens tokens each.
// Texts short enough to fit into one chunk are returned as-is, without a
// tokenization round trip. For longer texts, the cut point within the last
// overlap-wide region of a window is moved back to a sentence boundary when
// one exists; otherwise the window is cut hard at maxTokens. Consecutive
// chunks share an overlap-token region of context. The window start always
// advances by at least one token, so Split terminates for any input.
//
// Chunk emission order is significant: it is the only ordering contract
// downstream consumers rely on.
func (s *Splitter) Split(text string, maxTokens, overlap int) []string {
	if maxTokens < 1 {
		maxTokens = 1
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxTokens {
		overlap = maxTokens - 1
	}

	tokens := s.tkm.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return []string{strings.TrimSpace(text)}
	}

	var chunks []string
	start := 0
	for start < len(tokens) {
		end := start + maxTokens
		if end >= len(tokens) {
			chunks = append(chunks, strings.TrimSpace(s.tkm.Decode(tokens[start:])))
			break
		}

		// Look back through the overlap window for a token that renders as
		// a sentence ending, to avoid cutting mid-sentence.
		lookback := end - overlap
		if lookback <= start {
			lookback = start + 1
		}
		for i := end - 1; i >= lookback; i-- {
			if endsSentence(s.tkm.Decode(tokens[i : i+1])) {
				end = i + 1
				break
			}
		}

		chunks = append(chunks, strings.TrimSpace(s.tkm.Decode(tokens[start:end])))

		next := end - overlap
		if next <= start {
			// A cut point earlier than maxTokens-overlap would otherwise
			// stall the window.
			next = start + 1
		}
		start = next
	}

	return chunks
}

// TokenCount returns the number of tokens in text.
func (s *Splitter) TokenCount(text string) int {
	return len(s.tkm.Encode(text, nil, nil))
}

// endsSentence reports whether a decoded token renders as a sentence-ending
// delimiter. Depending on how the BPE merged the surrounding text, the
// punctuation may carry a trailing space or a newline.
func endsSentence(decoded string) bool {
	if strings.Contains(decoded, "\n") {
		return true
	}
	trimmed := strings.TrimRight(decoded, " ")
	for _, delim := range []string{".", "?", "!"} {
		if strings.HasSuffix(trimmed, delim) {
			return true
		}
	}
	return false
}
