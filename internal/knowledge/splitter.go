// Package knowledge maintains the brand reference corpus that grounds
// generation requests. Rebuilding it is an out-of-band administrative
// operation, not part of the request path.
package knowledge

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// SplitText chunks text into pieces of at most chunkSize characters with
// the given overlap between consecutive chunks, splitting recursively on
// paragraph breaks, newlines, and spaces before falling back to characters.
func SplitText(text string, chunkSize, overlap int) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(overlap),
	)
	chunks, err := splitter.SplitText(text)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out, nil
}
