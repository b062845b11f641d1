package corpus

import (
	"strings"
	"unicode"
)

// Splitter cuts record text into overlapping rune windows sized for
// embedding. Window edges snap to whitespace so chunks neither begin nor
// end mid-word.
type Splitter struct {
	size    int // maximum chunk length in runes
	overlap int // runes shared between consecutive chunks
}

// NewSplitter creates a splitter. Out-of-range arguments fall back to the
// artifact defaults (500-rune chunks, 100-rune overlap).
func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = 500
	}
	if overlap < 0 || overlap >= size {
		overlap = min(100, size/5)
	}
	return &Splitter{size: size, overlap: overlap}
}

// Split returns the chunks of text. Empty or whitespace-only text yields
// no chunks; text within the window size yields a single chunk.
func (s *Splitter) Split(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	runes := []rune(trimmed)
	if len(runes) <= s.size {
		return []string{trimmed}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + s.size
		if end >= len(runes) {
			if chunk := strings.TrimSpace(string(runes[start:])); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		// Back up to the nearest whitespace; give up after a quarter window
		// and hard-split (no whitespace to snap to).
		cut := end
		limit := start + s.size*3/4
		for cut > limit && !unicode.IsSpace(runes[cut-1]) {
			cut--
		}
		if cut == limit {
			cut = end
		}

		if chunk := strings.TrimSpace(string(runes[start:cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - s.overlap
		if next <= start {
			next = start + (s.size - s.overlap)
		}
		if cut < end {
			// Snap the next window to a word start inside the overlap region.
			for next < len(runes) && next > 0 && !unicode.IsSpace(runes[next-1]) {
				next++
			}
			for next < len(runes) && unicode.IsSpace(runes[next]) {
				next++
			}
		}
		start = next
	}
	return chunks
}
