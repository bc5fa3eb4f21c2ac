package segment

import (
	"strings"
	"unicode"
)

// DefaultSize is the target segment length in runes.
const DefaultSize = 2000

// Count returns how many segments of roughly size runes text needs.
// It is at least 1.
func Count(text string, size int) int {
	if size <= 0 {
		size = DefaultSize
	}
	n := len([]rune(strings.TrimSpace(text)))
	if n == 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Split partitions text into n contiguous segments of similar length.
// Boundaries are moved forward to the next whitespace when one is close,
// so words are not cut in half. Segments are trimmed. When the text has
// fewer runes than n, fewer segments are returned.
func Split(text string, n int) []string {
	runes := []rune(strings.TrimSpace(text))
	if n <= 1 || len(runes) == 0 {
		return []string{string(runes)}
	}
	if n > len(runes) {
		n = len(runes)
	}

	size := len(runes) / n
	slack := size / 5

	segments := make([]string, 0, n)
	start := 0
	for i := 0; i < n; i++ {
		if start >= len(runes) {
			break
		}
		end := len(runes)
		if i < n-1 {
			end = start + size
			for j := end; j < len(runes) && j < end+slack; j++ {
				if unicode.IsSpace(runes[j]) {
					end = j
					break
				}
			}
		}
		seg := strings.TrimSpace(string(runes[start:end]))
		if seg != "" {
			segments = append(segments, seg)
		}
		start = end
	}
	return segments
}

// Excerpt truncates text to at most limit runes. When a cut is needed it
// backs up to the last whitespace if that keeps most of the text.
func Excerpt(text string, limit int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	cut := limit
	for j := limit; j > limit*4/5; j-- {
		if unicode.IsSpace(runes[j]) {
			cut = j
			break
		}
	}
	return strings.TrimSpace(string(runes[:cut]))
}
