package counter

import (
	"log/slog"
	"strings"
)

// WordCounter counts the whitespace-delimited words left after markup
// filtering.
type WordCounter struct {
	*MarkupFilter
}

// NewWordCounter creates a WordCounter with the default filter: base markup
// patterns ignored, paragraph ends and em/en dashes as separators.
func NewWordCounter() *WordCounter {
	return &WordCounter{MarkupFilter: NewMarkupFilter()}
}

// Count returns the number of words in text.
// strings.Fields drops the empty fragments produced by leading, trailing or
// repeated whitespace.
func (wc *WordCounter) Count(text string) int {
	if text == "" {
		return 0
	}

	words := strings.Fields(wc.Clean(text))
	wordCount := len(words)

	slog.Debug("Word count calculated", "textLength", len(text), "wordCount", wordCount)
	return wordCount
}

// Name returns the name of this counting method for logging and debugging.
func (wc *WordCounter) Name() string {
	return "words"
}
