package counter

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

// CharCounter counts the Unicode characters (runes, not bytes) left after
// markup filtering. Whitespace runs count as a single character and leading
// or trailing whitespace is not counted.
type CharCounter struct {
	*MarkupFilter
}

// NewCharCounter creates a CharCounter with the default filter.
func NewCharCounter() *CharCounter {
	return &CharCounter{MarkupFilter: NewMarkupFilter()}
}

// Count returns the number of characters in text.
func (cc *CharCounter) Count(text string) int {
	if text == "" {
		return 0
	}

	charCount := utf8.RuneCountInString(collapseSpace(cc.Clean(text)))

	slog.Debug("Character count calculated", "textLength", len(text), "charCount", charCount)
	return charCount
}

// Name returns the name of this counting method for logging and debugging.
func (cc *CharCounter) Name() string {
	return "characters"
}

// collapseSpace joins the words of s with single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
