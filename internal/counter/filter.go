package counter

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
)

// MarkupFilter strips markup and configured characters from text before it
// is counted. It holds two matchers: separators are replaced by a space,
// ignored content is deleted.
//
// Matchers are never modified in place. Reconfiguration compiles a new one
// and swaps it in, so a Clean that already started keeps using the matcher
// it read.
type MarkupFilter struct {
	mu        sync.RWMutex // protects ignore and separator
	ignore    *regexp.Regexp
	separator *regexp.Regexp
}

// NewMarkupFilter returns a filter that ignores the base markup patterns and
// separates words on paragraph ends and the default dashes.
func NewMarkupFilter() *MarkupFilter {
	f := &MarkupFilter{}
	// base patterns are constant, so these cannot fail
	if err := f.SetIgnoreRegex([]string{}); err != nil {
		panic(err)
	}
	if err := f.SetSeparatorRegex(DefaultSeparators()); err != nil {
		panic(err)
	}
	return f
}

// SetIgnoreRegex rebuilds the ignore matcher from the base markup patterns
// plus one literal alternative per entry of chars. Empty entries are
// dropped, since deleting an empty match changes nothing. On error the
// current matcher is kept.
func (f *MarkupFilter) SetIgnoreRegex(chars []string) error {
	re, err := CompilePatterns(ignorePatterns, withoutEmpty(chars))
	if err != nil {
		return fmt.Errorf("failed to set ignore characters: %w", err)
	}

	f.mu.Lock()
	f.ignore = re
	f.mu.Unlock()

	slog.Debug("Ignore matcher configured", "additional", len(chars), "pattern", re.String())
	return nil
}

// SetSeparatorRegex rebuilds the separator matcher from the paragraph end
// pattern plus one literal alternative per entry of chars. The default
// dashes are replaced, not extended. An empty entry would put a space
// between every character and is rejected with ErrEmptyCharacter. On error
// the current matcher is kept.
func (f *MarkupFilter) SetSeparatorRegex(chars []string) error {
	re, err := CompilePatterns(separatorPatterns, chars)
	if err != nil {
		return fmt.Errorf("failed to set separator characters: %w", err)
	}

	f.mu.Lock()
	f.separator = re
	f.mu.Unlock()

	slog.Debug("Separator matcher configured", "additional", len(chars), "pattern", re.String())
	return nil
}

// Clean returns text with newlines folded, separators turned into spaces and
// ignored content removed, in that order.
func (f *MarkupFilter) Clean(text string) string {
	if text == "" {
		return ""
	}

	f.mu.RLock()
	ignore, separator := f.ignore, f.separator
	f.mu.RUnlock()

	// one logical line; a bare line break still ends a word
	text = strings.ReplaceAll(text, "\n", " ")
	text = separator.ReplaceAllLiteralString(text, " ")
	text = ignore.ReplaceAllLiteralString(text, "")
	return text
}

// withoutEmpty returns chars without its empty entries. nil stays nil.
func withoutEmpty(chars []string) []string {
	if chars == nil {
		return nil
	}
	out := make([]string, 0, len(chars))
	for _, s := range chars {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
