package counter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ignorePatterns are always part of the ignore matcher, in this order.
// Annotations are matched lazily so that several of them in one text are
// removed one by one instead of as a single span.
var ignorePatterns = []string{
	`<note>.*?</note>`,
	`<comment>.*?</comment>`,
	`<.+?>`,
}

// separatorPatterns are always part of the separator matcher.
var separatorPatterns = []string{
	`</p>`,
}

// DefaultSeparators returns the additional separators a new counter starts
// with (em dash and en dash). Each call returns a new slice.
func DefaultSeparators() []string {
	return []string{"—", "–"}
}

var (
	// ErrNilCharacters is returned when a nil character list is supplied.
	ErrNilCharacters = errors.New("additional characters must not be nil")
	// ErrEmptyCharacter is returned for an empty entry in a separator list.
	ErrEmptyCharacter = errors.New("additional character must not be empty")
)

// CompilePatterns joins base patterns and escaped literal characters into a
// single alternation. base is used as-is; every entry of additional is
// quoted so that it only ever matches itself.
func CompilePatterns(base []string, additional []string) (*regexp.Regexp, error) {
	if additional == nil {
		return nil, ErrNilCharacters
	}

	alternatives := make([]string, 0, len(base)+len(additional))
	alternatives = append(alternatives, base...)
	for i, s := range additional {
		if s == "" {
			return nil, fmt.Errorf("entry %d: %w", i, ErrEmptyCharacter)
		}
		alternatives = append(alternatives, regexp.QuoteMeta(s))
	}

	re, err := regexp.Compile(strings.Join(alternatives, "|"))
	if err != nil {
		return nil, fmt.Errorf("failed to compile pattern set: %w", err)
	}
	return re, nil
}
