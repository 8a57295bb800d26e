// Package counter provides the configurable text counting used by tally.
//
// Every counter first runs its text through a MarkupFilter: paragraph ends
// and configured separator characters become spaces, then annotations
// (<note>, <comment>), remaining tags and configured ignore characters are
// removed. What is left is counted as words, characters or tokens.
//
// Usage Example:
//
//	c := counter.NewWordCounter()
//	_ = c.SetIgnoreRegex([]string{"*"})
//	n := c.Count("<p>one*two three</p>")
//	// n == 2
//
// The two matchers can be replaced at any time, including while other
// goroutines are counting.
package counter

import "fmt"

// Counter defines the interface for the different counting strategies.
type Counter interface {
	// Count returns the number of units (words, characters or tokens) in text
	// once markup and ignored characters are stripped.
	Count(text string) int

	// Name returns a human-readable name for this counting method (for logging)
	Name() string

	// SetIgnoreRegex replaces the characters removed before counting.
	SetIgnoreRegex(chars []string) error

	// SetSeparatorRegex replaces the characters treated as word breaks.
	SetSeparatorRegex(chars []string) error
}

// CountingMethod represents the different available counting strategies.
type CountingMethod int

const (
	// Words splits cleaned text on whitespace (default)
	Words CountingMethod = iota
	// Characters counts runes of cleaned text with whitespace collapsed
	Characters
	// Tokens uses tiktoken with cl100k_base encoding
	Tokens
)

// String returns the string representation of the counting method.
func (cm CountingMethod) String() string {
	switch cm {
	case Words:
		return "words"
	case Characters:
		return "characters"
	case Tokens:
		return "tokens"
	default:
		return "unknown"
	}
}

// ParseMethod maps a method name as printed by String back to its value.
func ParseMethod(name string) (CountingMethod, error) {
	switch name {
	case "words", "":
		return Words, nil
	case "characters", "chars":
		return Characters, nil
	case "tokens":
		return Tokens, nil
	default:
		return Words, fmt.Errorf("unknown counting method %q", name)
	}
}

// NewCounter creates a new Counter for the specified method, configured
// with the default markup filter.
// Returns an error if the counter cannot be initialized (e.g., tiktoken encoding fails).
func NewCounter(method CountingMethod) (Counter, error) {
	switch method {
	case Words:
		return NewWordCounter(), nil
	case Characters:
		return NewCharCounter(), nil
	case Tokens:
		tc, err := NewTokenCounter()
		if err != nil {
			return nil, err
		}
		return tc, nil
	default:
		return nil, fmt.Errorf("unsupported counting method %d", int(method))
	}
}
