package config

import (
	"errors"
	"fmt"
	"log/slog"
)

// Configurable is implemented by every counter.Counter.
type Configurable interface {
	SetIgnoreRegex(chars []string) error
	SetSeparatorRegex(chars []string) error
}

// Apply pushes the settings to c. A nil list keeps c's current matcher.
// Both lists are always attempted; errors from either are joined.
func (s Settings) Apply(c Configurable) error {
	var errs []error

	if s.AdditionalCharsToIgnore != nil {
		if err := c.SetIgnoreRegex(s.AdditionalCharsToIgnore); err != nil {
			errs = append(errs, fmt.Errorf("additional_chars_to_ignore: %w", err))
		}
	} else {
		slog.Debug("No ignore characters configured, keeping current matcher")
	}

	if s.AdditionalWordSeparators != nil {
		if err := c.SetSeparatorRegex(s.AdditionalWordSeparators); err != nil {
			errs = append(errs, fmt.Errorf("additional_word_separators: %w", err))
		}
	} else {
		slog.Debug("No word separators configured, keeping current matcher")
	}

	return errors.Join(errs...)
}

// Override replaces the lists for which a non-nil value is given, e.g. from
// command line flags.
func (s Settings) Override(separators, ignored []string) Settings {
	if separators != nil {
		s.AdditionalWordSeparators = separators
	}
	if ignored != nil {
		s.AdditionalCharsToIgnore = ignored
	}
	return s
}
