// Package config reads and writes the tally configuration file.
//
// The file holds two top-level tables, SETTINGS and OPTIONS:
//
//	{
//	    "SETTINGS": {
//	        "additional_word_separators": ["—", "–"],
//	        "additional_chars_to_ignore": []
//	    },
//	    "OPTIONS": {}
//	}
//
// JSON is the default format; a .toml, .yaml or .yml extension selects
// TOML or YAML with the same shape. A missing or unreadable file is not
// fatal: every value that cannot be read keeps its default.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the default configuration file name.
	FileName = "wordcounter.json"
	// Dir is the configuration directory relative to the home directory.
	Dir = ".novx/config"
)

// ErrMalformed is returned when a configuration file exists but cannot be
// decoded. The configuration keeps its previous values.
var ErrMalformed = errors.New("malformed configuration file")

// Settings are the counter preferences.
// A nil list means "not set" and leaves the counter's matcher unchanged.
type Settings struct {
	AdditionalWordSeparators []string `json:"additional_word_separators" toml:"additional_word_separators" yaml:"additional_word_separators"`
	AdditionalCharsToIgnore  []string `json:"additional_chars_to_ignore" toml:"additional_chars_to_ignore" yaml:"additional_chars_to_ignore"`
}

// Configuration is the in-memory form of the configuration file.
type Configuration struct {
	Settings Settings        `json:"SETTINGS" toml:"SETTINGS" yaml:"SETTINGS"`
	Options  map[string]bool `json:"OPTIONS" toml:"OPTIONS" yaml:"OPTIONS"`
}

// document mirrors Configuration with optional members so that a value
// missing from the file can be told apart from an empty one.
type document struct {
	Settings *struct {
		AdditionalWordSeparators *[]string `json:"additional_word_separators" toml:"additional_word_separators" yaml:"additional_word_separators"`
		AdditionalCharsToIgnore  *[]string `json:"additional_chars_to_ignore" toml:"additional_chars_to_ignore" yaml:"additional_chars_to_ignore"`
	} `json:"SETTINGS" toml:"SETTINGS" yaml:"SETTINGS"`
	Options map[string]bool `json:"OPTIONS" toml:"OPTIONS" yaml:"OPTIONS"`
}

// Defaults returns the built-in configuration.
func Defaults() *Configuration {
	return &Configuration{
		Settings: Settings{
			AdditionalWordSeparators: []string{"—", "–"},
			AdditionalCharsToIgnore:  []string{},
		},
		Options: map[string]bool{},
	}
}

// DefaultPath returns ~/.novx/config/wordcounter.json, or a path in the
// working directory when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		slog.Debug("Home directory unavailable, using working directory", "error", err)
		return FileName
	}
	return filepath.Join(home, Dir, FileName)
}

// Load returns the defaults overlaid with whatever path provides.
// The returned configuration is always usable; a non-nil error only
// reports why the file was (partly) ignored.
func Load(path string) (*Configuration, error) {
	cfg := Defaults()
	err := cfg.Read(path)
	return cfg, err
}

// Read overlays the values found in path onto c.
// A missing file is not an error. Settings absent from the file keep their
// current value; options are only read for names c already knows.
func (c *Configuration) Read(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("Configuration file not found, keeping defaults", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read configuration %q: %w", path, err)
	}

	var doc document
	if err := decode(path, data, &doc); err != nil {
		return fmt.Errorf("%w %q: %v", ErrMalformed, path, err)
	}

	if s := doc.Settings; s != nil {
		if s.AdditionalWordSeparators != nil {
			c.Settings.AdditionalWordSeparators = *s.AdditionalWordSeparators
		}
		if s.AdditionalCharsToIgnore != nil {
			c.Settings.AdditionalCharsToIgnore = *s.AdditionalCharsToIgnore
		}
	}
	for name := range c.Options {
		if v, ok := doc.Options[name]; ok {
			c.Options[name] = v
		}
	}

	slog.Debug("Configuration read", "path", path,
		"separators", c.Settings.AdditionalWordSeparators,
		"ignored", c.Settings.AdditionalCharsToIgnore)
	return nil
}

// Write saves c to path, creating the parent directory if needed.
// JSON output is indented with four spaces and keeps non-ASCII characters
// and angle brackets literal.
func (c *Configuration) Write(path string) error {
	data, err := encode(path, c.normalized())
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create configuration directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write configuration %q: %w", path, err)
	}

	slog.Debug("Configuration written", "path", path, "bytes", len(data))
	return nil
}

// JSON returns c in the JSON file format.
func (c *Configuration) JSON() ([]byte, error) {
	return encode(FileName, c.normalized())
}

// normalized returns a copy with nil lists and maps replaced by empty ones,
// so they are written as [] and {} rather than null or omitted.
func (c *Configuration) normalized() *Configuration {
	out := &Configuration{Settings: c.Settings, Options: c.Options}
	if out.Settings.AdditionalWordSeparators == nil {
		out.Settings.AdditionalWordSeparators = []string{}
	}
	if out.Settings.AdditionalCharsToIgnore == nil {
		out.Settings.AdditionalCharsToIgnore = []string{}
	}
	if out.Options == nil {
		out.Options = map[string]bool{}
	}
	return out
}

type format int

const (
	formatJSON format = iota
	formatTOML
	formatYAML
)

func formatOf(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return formatTOML
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

func decode(path string, data []byte, v any) error {
	switch formatOf(path) {
	case formatTOML:
		_, err := toml.Decode(string(data), v)
		return err
	case formatYAML:
		return yaml.Unmarshal(data, v)
	default:
		return json.Unmarshal(data, v)
	}
}

func encode(path string, v any) ([]byte, error) {
	var buf bytes.Buffer
	switch formatOf(path) {
	case formatTOML:
		if err := toml.NewEncoder(&buf).Encode(v); err != nil {
			return nil, err
		}
	case formatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(4)
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	default:
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "    ")
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
