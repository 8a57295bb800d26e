package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriscorrea/tally/internal/counter"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, []string{"—", "–"}, cfg.Settings.AdditionalWordSeparators)
	assert.NotNil(t, cfg.Settings.AdditionalCharsToIgnore)
	assert.Empty(t, cfg.Settings.AdditionalCharsToIgnore)
	assert.Empty(t, cfg.Options)
}

func TestDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".novx", "config", "wordcounter.json"), DefaultPath())
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name           string
		file           string
		content        string
		wantErr        error
		wantSeparators []string
		wantIgnored    []string
	}{
		{
			name:           "full settings",
			file:           "wordcounter.json",
			content:        `{"SETTINGS": {"additional_word_separators": ["/"], "additional_chars_to_ignore": ["*", "#"]}, "OPTIONS": {}}`,
			wantSeparators: []string{"/"},
			wantIgnored:    []string{"*", "#"},
		},
		{
			name:           "missing key keeps default",
			file:           "wordcounter.json",
			content:        `{"SETTINGS": {"additional_chars_to_ignore": ["*"]}}`,
			wantSeparators: []string{"—", "–"},
			wantIgnored:    []string{"*"},
		},
		{
			name:           "null value keeps default",
			file:           "wordcounter.json",
			content:        `{"SETTINGS": {"additional_word_separators": null}}`,
			wantSeparators: []string{"—", "–"},
			wantIgnored:    []string{},
		},
		{
			name:           "empty list clears separators",
			file:           "wordcounter.json",
			content:        `{"SETTINGS": {"additional_word_separators": []}}`,
			wantSeparators: []string{},
			wantIgnored:    []string{},
		},
		{
			name:           "no settings table",
			file:           "wordcounter.json",
			content:        `{"OPTIONS": {"x": true}}`,
			wantSeparators: []string{"—", "–"},
			wantIgnored:    []string{},
		},
		{
			name:           "malformed file",
			file:           "wordcounter.json",
			content:        `{"SETTINGS": [`,
			wantErr:        ErrMalformed,
			wantSeparators: []string{"—", "–"},
			wantIgnored:    []string{},
		},
		{
			name:           "wrong value type",
			file:           "wordcounter.json",
			content:        `{"SETTINGS": {"additional_word_separators": 3}}`,
			wantErr:        ErrMalformed,
			wantSeparators: []string{"—", "–"},
			wantIgnored:    []string{},
		},
		{
			name: "toml file",
			file: "wordcounter.toml",
			content: `[SETTINGS]
additional_word_separators = ["/"]
additional_chars_to_ignore = ["~"]
`,
			wantSeparators: []string{"/"},
			wantIgnored:    []string{"~"},
		},
		{
			name: "yaml file",
			file: "wordcounter.yaml",
			content: `SETTINGS:
    additional_chars_to_ignore: ["*"]
`,
			wantSeparators: []string{"—", "–"},
			wantIgnored:    []string{"*"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)

			cfg, err := Load(path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			require.NotNil(t, cfg)
			assert.Equal(t, tt.wantSeparators, cfg.Settings.AdditionalWordSeparators)
			assert.Equal(t, tt.wantIgnored, cfg.Settings.AdditionalCharsToIgnore)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))

	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestReadOnlyKnownOptions(t *testing.T) {
	path := writeFile(t, "wordcounter.json", `{"OPTIONS": {"known": true, "unknown": true}}`)

	cfg := Defaults()
	cfg.Options["known"] = false
	require.NoError(t, cfg.Read(path))

	assert.Equal(t, map[string]bool{"known": true}, cfg.Options)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wordcounter.json")

	cfg := Defaults()
	require.NoError(t, cfg.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	expected := `{
    "SETTINGS": {
        "additional_word_separators": [
            "—",
            "–"
        ],
        "additional_chars_to_ignore": []
    },
    "OPTIONS": {}
}
`
	assert.Equal(t, expected, string(data))
}

func TestWriteKeepsCharactersLiteral(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordcounter.json")

	cfg := Defaults()
	cfg.Settings.AdditionalCharsToIgnore = []string{"<", "&", "…"}
	cfg.Settings.AdditionalWordSeparators = nil
	require.NoError(t, cfg.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"<"`)
	assert.Contains(t, string(data), `"&"`)
	assert.Contains(t, string(data), `"…"`)
	assert.Contains(t, string(data), `"additional_word_separators": []`)
}

func TestWriteReadFormats(t *testing.T) {
	for _, name := range []string{"wordcounter.json", "wordcounter.toml", "wordcounter.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			cfg := Defaults()
			cfg.Settings.AdditionalCharsToIgnore = []string{"*", "[", "<"}
			require.NoError(t, cfg.Write(path))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg.Settings, loaded.Settings)
		})
	}
}

type recorder struct {
	ignore    []string
	separator []string
	calls     int
}

func (r *recorder) SetIgnoreRegex(chars []string) error {
	r.ignore = chars
	r.calls++
	return nil
}

func (r *recorder) SetSeparatorRegex(chars []string) error {
	r.separator = chars
	r.calls++
	return nil
}

func TestApply(t *testing.T) {
	r := &recorder{}
	s := Settings{AdditionalWordSeparators: []string{"/"}, AdditionalCharsToIgnore: []string{"*"}}

	require.NoError(t, s.Apply(r))
	assert.Equal(t, []string{"/"}, r.separator)
	assert.Equal(t, []string{"*"}, r.ignore)
	assert.Equal(t, 2, r.calls)
}

func TestApplyNilKeepsCurrent(t *testing.T) {
	r := &recorder{}

	require.NoError(t, Settings{}.Apply(r))
	assert.Zero(t, r.calls)
}

func TestApplyToCounter(t *testing.T) {
	c := counter.NewWordCounter()

	s := Settings{AdditionalWordSeparators: []string{"/"}, AdditionalCharsToIgnore: []string{"*"}}
	require.NoError(t, s.Apply(c))

	assert.Equal(t, 1, c.Count("one—two"), "em dash is no longer a separator")
	assert.Equal(t, 2, c.Count("one/two"))
	assert.Equal(t, 1, c.Count("one*two"))
}

func TestApplyReportsSeparatorErrors(t *testing.T) {
	c := counter.NewWordCounter()

	s := Settings{AdditionalWordSeparators: []string{""}, AdditionalCharsToIgnore: []string{"*", ""}}
	err := s.Apply(c)

	require.Error(t, err)
	assert.True(t, errors.Is(err, counter.ErrEmptyCharacter))
	assert.Contains(t, err.Error(), "additional_word_separators")
	assert.NotContains(t, err.Error(), "additional_chars_to_ignore")
	// separators were left as they were, the ignore list was applied
	assert.Equal(t, 2, c.Count("one—two"))
	assert.Equal(t, 2, c.Count("one * two"))
}

func TestOverride(t *testing.T) {
	s := Defaults().Settings

	got := s.Override(nil, []string{"#"})
	assert.Equal(t, []string{"—", "–"}, got.AdditionalWordSeparators)
	assert.Equal(t, []string{"#"}, got.AdditionalCharsToIgnore)

	got = s.Override([]string{"/"}, nil)
	assert.Equal(t, []string{"/"}, got.AdditionalWordSeparators)
	assert.Empty(t, got.AdditionalCharsToIgnore)
}

func TestWatch(t *testing.T) {
	path := writeFile(t, "wordcounter.json", `{"SETTINGS": {}}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan *Configuration, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Configuration, err error) {
			if err == nil {
				changed <- cfg
			}
		})
	}()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(5 * time.Second)
	content := []byte(`{"SETTINGS": {"additional_chars_to_ignore": ["*"]}}`)

	for {
		select {
		case cfg := <-changed:
			assert.Equal(t, []string{"*"}, cfg.Settings.AdditionalCharsToIgnore)
			cancel()
			assert.NoError(t, <-done)
			return
		case err := <-done:
			t.Skipf("file watching unavailable: %v", err)
		case <-ticker.C:
			// keep writing until the watcher is registered and reports it
			require.NoError(t, os.WriteFile(path, content, 0o644))
		case <-timeout:
			t.Fatal("no change reported within 5s")
		}
	}
}
