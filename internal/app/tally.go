// Package app contains the core application logic for the tally CLI tool.
// It handles the main business logic separated from CLI concerns.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"

	"github.com/chriscorrea/tally/internal/config"
	"github.com/chriscorrea/tally/internal/counter"
	"github.com/chriscorrea/tally/internal/extract"
	"github.com/chriscorrea/tally/internal/fetch"
	"github.com/chriscorrea/tally/internal/project"
	"github.com/chriscorrea/tally/internal/spinner"
)

// Config holds all configuration options for the tally application.
type Config struct {
	Sources        []string               // file paths, URLs, or "-" for stdin
	ConfigPath     string                 // configuration file; empty for config.DefaultPath()
	Separators     []string               // overrides the configured word separators when non-nil
	Ignored        []string               // overrides the configured ignored characters when non-nil
	CountingMethod counter.CountingMethod // words, characters or tokens
	OutputFormat   OutputFormat
	Selector       string // CSS selector for HTML sources
	Readable       bool   // extract the main content of HTML sources
	ExcerptWords   int    // words of preview per section; 0 disables previews
	Quiet          bool   // suppress warnings and progress
}

// configPath returns the configuration file to use.
func (c Config) configPath() string {
	if c.ConfigPath != "" {
		return c.ConfigPath
	}
	return config.DefaultPath()
}

// Run loads the configuration, counts every source and returns the report.
//
// ctx allows for cancellation of URL fetches.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	c, err := Setup(cfg)
	if err != nil {
		return nil, err
	}
	return Count(ctx, c, cfg)
}

// Setup creates the counter for cfg.CountingMethod and applies the
// configuration file and flag overrides to it.
// Unusable settings are reported as warnings; the counter then keeps its
// defaults for them.
func Setup(cfg Config) (counter.Counter, error) {
	c, err := counter.NewCounter(cfg.CountingMethod)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}

	file, err := config.Load(cfg.configPath())
	if err != nil {
		warn(cfg.Quiet, "ignoring configuration: %v", err)
	}
	applySettings(c, file.Settings, cfg)
	return c, nil
}

// applySettings applies settings, overridden by the command line, to c.
func applySettings(c counter.Counter, settings config.Settings, cfg Config) {
	settings = settings.Override(cfg.Separators, cfg.Ignored)
	if err := settings.Apply(c); err != nil {
		warn(cfg.Quiet, "invalid settings: %v", err)
	}
}

// Count counts every source in cfg with c.
// A source that cannot be read is skipped with a warning; Count fails only
// when no source could be counted.
func Count(ctx context.Context, c counter.Counter, cfg Config) (*Report, error) {
	sources, err := loadSources(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return tally(c, sources, cfg), nil
}

// loadedSource is a source read into memory, ready to be counted again
// without reading it a second time.
type loadedSource struct {
	project *project.Project
	kind    fetch.Kind
}

// loadSources reads every source in cfg. Unreadable sources are skipped
// with a warning.
func loadSources(ctx context.Context, cfg Config) ([]loadedSource, error) {
	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("no sources provided")
	}

	var sp *spinner.Spinner
	if !cfg.Quiet {
		sp = spinner.New(ctx, os.Stderr, len(cfg.Sources))
		sp.Start()
		defer sp.Stop()
	}

	var loaded []loadedSource
	var errs []error
	for _, source := range cfg.Sources {
		if sp != nil {
			sp.Step(source)
		}

		p, kind, err := loadSource(ctx, source, cfg)
		if err != nil {
			errs = append(errs, err)
			warn(cfg.Quiet, "failed to process source %q: %v", source, err)
			continue
		}
		loaded = append(loaded, loadedSource{project: p, kind: kind})
	}

	if len(loaded) == 0 {
		return nil, fmt.Errorf("no source could be counted: %w", errors.Join(errs...))
	}
	slog.Debug("Sources loaded", "sources", len(loaded), "failed", len(errs))
	return loaded, nil
}

// tally updates the counts of the loaded sources with c and reports them.
func tally(c counter.Counter, sources []loadedSource, cfg Config) *Report {
	report := &Report{Method: c.Name(), Unit: cfg.CountingMethod.String()}
	for _, s := range sources {
		s.project.UpdateWordCounts(c)
		report.add(newSourceReport(s.project, s.kind, cfg.ExcerptWords))
	}

	slog.Debug("Sources counted", "sources", len(report.Sources), "total", report.Total)
	return report
}

// loadSource reads a source into a project according to its kind.
func loadSource(ctx context.Context, source string, cfg Config) (*project.Project, fetch.Kind, error) {
	kind := fetch.DetectKind(source)

	reader, err := fetch.GetContent(ctx, source)
	if err != nil {
		return nil, kind, fmt.Errorf("failed to fetch content: %w", err)
	}
	defer reader.Close()

	switch kind {
	case fetch.Project:
		p, err := project.Parse(reader)
		if err != nil {
			return nil, kind, err
		}
		p.Path = source
		return p, kind, nil

	case fetch.HTML:
		var baseURL *url.URL
		if fetch.IsURL(source) {
			baseURL, _ = url.Parse(source) // nil on error is fine
		}
		body, err := extract.Body(reader, cfg.Selector, cfg.Readable, baseURL)
		if err != nil {
			return nil, kind, fmt.Errorf("failed to extract content: %w", err)
		}
		return project.FromText(source, body), kind, nil

	default:
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, kind, fmt.Errorf("failed to read %q: %w", source, err)
		}
		return project.FromText(source, string(data)), kind, nil
	}
}

// warn prints a warning to stderr unless quiet.
func warn(quiet bool, format string, args ...any) {
	slog.Warn(fmt.Sprintf(format, args...))
	if !quiet {
		fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
	}
}
