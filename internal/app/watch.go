package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/chriscorrea/tally/internal/config"
)

// Watch renders a report of cfg's sources to w, then re-reads the
// configuration file whenever it changes, reconfigures the counter and
// renders again. Sources are read once, so standard input can be watched
// too. It returns when ctx is done.
func Watch(ctx context.Context, cfg Config, w io.Writer) error {
	c, err := Setup(cfg)
	if err != nil {
		return err
	}

	sources, err := loadSources(ctx, cfg)
	if err != nil {
		return err
	}

	render := func() {
		report := tally(c, sources, cfg)
		if err := report.Render(w, cfg.OutputFormat); err != nil {
			warn(cfg.Quiet, "%v", err)
		}
	}
	render()

	path := cfg.configPath()
	err = config.Watch(ctx, path, func(file *config.Configuration, err error) {
		if err != nil {
			warn(cfg.Quiet, "ignoring configuration: %v", err)
		}
		slog.Debug("Reconfiguring counter", "path", path)
		applySettings(c, file.Settings, cfg)
		render()
	})
	if err != nil {
		return fmt.Errorf("failed to watch configuration: %w", err)
	}
	return nil
}
