package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/chriscorrea/tally/internal/app"
	"github.com/chriscorrea/tally/internal/config"
	"github.com/chriscorrea/tally/internal/counter"
)

// buildConfig constructs an app.Config from command flags and arguments
func buildConfig(cmd *cobra.Command, args []string) (app.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	separators, _ := cmd.Flags().GetStringArray("separator")
	ignored, _ := cmd.Flags().GetStringArray("ignore")
	tokensFlag, _ := cmd.Flags().GetBool("tokens")
	charactersFlag, _ := cmd.Flags().GetBool("characters")
	mdFlag, _ := cmd.Flags().GetBool("md")
	jsonFlag, _ := cmd.Flags().GetBool("json")
	selector, _ := cmd.Flags().GetString("selector")
	readable, _ := cmd.Flags().GetBool("readable")
	excerptWords, _ := cmd.Flags().GetInt("excerpt")
	quiet, _ := cmd.Flags().GetBool("quiet")

	if excerptWords < 0 {
		return app.Config{}, fmt.Errorf("--excerpt must not be negative")
	}

	// a flag given at all replaces the configured list, even with no usable value
	if !cmd.Flags().Changed("separator") {
		separators = nil
	} else if separators == nil {
		separators = []string{}
	}
	if !cmd.Flags().Changed("ignore") {
		ignored = nil
	} else if ignored == nil {
		ignored = []string{}
	}

	// determine counting method
	var countingMethod counter.CountingMethod
	switch {
	case tokensFlag:
		countingMethod = counter.Tokens
	case charactersFlag:
		countingMethod = counter.Characters
	default:
		countingMethod = counter.Words
	}

	// determine output format
	var outputFormat app.OutputFormat
	switch {
	case jsonFlag:
		outputFormat = app.JSON
	case mdFlag:
		outputFormat = app.Markdown
	default:
		outputFormat = app.Text
	}

	// no arguments: read stdin
	sources := args
	if len(sources) == 0 {
		sources = []string{"-"}
	}

	return app.Config{
		Sources:        sources,
		ConfigPath:     configPath,
		Separators:     separators,
		Ignored:        ignored,
		CountingMethod: countingMethod,
		OutputFormat:   outputFormat,
		Selector:       selector,
		Readable:       readable,
		ExcerptWords:   excerptWords,
		Quiet:          quiet,
	}, nil
}

// setupLogger configures the default slog logger. Logs go to stderr, or to
// a rotating file when logFile is set.
func setupLogger(debug bool, logFile string) func() {
	var level slog.Level
	if debug {
		level = slog.LevelDebug
	} else {
		level = slog.LevelError
	}

	var out io.Writer = os.Stderr
	cleanup := func() {}
	if logFile != "" {
		rotating := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		out = rotating
		cleanup = func() { _ = rotating.Close() }
		if !debug {
			// a log file is only asked for to be written to
			level = slog.LevelInfo
		}
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
	return cleanup
}

// configPathFlag returns --config or the default location.
func configPathFlag(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path
	}
	return config.DefaultPath()
}

var rootCmd = &cobra.Command{
	Use:   "tally [sources...]",
	Short: "A customizable word counter for manuscripts",
	Long: `Tally counts the words of manuscripts, web pages and plain text. Notes,
comments and markup are left out; paragraph ends and configurable
characters (em and en dash by default) separate words.

Sources may be novelibre projects (.novx), HTML files, URLs, plain text
files, or standard input.

Examples:
  tally novel.novx
  tally --ignore '*' chapter1.txt chapter2.txt
  tally --selector article https://example.com/story
  cat draft.txt | tally --characters`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(cmd, args)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		debug, _ := cmd.Flags().GetBool("debug")
		logFile, _ := cmd.Flags().GetString("log-file")
		cleanup := setupLogger(debug, logFile)
		defer cleanup()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			return app.Watch(ctx, cfg, cmd.OutOrStdout())
		}

		report, err := app.Run(ctx, cfg)
		if err != nil {
			return fmt.Errorf("tally failed: %w", err)
		}
		return report.Render(cmd.OutOrStdout(), cfg.OutputFormat)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the configuration file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), configPathFlag(cmd))
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPathFlag(cmd))
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		}
		data, err := cfg.JSON()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPathFlag(cmd)
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to access %s: %w", path, err)
		}

		if err := config.Defaults().Write(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Configuration file (default ~/.novx/config/wordcounter.json)")

	// matcher overrides
	rootCmd.Flags().StringArray("separator", nil, "Character treated as a word break; repeatable, replaces the configured list")
	rootCmd.Flags().StringArray("ignore", nil, "Character removed before counting; repeatable, replaces the configured list")

	// counting method flags are mutually exclusive
	rootCmd.Flags().Bool("words", false, "Count words (default)")
	rootCmd.Flags().Bool("characters", false, "Count characters")
	rootCmd.Flags().Bool("tokens", false, "Count cl100k_base tokens")
	rootCmd.MarkFlagsMutuallyExclusive("words", "characters", "tokens")

	// output format flags are mutually exclusive
	rootCmd.Flags().Bool("text", false, "Output a plain text table (default)")
	rootCmd.Flags().Bool("json", false, "Output in JSON format")
	rootCmd.Flags().Bool("md", false, "Output in Markdown format")
	rootCmd.MarkFlagsMutuallyExclusive("text", "json", "md")

	// HTML sources
	rootCmd.Flags().StringP("selector", "s", "", "CSS selector limiting what is counted in HTML sources")
	rootCmd.Flags().Bool("readable", false, "Count only the main content of HTML sources")
	rootCmd.MarkFlagsMutuallyExclusive("selector", "readable")

	// other flags
	rootCmd.Flags().IntP("excerpt", "e", 0, "Show the first N words of each section")
	rootCmd.Flags().BoolP("watch", "w", false, "Recount whenever the configuration file changes")
	rootCmd.Flags().BoolP("quiet", "q", false, "Suppress warnings and progress")
	rootCmd.Flags().String("log-file", "", "Write logs to a rotating file")
	rootCmd.Flags().BoolP("debug", "D", false, "Enable debug logging")
	_ = rootCmd.Flags().MarkHidden("debug")

	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing file")

	configCmd.AddCommand(configPathCmd, configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
